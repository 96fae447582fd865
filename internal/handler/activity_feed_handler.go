package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// ActivityFeedHandler serves the activity of the open register session.
type ActivityFeedHandler struct {
	service service.ActivityFeedService
	logger  zerolog.Logger
}

// NewActivityFeedHandler constructs the handler instance.
func NewActivityFeedHandler(service service.ActivityFeedService, logger zerolog.Logger) *ActivityFeedHandler {
	return &ActivityFeedHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_feed_handler").Logger(),
	}
}

// Register wires the activity feed routes.
func (h *ActivityFeedHandler) Register(router fiber.Router) {
	router.Get("/current", h.current)
}

func (h *ActivityFeedHandler) current(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.ActivityFeedRequest{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
	}

	result, err := h.service.Current(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch activities")
	}

	c.Set("X-Cache-Hit", strconv.FormatBool(result.CacheHit))
	return utils.SendSuccess(c, "session activities retrieved", result)
}
