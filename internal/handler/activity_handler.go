package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// ActivityHandler exposes the activity trail query endpoint.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity routes to the router group. Guards run before
// the query handler.
func (h *ActivityHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, guards...), h.list)
	router.Get("", handlers...)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
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
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}
	sessionID, err := parseQueryInt(c, "session_id")
	if err != nil || sessionID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from timestamp")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to timestamp")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		ActorID:    uint(actorID),
		SessionID:  uint(sessionID),
		EntityType: c.Query("entity_type"),
		From:       from,
		To:         to,
		Ascending:  strings.EqualFold(c.Query("order"), "asc"),
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list activities")
	}

	return utils.SendSuccess(c, "activities", response)
}
