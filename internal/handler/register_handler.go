package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// RegisterHandler opens and closes the cash register.
type RegisterHandler struct {
	service service.RegisterService
	logger  zerolog.Logger
}

// NewRegisterHandler constructs the handler.
func NewRegisterHandler(service service.RegisterService, logger zerolog.Logger) *RegisterHandler {
	return &RegisterHandler{
		service: service,
		logger:  logger.With().Str("component", "register_handler").Logger(),
	}
}

// Register attaches register routes.
func (h *RegisterHandler) Register(router fiber.Router) {
	router.Get("/current", h.current)
	router.Post("/open", h.open)
	router.Post("/close", h.close)
}

func (h *RegisterHandler) current(c *fiber.Ctx) error {
	register, err := h.service.Current(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load register")
	}
	return utils.SendSuccess(c, "register", register)
}

func (h *RegisterHandler) open(c *fiber.Ctx) error {
	var payload dto.RegisterOpenRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	register, err := h.service.Open(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to open register")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "register opened", register)
}

func (h *RegisterHandler) close(c *fiber.Ctx) error {
	register, err := h.service.Close(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to close register")
	}
	return utils.SendSuccess(c, "register closed", register)
}
