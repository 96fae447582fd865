package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// CreditHandler manages customer credit accounts.
type CreditHandler struct {
	service service.CreditService
	logger  zerolog.Logger
}

// NewCreditHandler constructs the handler.
func NewCreditHandler(service service.CreditService, logger zerolog.Logger) *CreditHandler {
	return &CreditHandler{
		service: service,
		logger:  logger.With().Str("component", "credit_handler").Logger(),
	}
}

// Register attaches credit routes.
func (h *CreditHandler) Register(router fiber.Router) {
	router.Get("", h.listOpen)
	router.Post("", h.open)
	router.Post("/:id/payments", h.pay)
}

func (h *CreditHandler) listOpen(c *fiber.Ctx) error {
	items, err := h.service.ListOpen(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list credits")
	}
	return utils.SendSuccess(c, "credits", items)
}

func (h *CreditHandler) open(c *fiber.Ctx) error {
	var payload dto.CreditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	credit, err := h.service.Open(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to open credit")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "credit opened", credit)
}

func (h *CreditHandler) pay(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var payload dto.CreditPaymentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	credit, err := h.service.Pay(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to register payment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment registered", credit)
}
