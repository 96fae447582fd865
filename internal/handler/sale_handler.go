package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// SaleHandler records checkouts and stock receipts.
type SaleHandler struct {
	sales  service.SaleService
	stock  service.StockService
	logger zerolog.Logger
}

// NewSaleHandler constructs the handler.
func NewSaleHandler(sales service.SaleService, stock service.StockService, logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{
		sales:  sales,
		stock:  stock,
		logger: logger.With().Str("component", "sale_handler").Logger(),
	}
}

// Register attaches sale and stock receipt routes.
func (h *SaleHandler) Register(router fiber.Router) {
	router.Get("/sales", h.listCurrent)
	router.Get("/sales/:id", h.getSale)
	router.Post("/sales", h.createSale)
	router.Get("/stock-receipts/:id", h.getReceipt)
	router.Post("/stock-receipts", h.receiveStock)
}

func (h *SaleHandler) listCurrent(c *fiber.Ctx) error {
	sales, err := h.sales.ListCurrent(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list sales")
	}
	return utils.SendSuccess(c, "sales", sales)
}

func (h *SaleHandler) getSale(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	sale, err := h.sales.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load sale")
	}
	return utils.SendSuccess(c, "sale", sale)
}

func (h *SaleHandler) getReceipt(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	receipt, err := h.stock.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load stock receipt")
	}
	return utils.SendSuccess(c, "stock receipt", receipt)
}

func (h *SaleHandler) createSale(c *fiber.Ctx) error {
	var payload dto.SaleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	sale, err := h.sales.Create(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record sale")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sale recorded", sale)
}

func (h *SaleHandler) receiveStock(c *fiber.Ctx) error {
	var payload dto.StockReceiptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	receipt, err := h.stock.Receive(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record stock receipt")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "stock received", receipt)
}
