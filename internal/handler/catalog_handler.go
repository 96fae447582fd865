package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/repository"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

// CatalogHandler manages categories and products.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches catalog routes. Destructive routes are guarded by admin.
func (h *CatalogHandler) Register(router fiber.Router, admin fiber.Handler) {
	if admin == nil {
		admin = func(c *fiber.Ctx) error { return c.Next() }
	}

	categories := router.Group("/categories")
	categories.Get("", h.listCategories)
	categories.Post("", h.createCategory)
	categories.Put("/:id", h.updateCategory)
	categories.Delete("/:id", admin, h.deleteCategory)

	products := router.Group("/products")
	products.Get("", h.listProducts)
	products.Post("", h.createProduct)
	products.Put("/:id", h.updateProduct)
	products.Delete("/:id", admin, h.deleteProduct)
}

func (h *CatalogHandler) listCategories(c *fiber.Ctx) error {
	items, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list categories")
	}
	return utils.SendSuccess(c, "categories", items)
}

func (h *CatalogHandler) createCategory(c *fiber.Ctx) error {
	var payload dto.CategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	category, err := h.service.CreateCategory(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create category")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", category)
}

func (h *CatalogHandler) updateCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var payload dto.CategoryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update category")
	}
	return utils.SendSuccess(c, "category updated", category)
}

func (h *CatalogHandler) deleteCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete category")
	}
	return utils.SendSuccess(c, "category deleted", nil)
}

func (h *CatalogHandler) listProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		LowStock: strings.EqualFold(c.Query("low_stock"), "true"),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid category id")
		}
		categoryID := uint(parsed)
		filter.CategoryID = &categoryID
	}

	items, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list products")
	}
	return utils.SendSuccess(c, "products", items)
}

func (h *CatalogHandler) createProduct(c *fiber.Ctx) error {
	var payload dto.ProductRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	product, err := h.service.CreateProduct(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create product")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "product created", product)
}

func (h *CatalogHandler) updateProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var payload dto.ProductRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update product")
	}
	return utils.SendSuccess(c, "product updated", product)
}

func (h *CatalogHandler) deleteProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete product")
	}
	return utils.SendSuccess(c, "product deleted", nil)
}
