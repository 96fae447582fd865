package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/middleware"
	"github.com/noah-isme/almacen-api/internal/service"
	"github.com/noah-isme/almacen-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
		if userID := userIDFromContext(c); userID > 0 {
			logger = logger.With().Uint("user_id", userID).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationFields(err error) []utils.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make([]utils.FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, utils.FieldError{Field: fieldErr.Namespace(), Rule: fieldErr.Tag()})
	}
	return fields
}

// sendServiceError maps service errors to HTTP statuses and logs unexpected ones.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, failure string) error {
	switch {
	case isValidationError(err):
		return utils.SendFieldErrors(c, fiber.StatusBadRequest, "validation failed", validationFields(err))
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidFilter):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case service.IsConflict(err):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Msg(failure)
	return utils.SendError(c, fiber.StatusInternalServerError, failure)
}
