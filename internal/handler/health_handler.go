package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/almacen-api/internal/config"
	"github.com/noah-isme/almacen-api/internal/utils"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// HealthProbe checks one dependency.
type HealthProbe func(ctx context.Context) error

// HealthCheck returns a handler that reports application health information.
// Any failing probe marks the service degraded; only the database probe
// changes the status code.
func HealthCheck(cfg config.Config, probes map[string]HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		status := fiber.StatusOK
		if len(probes) > 0 {
			payload.Checks = make(map[string]string, len(probes))
		}
		for name, probe := range probes {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
			err := probe(ctx)
			cancel()
			if err == nil {
				payload.Checks[name] = "ok"
				continue
			}
			payload.Checks[name] = err.Error()
			payload.Status = "degraded"
			if name == "database" {
				status = fiber.StatusServiceUnavailable
			}
		}

		return utils.SendSuccessWithStatus(c, status, "service health", payload)
	}
}
