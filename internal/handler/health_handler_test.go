package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/config"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "Almacen API", AppEnv: "test"}

	app := fiber.New()
	app.Get("/api/v1/health", HealthCheck(cfg, nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, cfg.AppName, payload.Data.Service)
	require.Equal(t, cfg.AppEnv, payload.Data.Environment)
	require.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckReportsProbes(t *testing.T) {
	cfg := config.Config{AppName: "Almacen API", AppEnv: "test"}
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		probes map[string]HealthProbe
		status int
		state  string
	}{
		{"all healthy", map[string]HealthProbe{"database": ok, "redis": ok}, fiber.StatusOK, "ok"},
		{"cache down", map[string]HealthProbe{"database": ok, "redis": down}, fiber.StatusOK, "degraded"},
		{"database down", map[string]HealthProbe{"database": down}, fiber.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/health", HealthCheck(cfg, tc.probes))

		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.status, resp.StatusCode, tc.name)

		var payload struct {
			Data HealthResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload), tc.name)
		require.Equal(t, tc.state, payload.Data.Status, tc.name)
		require.Len(t, payload.Data.Checks, len(tc.probes), tc.name)
	}
}
