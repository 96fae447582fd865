package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitIsPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-User"); user == "1" {
			c.Locals("user_id", uint(1))
		} else if user == "2" {
			c.Locals("user_id", uint(2))
		}
		return c.Next()
	})
	app.Get("/activities", RateLimit("activities", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	hit := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, hit("1"))
	require.Equal(t, fiber.StatusOK, hit("1"))
	require.Equal(t, fiber.StatusTooManyRequests, hit("1"))
	require.Equal(t, fiber.StatusOK, hit("2"), "other users keep their own budget")
}
