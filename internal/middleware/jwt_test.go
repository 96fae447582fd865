package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/middleware"
)

const testSecret = "almacen-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestJWTBindsActorAndCorrelation(t *testing.T) {
	var (
		actor       uint
		bound       bool
		role        interface{}
		correlation string
	)
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		actor, bound = audit.ActorFromContext(c.UserContext())
		role = c.Locals("user_role")
		correlation = audit.CorrelationFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "7", "role": "Cajero"}))
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
	require.True(t, bound)
	require.Equal(t, uint(7), actor)
	require.Equal(t, "cajero", role)
	require.Equal(t, "req-123", correlation)
}

func TestJWTSuperuserClaimGrantsAdmin(t *testing.T) {
	var role interface{}
	app := fiber.New()
	app.Get("/", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		role = c.Locals("user_role")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": 1, "role": "cajero", "is_superuser": true}))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, middleware.AuthRoleAdmin, role)
}

func TestJWTRejectsBadTokens(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1}).SignedString([]byte("other"))
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
		"bad signature":  "Bearer " + forged,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err, name)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestCorrelationIDGeneratedWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.GetCorrelationID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}
