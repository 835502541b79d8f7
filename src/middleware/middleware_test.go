package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"Backend-PMS/src/logger"
	"Backend-PMS/src/models"
	"Backend-PMS/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(parser TokenParser) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthJWT(parser), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId": c.Locals("userId"),
			"role":   string(SessionRole(c)),
		})
	})
	return app
}

func TestAuthJWT(t *testing.T) {
	jwtManager := utils.NewJWTManager("middleware-secret", time.Hour)
	app := newProtectedApp(jwtManager)

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/private", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Basic abc")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := utils.NewJWTManager("other-secret", time.Hour).GenerateJWT("abc", "student")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token exposes id and role", func(t *testing.T) {
		token, err := jwtManager.GenerateJWT("65f000000000000000000001", string(models.RoleFaculty))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, body.String(), `"role":"faculty"`)
		assert.Contains(t, body.String(), `"userId":"65f000000000000000000001"`)
	})
}

func TestRequestLogger(t *testing.T) {
	var out bytes.Buffer
	app := fiber.New()
	app.Use(RequestLogger(logger.NewWithWriter(&out, 0, "text")))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	t.Run("keeps client request id", func(t *testing.T) {
		out.Reset()
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, "req-123", resp.Header.Get(RequestIDHeader))
		assert.Contains(t, out.String(), "request_id=req-123")
		assert.Contains(t, out.String(), "status=200")
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	})

	t.Run("logs handler errors with their status", func(t *testing.T) {
		out.Reset()
		resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Contains(t, out.String(), "status=404")
	})
}
