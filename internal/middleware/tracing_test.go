package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingMiddleware_SetsTraceID(t *testing.T) {
	app := newTestApp()
	app.Use(TracingMiddleware())

	var local string
	app.Get("/videos/:videoId", func(c *fiber.Ctx) error {
		local, _ = c.Locals("traceID").(string)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos/7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, local, 32)
	assert.Equal(t, local, resp.Header.Get(TraceIDHeader))
}

func TestTracingMiddleware_PassesErrorsThrough(t *testing.T) {
	app := newTestApp()
	app.Use(TracingMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
