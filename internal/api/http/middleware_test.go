package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hostbay/livechat-service/internal/observability"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/probe-target", handler)
	return app
}

func performRequest(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/probe-target", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorEnvelopeIsFlat(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("Session ID is required", nil)
	})

	status, body := performRequest(t, app)
	assert.Equal(t, http.StatusBadRequest, status)
	// The envelope carries the message directly in "error", not nested
	// under an object.
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Session ID is required", body["error"])
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.NotContains(t, body, "details")
}

func TestErrorEnvelopeCarriesDetails(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return apperrors.NewConflict("Chat session already closed", map[string]any{"session_id": "s1"})
	})

	status, body := performRequest(t, app)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Chat session already closed", body["error"])
	assert.Equal(t, "CONFLICT", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", details["session_id"])
}

func TestPanicRendersInternalEnvelope(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		panic("boom")
	})

	status, body := performRequest(t, app)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}
