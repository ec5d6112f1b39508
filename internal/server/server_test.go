package server

import (
	"net/http/httptest"
	"testing"

	"soulscript-be/internal/bootstrap"
	"soulscript-be/internal/controller"
	"soulscript-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func routingApp() *fiber.App {
	app := fiber.New()
	registerRoutes(app, &bootstrap.Container{
		ChatController:        controller.NewChatController(nil),
		FeatureFlagController: controller.NewFeatureFlagController(nil),
		ModerationController:  controller.NewModerationController(nil),
		StreamHandler:         websocket.NewStreamHandler(nil, nopLogger{}),
	})
	return app
}

// The stream endpoint authenticates itself, so the chat group's JWT
// middleware must never intercept it.
func TestStreamRouteReachableWithAnonToken(t *testing.T) {
	app := routingApp()

	req := httptest.NewRequest("GET", "/api/chat/v1/stream?anon_token=anon-12345678", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	// A plain HTTP request passes auth and stops at the upgrade check.
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestChatRoutesStillRequireJwt(t *testing.T) {
	app := routingApp()

	req := httptest.NewRequest("GET", "/api/chat/v1/sessions", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
