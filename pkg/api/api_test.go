package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/armbridge/domain/diagnostic"
	"github.com/open-teleop/armbridge/services"
)

const storedYAML = "version: \"1.0\"\nconfig_id: lab-a\nrobot_id: ur5e\n"

func newTestServer(t *testing.T) (*fiber.App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teleop_bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storedYAML), 0644))

	svc, err := services.NewBridgeConfigService(path, nil)
	require.NoError(t, err)

	app := NewServer(Options{
		ConfigService: svc,
		Diagnostics:   diagnostic.NewBridgeService("ur5e", "sub_interval"),
	})
	return app, path
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHealthAndRoot(t *testing.T) {
	app, _ := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeBody(t, resp.Body)["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "online", decodeBody(t, resp.Body)["status"])
}

func TestBridgeStatusRoute(t *testing.T) {
	app, _ := newTestServer(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/bridge/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	bridge, ok := body["bridge"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "IDLE", bridge["state"])
}

func TestGetBridgeConfig(t *testing.T) {
	app, _ := newTestServer(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/config/bridge", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-yaml", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, storedYAML, string(body))
}

func TestPutBridgeConfig(t *testing.T) {
	app, path := newTestServer(t)

	update := "version: \"1.1\"\nconfig_id: lab-b\nrobot_id: ur5e\ncadence:\n  policy: single_shot\n"
	req := httptest.NewRequest("PUT", "/api/v1/config/bridge", strings.NewReader(update))
	req.Header.Set(fiber.HeaderContentType, "application/x-yaml")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, update, string(stored))
}

func TestPutBridgeConfigRejected(t *testing.T) {
	app, path := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"broken yaml", "safety: [unclosed"},
		{"invalid values", "config_id: x\nrobot_id: y\ntiming:\n  cycle_time: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/v1/config/bridge", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, "text/yaml")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, storedYAML, string(stored))
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestServer(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp.Body)["error"], "Cannot GET")
}
