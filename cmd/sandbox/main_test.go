package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/routes"
	"github.com/appian-deploy/appian-deploy/test/mocks"
)

func TestSandboxApp(t *testing.T) {
	app := newApp(mocks.NewMockAppianAPI())

	tests := []struct {
		name     string
		path     string
		key      string
		wantCode int
		wantBody map[string]interface{}
	}{
		{
			name:     "health check",
			path:     "/health",
			wantCode: fiber.StatusOK,
			wantBody: map[string]interface{}{"status": "healthy"},
		},
		{
			name:     "unauthorized request",
			path:     routes.GetDeploymentStatusURL(mocks.DefaultDeploymentID),
			key:      "wrong",
			wantCode: fiber.StatusUnauthorized,
			wantBody: map[string]interface{}{"error": "invalid API key"},
		},
		{
			name:     "unknown deployment",
			path:     routes.GetDeploymentStatusURL(mocks.DefaultDeploymentID),
			key:      mocks.DefaultAPIKey,
			wantCode: fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.key != "" {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.key)
				req.Header.Set(client.HeaderAPIKey, tt.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var doc map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &doc))
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, doc)
			} else {
				assert.Contains(t, doc, "error")
			}
		})
	}
}
