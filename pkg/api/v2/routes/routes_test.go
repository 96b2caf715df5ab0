package routes

import (
	"net/http/httptest"
	"net/url"
	"testing"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func TestURLHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"submit deployment", SubmitDeploymentURL(), "/deployment/v2/deployments"},
		{"deployment status", GetDeploymentStatusURL(testID), "/deployment/v2/deployments/11111111-1111-1111-1111-111111111111"},
		{"deployment log", GetDeploymentLogURL(testID, 50), "/deployment/v2/deployments/11111111-1111-1111-1111-111111111111/log?tail=50"},
		{"deployment log without tail", GetDeploymentLogURL(testID, 0), "/deployment/v2/deployments/11111111-1111-1111-1111-111111111111/log"},
		{"packages", GetPackagesURL([]string{"a", "b"}), "/deployment/v2/packages?app_uuids=a%2Cb"},
		{"artifact", GetArtifactURL("pkg 1"), "/deployment/v2/artifacts/pkg%201"},
		{"submit export", SubmitExportURL(), "/suite/deployment-management/v2/deployments"},
		{"deployment document", GetDeploymentURL(testID), "/suite/deployment-management/v2/deployments/11111111-1111-1111-1111-111111111111"},
		{"submit inspection", SubmitInspectionURL(), "/suite/deployment-management/v2/inspections"},
		{"inspection", GetInspectionURL(testID), "/suite/deployment-management/v2/inspections/11111111-1111-1111-1111-111111111111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestBuildURLUnknownRoute(t *testing.T) {
	assert.Empty(t, BuildURL("NoSuchRoute", nil, url.Values{"a": {"b"}}))
}

func TestRegisterRoutes(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, Handlers{
		GetDeploymentStatus: func(c *fiber.Ctx) error {
			return c.SendString(c.Params("uuid"))
		},
	})

	resp, err := app.Test(httptest.NewRequest("GET", GetDeploymentStatusURL(testID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", GetInspectionURL(testID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}
