package test

import (
	"net/http/httptest"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/routes"
	"github.com/appian-deploy/appian-deploy/test/mocks"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// SetupServer configures the test suite with a mock deployment-management API
// and a real client pointed at it
func SetupServer(suite *Suite) {
	suite.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	suite.App.Use(logger.APILogger())

	suite.MockAPI = mocks.NewMockAppianAPI()
	routes.RegisterRoutes(suite.App, suite.MockAPI.Handlers())

	// Create test server using adaptor to convert Fiber app to http.Handler
	suite.Server = httptest.NewServer(adaptor.FiberApp(suite.App))

	apiClient, err := client.NewClient(&client.Options{
		BaseURL: suite.Server.URL,
		APIKey:  suite.MockAPI.APIKey,
		Timeout: testClientTimeout,
	})
	suite.Require().NoError(err, "Failed to create API client")
	suite.APIClient = apiClient

	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		if suite.Server != nil {
			suite.Server.Close()
		}
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}
