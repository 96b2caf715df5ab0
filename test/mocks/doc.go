// Package mocks provides mock implementations of the services appian-deploy talks to.
//
// MockAppianAPI is an in-memory deployment-management API. It serves fiber
// handlers for every named route in pkg/api/v2/routes, checks the API key the
// same way an Appian environment does and scripts the status each operation
// reports on successive queries.
//
// Example usage:
//
//	api := mocks.NewMockAppianAPI()
//	api.StandardResponses.Deployment.Statuses = []string{"IN_PROGRESS", "FAILED"}
//	app := fiber.New()
//	routes.RegisterRoutes(app, api.Handlers())
package mocks
