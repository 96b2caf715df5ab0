// Package routes defines the deployment-management API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/*

Routes are grouped by API family (the /deployment/v2 API first, then the
/suite/deployment-management/v2 API) and within a family ordered GET, POST.
Param urls (ie /:uuid) go last within a method. Names match the action.

*/

// API base configuration
const (
	// DeploymentPrefix is the prefix of the deployment API
	DeploymentPrefix = "/deployment/v2"
	// SuitePrefix is the prefix of the suite deployment-management API
	SuitePrefix = "/suite/deployment-management/v2"
)

// Route names for lookup
const (
	// Deployment API
	GetPackages         = "GetPackages"
	GetArtifact         = "GetArtifact"
	GetDeploymentStatus = "GetDeploymentStatus"
	GetDeploymentLog    = "GetDeploymentLog"
	SubmitDeployment    = "SubmitDeployment"

	// Suite API. GetDeployment serves both the export status and the results document.
	GetDeployment    = "GetDeployment"
	GetInspection    = "GetInspection"
	SubmitExport     = "SubmitExport"
	SubmitInspection = "SubmitInspection"
)

// Handlers holds one fiber handler per named route. Nil handlers answer 501.
type Handlers map[string]fiber.Handler

// routeCache stores extracted routes for use without a running server
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v2 routes on app
func RegisterRoutes(app *fiber.App, h Handlers) {
	handler := func(name string) fiber.Handler {
		if fn, ok := h[name]; ok && fn != nil {
			return fn
		}
		return notImplemented
	}

	deployment := app.Group(DeploymentPrefix)
	deployment.Get("/packages", handler(GetPackages)).Name(GetPackages)
	deployment.Get("/artifacts/:id", handler(GetArtifact)).Name(GetArtifact)
	deployment.Get("/deployments/:uuid", handler(GetDeploymentStatus)).Name(GetDeploymentStatus)
	deployment.Get("/deployments/:uuid/log", handler(GetDeploymentLog)).Name(GetDeploymentLog)
	deployment.Post("/deployments", handler(SubmitDeployment)).Name(SubmitDeployment)

	suite := app.Group(SuitePrefix)
	suite.Get("/deployments/:uuid", handler(GetDeployment)).Name(GetDeployment)
	suite.Get("/inspections/:uuid", handler(GetInspection)).Name(GetInspection)
	suite.Post("/deployments", handler(SubmitExport)).Name(SubmitExport)
	suite.Post("/inspections", handler(SubmitInspection)).Name(SubmitInspection)
}

func notImplemented(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, fmt.Sprintf("%s %s is not implemented", c.Method(), c.Path()))
}

// initRouteCache registers the routes on a throwaway app and extracts their paths
func initRouteCache() {
	routeCacheInit.Do(func() {
		cache := make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app, nil)

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				cache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = cache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Deployment API route helpers

// GetPackagesURL returns the URL for listing the packages of the given applications
func GetPackagesURL(appUUIDs []string) string {
	q := url.Values{}
	if len(appUUIDs) > 0 {
		q.Set("app_uuids", strings.Join(appUUIDs, ","))
	}
	return BuildURL(GetPackages, nil, q)
}

// GetArtifactURL returns the URL for downloading an artifact by id
func GetArtifactURL(id string) string {
	return BuildURL(GetArtifact, map[string]string{"id": id}, nil)
}

// GetDeploymentStatusURL returns the URL of a deployment status document
func GetDeploymentStatusURL(id uuid.UUID) string {
	return BuildURL(GetDeploymentStatus, map[string]string{"uuid": id.String()}, nil)
}

// GetDeploymentLogURL returns the URL of a deployment log. A tail of zero returns the whole log.
func GetDeploymentLogURL(id uuid.UUID, tail int) string {
	q := url.Values{}
	if tail > 0 {
		q.Set("tail", fmt.Sprintf("%d", tail))
	}
	return BuildURL(GetDeploymentLog, map[string]string{"uuid": id.String()}, q)
}

// SubmitDeploymentURL returns the URL for submitting a deployment
func SubmitDeploymentURL() string {
	return BuildURL(SubmitDeployment, nil, nil)
}

// Suite API route helpers

// GetDeploymentURL returns the URL of an export status or deployment results document
func GetDeploymentURL(id uuid.UUID) string {
	return BuildURL(GetDeployment, map[string]string{"uuid": id.String()}, nil)
}

// GetInspectionURL returns the URL of an inspection document
func GetInspectionURL(id uuid.UUID) string {
	return BuildURL(GetInspection, map[string]string{"uuid": id.String()}, nil)
}

// SubmitExportURL returns the URL for submitting an export
func SubmitExportURL() string {
	return BuildURL(SubmitExport, nil, nil)
}

// SubmitInspectionURL returns the URL for submitting an inspection
func SubmitInspectionURL() string {
	return BuildURL(SubmitInspection, nil, nil)
}
