// Package client provides the API client for the deployment-management REST API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/routes"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 300 * time.Second

// Request headers understood by the API
const (
	HeaderAPIKey     = "appian-api-key"
	HeaderActionType = "Action-Type"

	ActionTypeImport = "import"
	ActionTypeExport = "export"
)

// Client is the interface for the deployment-management API client
type Client interface {
	// Submissions
	Deploy(ctx context.Context, req models.DeploymentRequest, files DeployFiles) (models.DeployResponse, error)
	Export(ctx context.Context, req models.ExportRequest) (models.ExportResponse, error)
	Inspect(ctx context.Context, req models.InspectionRequest, files InspectFiles) (models.InspectionResponse, error)

	// Status documents
	GetDeploymentStatus(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error)
	GetExportStatus(ctx context.Context, id uuid.UUID) (models.ExportResponse, error)
	GetInspectionStatus(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error)

	// Results documents
	GetDeploymentResults(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error)
	GetInspectionResults(ctx context.Context, id uuid.UUID) (models.InspectionResults, error)

	// Logs, packages and artifacts
	GetDeploymentLogs(ctx context.Context, id uuid.UUID, tail int) (models.LogsResponse, error)
	GetPackages(ctx context.Context, appUUIDs []string) (models.PackageListResponse, error)
	Download(ctx context.Context, location string, w io.Writer) (int64, error)
}

var _ Client = &APIClient{}

// DeployFiles are the local files uploaded with a deployment. Empty paths are skipped.
type DeployFiles struct {
	Package              string
	Customization        string
	AdminConsoleSettings string
	Plugins              string
	// DatabaseScripts are uploaded in order as databaseScript1..N
	DatabaseScripts []string
}

// InspectFiles are the local files uploaded with an inspection. Empty paths are skipped.
type InspectFiles struct {
	Package              string
	Customization        string
	AdminConsoleSettings string
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the Appian environment
	BaseURL string

	// APIKey is sent both as a bearer token and in the appian-api-key header
	APIKey string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	origin  *url.URL
	apiKey  string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		origin:  u,
		apiKey:  opts.APIKey,
		timeout: timeout,
	}, nil
}

// resolve joins the endpoint to the base URL unless it is already absolute
func (c *APIClient) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// sameOrigin reports whether fullURL has the scheme and host of the base URL
func (c *APIClient) sameOrigin(fullURL string) bool {
	u, err := url.Parse(fullURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.origin.Scheme) && strings.EqualFold(u.Host, c.origin.Host)
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string) (*fiber.Agent, error) {
	fullURL := c.resolve(endpoint)

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	// Credentials only go to the configured environment
	if c.sameOrigin(fullURL) {
		agent.Set("Authorization", "Bearer "+c.apiKey)
		agent.Set(HeaderAPIKey, c.apiKey)
	} else {
		logger.DebugWithFields("omitting credentials for foreign host", map[string]interface{}{
			"url": fullURL,
		})
	}
	agent.Set("Accept", "application/json")

	return agent, nil
}

type agentResult struct {
	statusCode int
	body       []byte
	errs       []error
}

// send runs the request and abandons it if ctx is done first
func (c *APIClient) send(ctx context.Context, method, fullURL string, agent *fiber.Agent) ([]byte, int, error) {
	done := make(chan agentResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- agentResult{statusCode: code, body: body, errs: errs}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case resp := <-done:
		if len(resp.errs) > 0 {
			return nil, 0, &TransportError{Method: method, URL: fullURL, Err: resp.errs[0]}
		}
		return resp.body, resp.statusCode, nil
	}
}

// doRequest sends the request and classifies the response into v
func (c *APIClient) doRequest(ctx context.Context, method, endpoint string, agent *fiber.Agent, v interface{}) error {
	fullURL := c.resolve(endpoint)
	logger.DebugWithFields("sending request", map[string]interface{}{
		"method": method,
		"url":    fullURL,
	})

	body, statusCode, err := c.send(ctx, method, fullURL, agent)
	if err != nil {
		return err
	}
	return Classify(statusCode, body, fullURL, v)
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint)
	if err != nil {
		return err
	}
	return c.doRequest(ctx, method, endpoint, agent, response)
}

// executeMultipart posts a multipart form with a json part and the given file parts
func (c *APIClient) executeMultipart(ctx context.Context, endpoint, actionType string, doc interface{}, files []filePart, response interface{}) error {
	form, contentType, err := buildMultipart(doc, files)
	if err != nil {
		return err
	}

	agent, err := c.createAgent(ctx, http.MethodPost, endpoint)
	if err != nil {
		return err
	}
	if actionType != "" {
		agent.Set(HeaderActionType, actionType)
	}
	agent.ContentType(contentType)
	agent.Body(form)

	return c.doRequest(ctx, http.MethodPost, endpoint, agent, response)
}

// filePart is one file field of a multipart submission
type filePart struct {
	field string
	path  string
}

// buildMultipart encodes doc as the "json" part followed by every file part
func buildMultipart(doc interface{}, files []filePart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="json"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("error creating json part: %w", err)
	}
	if err := writeJSON(part, doc); err != nil {
		return nil, "", fmt.Errorf("error encoding json part: %w", err)
	}

	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := addFile(w, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeJSON(w io.Writer, doc interface{}) error {
	return json.NewEncoder(w).Encode(doc)
}

func addFile(w *multipart.Writer, f filePart) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("error opening %s file: %w", f.field, err)
	}
	defer file.Close()

	part, err := w.CreateFormFile(f.field, filepath.Base(f.path))
	if err != nil {
		return fmt.Errorf("error creating %s part: %w", f.field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("error reading %s file: %w", f.field, err)
	}
	return nil
}

// Submissions

// Deploy submits a deployment (import) of a package
func (c *APIClient) Deploy(ctx context.Context, req models.DeploymentRequest, files DeployFiles) (models.DeployResponse, error) {
	parts := []filePart{
		{field: "packageFileName", path: files.Package},
		{field: "customizationFileName", path: files.Customization},
		{field: "adminConsoleSettingsFileName", path: files.AdminConsoleSettings},
		{field: "pluginsFileName", path: files.Plugins},
	}
	for i, script := range files.DatabaseScripts {
		parts = append(parts, filePart{field: fmt.Sprintf("databaseScript%d", i+1), path: script})
	}

	var response models.DeployResponse
	if err := c.executeMultipart(ctx, routes.SubmitDeploymentURL(), ActionTypeImport, req, parts, &response); err != nil {
		return models.DeployResponse{}, err
	}
	return response, nil
}

// Export submits an export of applications or a package
func (c *APIClient) Export(ctx context.Context, req models.ExportRequest) (models.ExportResponse, error) {
	var response models.ExportResponse
	if err := c.executeMultipart(ctx, routes.SubmitExportURL(), ActionTypeExport, req, nil, &response); err != nil {
		return models.ExportResponse{}, err
	}
	return response, nil
}

// Inspect submits a package for inspection
func (c *APIClient) Inspect(ctx context.Context, req models.InspectionRequest, files InspectFiles) (models.InspectionResponse, error) {
	parts := []filePart{
		{field: "zipFile", path: files.Package},
		{field: "ICF", path: files.Customization},
		{field: "adminConsole", path: files.AdminConsoleSettings},
	}

	var response models.InspectionResponse
	if err := c.executeMultipart(ctx, routes.SubmitInspectionURL(), "", req, parts, &response); err != nil {
		return models.InspectionResponse{}, err
	}
	return response, nil
}

// Status documents

// GetDeploymentStatus retrieves the status document of a deployment
func (c *APIClient) GetDeploymentStatus(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
	var response models.DeploymentStatusResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetDeploymentStatusURL(id), &response); err != nil {
		return models.DeploymentStatusResponse{}, err
	}
	return response, nil
}

// GetExportStatus retrieves the status document of an export
func (c *APIClient) GetExportStatus(ctx context.Context, id uuid.UUID) (models.ExportResponse, error) {
	var response models.ExportResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetDeploymentURL(id), &response); err != nil {
		return models.ExportResponse{}, err
	}
	return response, nil
}

// GetInspectionStatus retrieves the status of an inspection
func (c *APIClient) GetInspectionStatus(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error) {
	var response models.InspectionStatusResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetInspectionURL(id), &response); err != nil {
		return models.InspectionStatusResponse{}, err
	}
	return response, nil
}

// Results documents

// GetDeploymentResults retrieves the results of a deployment or export
func (c *APIClient) GetDeploymentResults(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
	var response models.DeploymentResults
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetDeploymentURL(id), &response); err != nil {
		return models.DeploymentResults{}, err
	}
	return response, nil
}

// GetInspectionResults retrieves the results of an inspection
func (c *APIClient) GetInspectionResults(ctx context.Context, id uuid.UUID) (models.InspectionResults, error) {
	var response models.InspectionResults
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetInspectionURL(id), &response); err != nil {
		return models.InspectionResults{}, err
	}
	return response, nil
}

// Logs, packages and artifacts

// GetDeploymentLogs retrieves the log of a deployment. A tail of zero returns the whole log.
func (c *APIClient) GetDeploymentLogs(ctx context.Context, id uuid.UUID, tail int) (models.LogsResponse, error) {
	var response models.LogsResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetDeploymentLogURL(id, tail), &response); err != nil {
		return models.LogsResponse{}, err
	}
	return response, nil
}

// GetPackages lists the packages of the given applications
func (c *APIClient) GetPackages(ctx context.Context, appUUIDs []string) (models.PackageListResponse, error) {
	var response models.PackageListResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetPackagesURL(appUUIDs), &response); err != nil {
		return models.PackageListResponse{}, err
	}
	return response, nil
}

// Download writes the artifact at location to w. Location is either an absolute
// URL taken from a results document or an artifact id. Credentials are sent
// only when the URL has the scheme and host of the base URL.
//
// The fiber agent reads the whole response before returning, so the artifact
// is held in memory once before it is written to w.
func (c *APIClient) Download(ctx context.Context, location string, w io.Writer) (int64, error) {
	endpoint := location
	if !strings.Contains(location, "://") && !strings.HasPrefix(location, "/") {
		endpoint = routes.GetArtifactURL(location)
	}

	agent, err := c.createAgent(ctx, http.MethodGet, endpoint)
	if err != nil {
		return 0, err
	}
	agent.Set("Accept", "*/*")

	fullURL := c.resolve(endpoint)
	body, statusCode, err := c.send(ctx, http.MethodGet, fullURL, agent)
	if err != nil {
		return 0, err
	}
	if err := Classify(statusCode, body, fullURL, nil); err != nil {
		return 0, err
	}

	n, err := w.Write(body)
	if err != nil {
		return int64(n), fmt.Errorf("error writing artifact: %w", err)
	}
	return int64(n), nil
}
