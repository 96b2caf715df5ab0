package mocks

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/routes"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// This file contains an in-memory deployment-management API served through fiber handlers

// MockOperation scripts how one operation evolves on the server
type MockOperation struct {
	// ID is assigned on submission. A nil ID gets a random one.
	ID uuid.UUID
	// Statuses are returned by successive status queries; the last one repeats
	Statuses []string

	ImportResults     *models.ImportDeploymentResults
	InspectionSummary *models.InspectionSummary
	Logs              []models.LogEntry
	Artifact          []byte
}

// Submission is one multipart submission received by the mock
type Submission struct {
	Kind       models.OperationKind
	ActionType string
	JSON       map[string]interface{}
	// Files maps a form field to the uploaded file name
	Files map[string]string
}

type mockState struct {
	kind    models.OperationKind
	script  MockOperation
	queries int
}

// MockAppianAPI implements the deployment-management API for testing
type MockAppianAPI struct {
	APIKey            string
	StandardResponses *StandardResponses

	mu          sync.Mutex
	operations  map[uuid.UUID]*mockState
	submissions []Submission
}

// NewMockAppianAPI creates a mock API accepting DefaultAPIKey
func NewMockAppianAPI() *MockAppianAPI {
	return &MockAppianAPI{
		APIKey:            DefaultAPIKey,
		StandardResponses: NewStandardResponses(),
		operations:        make(map[uuid.UUID]*mockState),
	}
}

// Handlers returns the fiber handler of every route
func (m *MockAppianAPI) Handlers() routes.Handlers {
	return routes.Handlers{
		routes.GetPackages:         m.authorized(m.getPackages),
		routes.GetArtifact:         m.authorized(m.getArtifact),
		routes.GetDeploymentStatus: m.authorized(m.getDeploymentStatus),
		routes.GetDeploymentLog:    m.authorized(m.getDeploymentLog),
		routes.SubmitDeployment:    m.authorized(m.submitDeployment),
		routes.GetDeployment:       m.authorized(m.getDeployment),
		routes.GetInspection:       m.authorized(m.getInspection),
		routes.SubmitExport:        m.authorized(m.submitExport),
		routes.SubmitInspection:    m.authorized(m.submitInspection),
	}
}

// AddOperation registers an operation as if it had been submitted earlier
func (m *MockAppianAPI) AddOperation(kind models.OperationKind, op MockOperation) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(kind, op)
}

// Queries returns how many status documents were served for the operation
func (m *MockAppianAPI) Queries(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.operations[id]; ok {
		return st.queries
	}
	return 0
}

// Submissions returns the submissions received so far
func (m *MockAppianAPI) Submissions() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Submission, len(m.submissions))
	copy(out, m.submissions)
	return out
}

func (m *MockAppianAPI) add(kind models.OperationKind, op MockOperation) uuid.UUID {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	m.operations[op.ID] = &mockState{kind: kind, script: op}
	return op.ID
}

// authorized rejects requests that do not carry the API key in both headers
func (m *MockAppianAPI) authorized(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer "+m.APIKey || c.Get(client.HeaderAPIKey) != m.APIKey {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid API key")
		}
		return h(c)
	}
}

// lookup returns the operation named by the uuid param if it has the given kind
func (m *MockAppianAPI) lookup(c *fiber.Ctx, kind models.OperationKind) (*mockState, uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid uuid %q", c.Params("uuid")))
	}
	st, ok := m.operations[id]
	if !ok || st.kind != kind {
		return nil, uuid.Nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s %s not found", kind, id))
	}
	return st, id, nil
}

// advance serves the next scripted status
func (st *mockState) advance() string {
	if len(st.script.Statuses) == 0 {
		return ""
	}
	i := st.queries
	if i >= len(st.script.Statuses) {
		i = len(st.script.Statuses) - 1
	}
	st.queries++
	return st.script.Statuses[i]
}

// Deployment API

func (m *MockAppianAPI) getPackages(c *fiber.Ctx) error {
	if c.Query("app_uuids") == "" {
		return fiber.NewError(fiber.StatusBadRequest, "app_uuids is required")
	}
	return c.JSON(m.StandardResponses.Packages)
}

func (m *MockAppianAPI) getArtifact(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "artifact not found")
	}
	st, ok := m.operations[id]
	if !ok || st.script.Artifact == nil {
		return fiber.NewError(fiber.StatusNotFound, "artifact not found")
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	return c.Send(st.script.Artifact)
}

func (m *MockAppianAPI) getDeploymentStatus(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, id, err := m.lookup(c, models.OperationKindDeployment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"deploymentId": id,
		"status":       st.advance(),
	})
}

func (m *MockAppianAPI) getDeploymentLog(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, _, err := m.lookup(c, models.OperationKindDeployment)
	if err != nil {
		return err
	}

	logs := st.script.Logs
	if logs == nil {
		logs = []models.LogEntry{}
	}
	tail := c.QueryInt("tail", 0)
	hasMore := false
	if tail > 0 && tail < len(logs) {
		logs = logs[len(logs)-tail:]
		hasMore = true
	}
	return c.JSON(models.LogsResponse{
		Logs:    logs,
		Total:   len(st.script.Logs),
		HasMore: hasMore,
	})
}

func (m *MockAppianAPI) submitDeployment(c *fiber.Ctx) error {
	sub, err := readSubmission(c, models.OperationKindDeployment)
	if err != nil {
		return err
	}
	if c.Get(client.HeaderActionType) != client.ActionTypeImport {
		return fiber.NewError(fiber.StatusBadRequest, "Action-Type must be import")
	}
	if sub.JSON["name"] == nil {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if _, ok := sub.Files["packageFileName"]; !ok {
		return fiber.NewError(fiber.StatusBadRequest, "packageFileName is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, sub)
	id := m.add(models.OperationKindDeployment, m.StandardResponses.Deployment)

	return c.JSON(fiber.Map{
		"uuid":   id,
		"url":    c.BaseURL() + routes.GetDeploymentStatusURL(id),
		"status": DefaultSubmitStatus,
	})
}

// Suite API

// getDeployment serves the export status document or the deployment results,
// depending on the kind of the operation
func (m *MockAppianAPI) getDeployment(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid uuid %q", c.Params("uuid")))
	}
	st, ok := m.operations[id]
	if !ok || st.kind == models.OperationKindInspection {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("deployment %s not found", id))
	}

	if st.kind == models.OperationKindDeployment {
		if st.script.ImportResults == nil {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("results of %s are not available", id))
		}
		return c.JSON(st.script.ImportResults)
	}

	status := st.advance()
	doc := fiber.Map{
		"uuid":       id,
		"url":        c.BaseURL() + routes.GetDeploymentURL(id),
		"status":     status,
		"packageZip": nil,
	}
	exportStatus := models.ExportStatus(status)
	if exportStatus.IsTerminal() && st.script.Artifact != nil {
		doc["packageZip"] = c.BaseURL() + routes.GetArtifactURL(id.String())
	}
	return c.JSON(doc)
}

func (m *MockAppianAPI) getInspection(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, id, err := m.lookup(c, models.OperationKindInspection)
	if err != nil {
		return err
	}
	status := models.InspectionOperationStatus(st.advance())
	doc := fiber.Map{
		"uuid":   id,
		"status": status,
	}
	if status.IsTerminal() && st.script.InspectionSummary != nil {
		doc["summary"] = st.script.InspectionSummary
	}
	return c.JSON(doc)
}

func (m *MockAppianAPI) submitExport(c *fiber.Ctx) error {
	sub, err := readSubmission(c, models.OperationKindExport)
	if err != nil {
		return err
	}
	if c.Get(client.HeaderActionType) != client.ActionTypeExport {
		return fiber.NewError(fiber.StatusBadRequest, "Action-Type must be export")
	}
	if ids, ok := sub.JSON["uuids"].([]interface{}); !ok || len(ids) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "uuids is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, sub)
	id := m.add(models.OperationKindExport, m.StandardResponses.Export)

	return c.JSON(fiber.Map{
		"uuid":   id,
		"url":    c.BaseURL() + routes.GetDeploymentURL(id),
		"status": models.ExportStatusInProgress,
	})
}

func (m *MockAppianAPI) submitInspection(c *fiber.Ctx) error {
	sub, err := readSubmission(c, models.OperationKindInspection)
	if err != nil {
		return err
	}
	if _, ok := sub.Files["zipFile"]; !ok {
		return fiber.NewError(fiber.StatusBadRequest, "zipFile is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, sub)
	id := m.add(models.OperationKindInspection, m.StandardResponses.Inspection)

	return c.JSON(fiber.Map{
		"uuid": id,
		"url":  c.BaseURL() + routes.GetInspectionURL(id),
	})
}

// readSubmission parses the json part and the file parts of a multipart submission
func readSubmission(c *fiber.Ctx, kind models.OperationKind) (Submission, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return Submission{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid multipart body: %v", err))
	}

	raw, err := jsonPart(form)
	if err != nil {
		return Submission{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Submission{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid json part: %v", err))
	}

	files := make(map[string]string, len(form.File))
	for field, headers := range form.File {
		if len(headers) > 0 {
			files[field] = headers[0].Filename
		}
	}

	return Submission{
		Kind:       kind,
		ActionType: c.Get(client.HeaderActionType),
		JSON:       doc,
		Files:      files,
	}, nil
}

// jsonPart returns the json part, sent either as a plain value or as a file
func jsonPart(form *multipart.Form) ([]byte, error) {
	if values := form.Value["json"]; len(values) > 0 {
		return []byte(values[0]), nil
	}
	if headers := form.File["json"]; len(headers) > 0 {
		f, err := headers[0].Open()
		if err != nil {
			return nil, fmt.Errorf("error reading json part: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return nil, fmt.Errorf("json part is required")
}
