// Package mock provides a function-field implementation of client.Client for tests
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// IDCall records a call that takes an operation id
type IDCall struct {
	Ctx context.Context
	ID  uuid.UUID
}

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	DeployFn               func(ctx context.Context, req models.DeploymentRequest, files client.DeployFiles) (models.DeployResponse, error)
	ExportFn               func(ctx context.Context, req models.ExportRequest) (models.ExportResponse, error)
	InspectFn              func(ctx context.Context, req models.InspectionRequest, files client.InspectFiles) (models.InspectionResponse, error)
	GetDeploymentStatusFn  func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error)
	GetExportStatusFn      func(ctx context.Context, id uuid.UUID) (models.ExportResponse, error)
	GetInspectionStatusFn  func(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error)
	GetDeploymentResultsFn func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error)
	GetInspectionResultsFn func(ctx context.Context, id uuid.UUID) (models.InspectionResults, error)
	GetDeploymentLogsFn    func(ctx context.Context, id uuid.UUID, tail int) (models.LogsResponse, error)
	GetPackagesFn          func(ctx context.Context, appUUIDs []string) (models.PackageListResponse, error)
	DownloadFn             func(ctx context.Context, location string, w io.Writer) (int64, error)

	mu sync.Mutex

	// Call tracking for verification
	DeployCalls []struct {
		Ctx   context.Context
		Req   models.DeploymentRequest
		Files client.DeployFiles
	}
	ExportCalls []struct {
		Ctx context.Context
		Req models.ExportRequest
	}
	InspectCalls []struct {
		Ctx   context.Context
		Req   models.InspectionRequest
		Files client.InspectFiles
	}
	GetDeploymentStatusCalls  []IDCall
	GetExportStatusCalls      []IDCall
	GetInspectionStatusCalls  []IDCall
	GetDeploymentResultsCalls []IDCall
	GetInspectionResultsCalls []IDCall
	GetDeploymentLogsCalls    []struct {
		Ctx  context.Context
		ID   uuid.UUID
		Tail int
	}
	GetPackagesCalls []struct {
		Ctx      context.Context
		AppUUIDs []string
	}
	DownloadCalls []struct {
		Ctx      context.Context
		Location string
	}
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// Deploy implements Client.Deploy
func (m *MockClient) Deploy(ctx context.Context, req models.DeploymentRequest, files client.DeployFiles) (models.DeployResponse, error) {
	m.mu.Lock()
	m.DeployCalls = append(m.DeployCalls, struct {
		Ctx   context.Context
		Req   models.DeploymentRequest
		Files client.DeployFiles
	}{ctx, req, files})
	m.mu.Unlock()

	if m.DeployFn != nil {
		return m.DeployFn(ctx, req, files)
	}
	return models.DeployResponse{}, nil
}

// Export implements Client.Export
func (m *MockClient) Export(ctx context.Context, req models.ExportRequest) (models.ExportResponse, error) {
	m.mu.Lock()
	m.ExportCalls = append(m.ExportCalls, struct {
		Ctx context.Context
		Req models.ExportRequest
	}{ctx, req})
	m.mu.Unlock()

	if m.ExportFn != nil {
		return m.ExportFn(ctx, req)
	}
	return models.ExportResponse{}, nil
}

// Inspect implements Client.Inspect
func (m *MockClient) Inspect(ctx context.Context, req models.InspectionRequest, files client.InspectFiles) (models.InspectionResponse, error) {
	m.mu.Lock()
	m.InspectCalls = append(m.InspectCalls, struct {
		Ctx   context.Context
		Req   models.InspectionRequest
		Files client.InspectFiles
	}{ctx, req, files})
	m.mu.Unlock()

	if m.InspectFn != nil {
		return m.InspectFn(ctx, req, files)
	}
	return models.InspectionResponse{}, nil
}

// GetDeploymentStatus implements Client.GetDeploymentStatus
func (m *MockClient) GetDeploymentStatus(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
	m.record(ctx, &m.GetDeploymentStatusCalls, id)
	if m.GetDeploymentStatusFn != nil {
		return m.GetDeploymentStatusFn(ctx, id)
	}
	return models.DeploymentStatusResponse{}, nil
}

// GetExportStatus implements Client.GetExportStatus
func (m *MockClient) GetExportStatus(ctx context.Context, id uuid.UUID) (models.ExportResponse, error) {
	m.record(ctx, &m.GetExportStatusCalls, id)
	if m.GetExportStatusFn != nil {
		return m.GetExportStatusFn(ctx, id)
	}
	return models.ExportResponse{}, nil
}

// GetInspectionStatus implements Client.GetInspectionStatus
func (m *MockClient) GetInspectionStatus(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error) {
	m.record(ctx, &m.GetInspectionStatusCalls, id)
	if m.GetInspectionStatusFn != nil {
		return m.GetInspectionStatusFn(ctx, id)
	}
	return models.InspectionStatusResponse{}, nil
}

// GetDeploymentResults implements Client.GetDeploymentResults
func (m *MockClient) GetDeploymentResults(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
	m.record(ctx, &m.GetDeploymentResultsCalls, id)
	if m.GetDeploymentResultsFn != nil {
		return m.GetDeploymentResultsFn(ctx, id)
	}
	return models.DeploymentResults{}, nil
}

// GetInspectionResults implements Client.GetInspectionResults
func (m *MockClient) GetInspectionResults(ctx context.Context, id uuid.UUID) (models.InspectionResults, error) {
	m.record(ctx, &m.GetInspectionResultsCalls, id)
	if m.GetInspectionResultsFn != nil {
		return m.GetInspectionResultsFn(ctx, id)
	}
	return models.InspectionResults{}, nil
}

// GetDeploymentLogs implements Client.GetDeploymentLogs
func (m *MockClient) GetDeploymentLogs(ctx context.Context, id uuid.UUID, tail int) (models.LogsResponse, error) {
	m.mu.Lock()
	m.GetDeploymentLogsCalls = append(m.GetDeploymentLogsCalls, struct {
		Ctx  context.Context
		ID   uuid.UUID
		Tail int
	}{ctx, id, tail})
	m.mu.Unlock()

	if m.GetDeploymentLogsFn != nil {
		return m.GetDeploymentLogsFn(ctx, id, tail)
	}
	return models.LogsResponse{}, nil
}

// GetPackages implements Client.GetPackages
func (m *MockClient) GetPackages(ctx context.Context, appUUIDs []string) (models.PackageListResponse, error) {
	m.mu.Lock()
	m.GetPackagesCalls = append(m.GetPackagesCalls, struct {
		Ctx      context.Context
		AppUUIDs []string
	}{ctx, appUUIDs})
	m.mu.Unlock()

	if m.GetPackagesFn != nil {
		return m.GetPackagesFn(ctx, appUUIDs)
	}
	return models.PackageListResponse{}, nil
}

// Download implements Client.Download
func (m *MockClient) Download(ctx context.Context, location string, w io.Writer) (int64, error) {
	m.mu.Lock()
	m.DownloadCalls = append(m.DownloadCalls, struct {
		Ctx      context.Context
		Location string
	}{ctx, location})
	m.mu.Unlock()

	if m.DownloadFn != nil {
		return m.DownloadFn(ctx, location, w)
	}
	return 0, nil
}

func (m *MockClient) record(ctx context.Context, calls *[]IDCall, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*calls = append(*calls, IDCall{Ctx: ctx, ID: id})
}
