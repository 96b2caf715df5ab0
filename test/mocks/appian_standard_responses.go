package mocks

import (
	"time"

	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// Default test values for operations
var (
	DefaultAPIKey        = "test-api-key"
	DefaultDeploymentID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	DefaultExportID      = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	DefaultInspectionID  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	DefaultApplicationID = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	DefaultPackageZip    = []byte("PK\x03\x04mock-package-contents")

	// DefaultSubmitStatus is the free-text status returned by a deployment submission
	DefaultSubmitStatus = "InProgress"

	DefaultLogTime = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
)

// StandardResponses contains the operation scripts used unless a test overrides them
type StandardResponses struct {
	Deployment MockOperation
	Export     MockOperation
	Inspection MockOperation
	Packages   models.PackageListResponse
}

// NewStandardResponses returns scripts where every operation succeeds on its second status query
func NewStandardResponses() *StandardResponses {
	return &StandardResponses{
		Deployment: MockOperation{
			ID:            DefaultDeploymentID,
			Statuses:      []string{string(models.DeploymentStatusInProgress), string(models.DeploymentStatusSucceeded)},
			ImportResults: DefaultImportResults(),
			Logs:          DefaultLogs(),
		},
		Export: MockOperation{
			ID:       DefaultExportID,
			Statuses: []string{string(models.ExportStatusInProgress), string(models.ExportStatusCompleted)},
			Artifact: DefaultPackageZip,
		},
		Inspection: MockOperation{
			ID:                DefaultInspectionID,
			Statuses:          []string{string(models.InspectionStatusInProgress), string(models.InspectionStatusCompleted)},
			InspectionSummary: DefaultInspectionSummary(),
		},
		Packages: models.PackageListResponse{
			Packages: []models.Package{
				{
					ID:        "pkg-1",
					Name:      "Customer Portal",
					Version:   "1.4.0",
					CreatedAt: DefaultLogTime,
					UpdatedAt: DefaultLogTime,
				},
			},
			Total: 1,
		},
	}
}

// DefaultImportResults returns import results with 10 objects of which one failed
func DefaultImportResults() *models.ImportDeploymentResults {
	return &models.ImportDeploymentResults{
		Summary: models.ImportSummary{
			AdminConsoleSettings: models.AdminConsoleSettingsSummary{Total: 2, Imported: 2},
			Plugins:              models.PluginsSummary{},
			Objects:              models.ObjectsSummary{Total: 10, Imported: 9, Failed: 1, Skipped: 0},
			DeploymentLogURL:     "https://mysite.appiancloud.com/suite/deployment-management/v2/deployments/log",
		},
		Status: models.ImportDeploymentStatusCompletedWithImportErrors,
	}
}

// DefaultInspectionSummary returns an inspection summary with one warning and no errors
func DefaultInspectionSummary() *models.InspectionSummary {
	return &models.InspectionSummary{
		ObjectsExpected: models.InspectionCountSummary{Total: 5, Imported: 5},
		Problems: models.InspectionProblemsSummary{
			TotalWarnings: 1,
			Errors:        []models.InspectionErrorEntry{},
			Warnings: []models.InspectionWarningEntry{
				{
					WarningMessage: "The record type references a missing data source",
					ObjectName:     "Customer",
					ObjectUUID:     "_a-0001",
				},
			},
		},
	}
}

// DefaultLogs returns a short deployment log
func DefaultLogs() []models.LogEntry {
	return []models.LogEntry{
		{Timestamp: DefaultLogTime, Level: models.LogLevelInfo, Component: "deployment", Message: "Deployment started"},
		{Timestamp: DefaultLogTime.Add(time.Second), Level: models.LogLevelWarn, Component: "import", Message: "Object Customer failed to import"},
		{Timestamp: DefaultLogTime.Add(2 * time.Second), Level: models.LogLevelInfo, Component: "deployment", Message: "Deployment finished"},
	}
}
