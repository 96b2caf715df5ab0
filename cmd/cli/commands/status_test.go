package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appian-deploy/appian-deploy/pkg/models"
)

func TestStatusCommand(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	step := "Importing objects"
	mockClient.GetDeploymentStatusFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
		assert.Equal(t, testID, id)
		return models.DeploymentStatusResponse{
			DeploymentID: id,
			Status:       models.DeploymentStatusInProgress,
			CurrentStep:  &step,
			ResultLinks:  []string{"https://mysite.appiancloud.com/r/1"},
		}, nil
	}

	output, err := run("status", "--deployment-uuid", testID.String())
	require.NoError(t, err)

	assert.Contains(t, output, "Deployment Status:")
	assert.Contains(t, output, "Status: IN_PROGRESS")
	assert.Contains(t, output, "Current Step: Importing objects")
	assert.Contains(t, output, "- https://mysite.appiancloud.com/r/1")
	assert.Contains(t, output, "Operation in progress...")
}

func TestStatusCommandKinds(t *testing.T) {
	t.Run("export", func(t *testing.T) {
		mockClient, run := setupTestCommand(t)
		mockClient.GetExportStatusFn = func(ctx context.Context, id uuid.UUID) (models.ExportResponse, error) {
			return models.ExportResponse{UUID: id, URL: "u", Status: models.ExportStatusCompleted}, nil
		}

		output, err := run("get-deployment", "--deployment-uuid", testID.String(), "--kind", "export")
		require.NoError(t, err)
		assert.Len(t, mockClient.GetExportStatusCalls, 1)
		assert.Empty(t, mockClient.GetDeploymentStatusCalls)
		assert.Contains(t, output, "Export Status:")
		assert.Contains(t, output, "Operation completed")
	})

	t.Run("inspection as json", func(t *testing.T) {
		mockClient, run := setupTestCommand(t)
		mockClient.GetInspectionStatusFn = func(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error) {
			return models.InspectionStatusResponse{UUID: id, Status: models.InspectionStatusFailed}, nil
		}

		output, err := run("status", "--deployment-uuid", testID.String(), "--kind", "inspection", "--format=json")
		require.NoError(t, err, "status reports the document even when the operation failed")
		assert.Len(t, mockClient.GetInspectionStatusCalls, 1)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(output), &doc))
		assert.Equal(t, "FAILED", doc["status"])
	})
}

func TestStatusCommandUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing uuid", []string{"status"}},
		{"invalid uuid", []string{"status", "--deployment-uuid", "not-a-uuid"}},
		{"invalid kind", []string{"status", "--deployment-uuid", testID.String(), "--kind", "package"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient, run := setupTestCommand(t)
			_, err := run(tt.args...)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Empty(t, mockClient.GetDeploymentStatusCalls)
		})
	}
}

func TestResultsCommand(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	mockClient.GetDeploymentResultsFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
		return importResults(models.ImportDeploymentStatusCompletedWithImportErrors), nil
	}

	output, err := run("results", "--uuid", testID.String())
	require.NoError(t, err)
	assert.Empty(t, mockClient.GetDeploymentStatusCalls, "no polling without --poll")
	assert.Contains(t, output, "Status: COMPLETED_WITH_IMPORT_ERRORS")
	assert.Contains(t, output, "Deployment Log: https://mysite.appiancloud.com/log")
}

func TestResultsCommandExportShape(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	zip := "https://mysite.appiancloud.com/artifacts/pkg.zip"
	mockClient.GetDeploymentResultsFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
		return models.DeploymentResults{Export: &models.ExportDeploymentResults{
			PackageZip: &zip,
			Status:     models.ExportStatusCompleted,
			DatabaseScripts: []models.ExportedDatabaseScript{
				{FileName: "001.sql", OrderID: 1, URL: "https://mysite.appiancloud.com/artifacts/001.sql"},
			},
		}}, nil
	}

	output, err := run("get-deployment-results", "--deployment-uuid", testID.String(), "--kind", "export")
	require.NoError(t, err)
	assert.Contains(t, output, "Package Zip: "+zip)
	assert.Contains(t, output, "001.sql (order 1)")
	assert.NotContains(t, output, "Plugins Zip")
}

func TestResultsCommandPoll(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	mockClient.GetDeploymentStatusFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
		return models.DeploymentStatusResponse{DeploymentID: id, Status: models.DeploymentStatusSucceeded}, nil
	}
	mockClient.GetDeploymentResultsFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
		return importResults(models.ImportDeploymentStatusCompleted), nil
	}

	output, err := run("results", "--deployment-uuid", testID.String(), "--poll", "--format=json")
	require.NoError(t, err)
	assert.Len(t, mockClient.GetDeploymentStatusCalls, 1)
	assert.Len(t, mockClient.GetDeploymentResultsCalls, 1)

	var out struct {
		Snapshot struct {
			Status   string `json:"status"`
			Terminal bool   `json:"terminal"`
		} `json:"snapshot"`
		Results map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "SUCCEEDED", out.Snapshot.Status)
	assert.True(t, out.Snapshot.Terminal)
	assert.Contains(t, out.Results, "summary")
}

func TestMonitorCommand(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	statuses := []models.ExportStatus{
		models.ExportStatusInProgress,
		models.ExportStatusInProgress,
		models.ExportStatusCompleted,
	}
	mockClient.GetExportStatusFn = func(ctx context.Context, id uuid.UUID) (models.ExportResponse, error) {
		s := statuses[0]
		statuses = statuses[1:]
		return models.ExportResponse{UUID: id, URL: "u", Status: s}, nil
	}

	output, err := run("monitor", "--deployment-uuid", testID.String(), "--kind", "export", "--interval-seconds", "0")
	require.NoError(t, err)
	assert.Len(t, mockClient.GetExportStatusCalls, 3, "one query per iteration until terminal")
	assert.Contains(t, output, "Operation "+testID.String()+" completed after")
	assert.Contains(t, output, "Status: COMPLETED")
	assert.Empty(t, mockClient.GetDeploymentResultsCalls, "monitor does not fetch results")
}

func TestMonitorCommandUnsuccessful(t *testing.T) {
	mockClient, run := setupTestCommand(t)
	mockClient.GetDeploymentStatusFn = func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
		return models.DeploymentStatusResponse{DeploymentID: id, Status: models.DeploymentStatusRolledBack}, nil
	}

	_, err := run("monitor", "--deployment-uuid", testID.String())
	require.Error(t, err)
	assert.Equal(t, ExitOperationFailed, ExitCode(err))
}

func TestMonitorCommandInvalidDurations(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "negative interval", args: []string{"--interval-seconds", "-1"}, wantErr: "--interval-seconds cannot be negative"},
		{name: "negative timeout", args: []string{"--timeout-seconds", "-1"}, wantErr: "--timeout-seconds must be greater than 0"},
		{name: "zero timeout", args: []string{"--timeout-seconds", "0"}, wantErr: "--timeout-seconds must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient, run := setupTestCommand(t)
			args := append([]string{"monitor", "--deployment-uuid", testID.String()}, tt.args...)
			_, err := run(args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Empty(t, mockClient.GetDeploymentStatusCalls)
		})
	}
}
