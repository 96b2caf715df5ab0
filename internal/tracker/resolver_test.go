package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client/mock"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

func importResults(t *testing.T) models.DeploymentResults {
	t.Helper()
	var results models.DeploymentResults
	body := `{"summary":{"adminConsoleSettings":{"total":10,"imported":9,"failed":1,"skipped":0}},"status":"COMPLETED"}`
	require.NoError(t, json.Unmarshal([]byte(body), &results))
	return results
}

func TestResolverFetch(t *testing.T) {
	src := &mock.MockClient{
		GetDeploymentResultsFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
			return importResults(t), nil
		},
		GetInspectionResultsFn: func(ctx context.Context, id uuid.UUID) (models.InspectionResults, error) {
			return models.InspectionResults{Status: models.InspectionStatusCompleted, Summary: &models.InspectionSummary{}}, nil
		},
	}
	r := NewResolver(src)

	tests := []struct {
		kind models.OperationKind
		want interface{}
	}{
		{kind: models.OperationKindDeployment, want: &models.DeploymentResults{}},
		{kind: models.OperationKindExport, want: &models.DeploymentResults{}},
		{kind: models.OperationKindInspection, want: &models.InspectionResults{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			doc, err := r.Fetch(context.Background(), testID, tt.kind)
			require.NoError(t, err)
			assert.IsType(t, tt.want, doc)
		})
	}

	assert.Len(t, src.GetDeploymentResultsCalls, 2)
	assert.Len(t, src.GetInspectionResultsCalls, 1)

	_, err := r.Fetch(context.Background(), testID, models.OperationKind("bogus"))
	assert.Error(t, err)
}

func TestResolverFetchPropagatesErrors(t *testing.T) {
	notFound := &client.NotFoundError{Status: 404, Message: "unknown deployment"}
	r := NewResolver(&mock.MockClient{
		GetDeploymentResultsFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
			return models.DeploymentResults{}, notFound
		},
	})

	doc, err := r.Fetch(context.Background(), testID, models.OperationKindDeployment)
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, notFound))
}

func TestResolverFetchRejectsEmptyDocuments(t *testing.T) {
	r := NewResolver(&mock.MockClient{
		GetDeploymentResultsFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
			return models.DeploymentResults{}, nil
		},
		GetInspectionResultsFn: func(ctx context.Context, id uuid.UUID) (models.InspectionResults, error) {
			return models.InspectionResults{}, nil
		},
	})

	for _, kind := range []models.OperationKind{
		models.OperationKindDeployment,
		models.OperationKindExport,
		models.OperationKindInspection,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			doc, err := r.Fetch(context.Background(), testID, kind)
			assert.Nil(t, doc)
			var de *client.DecodeError
			require.True(t, errors.As(err, &de))
		})
	}

	_, err := r.Fetch(context.Background(), testID, models.OperationKindDeployment)
	assert.ErrorIs(t, err, models.ErrUnknownResultsShape)
}

func TestTrackAndFetch(t *testing.T) {
	statusCalls := 0
	src := &mock.MockClient{
		GetDeploymentStatusFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
			statusCalls++
			if statusCalls < 2 {
				return models.DeploymentStatusResponse{Status: models.DeploymentStatusInProgress}, nil
			}
			return models.DeploymentStatusResponse{Status: models.DeploymentStatusSucceeded}, nil
		},
		GetDeploymentResultsFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error) {
			return importResults(t), nil
		},
	}

	p := NewPoller(src, Options{Interval: 0, Timeout: 5 * time.Second})
	snapshot, doc, err := TrackAndFetch(context.Background(), p, NewResolver(src), testID, models.OperationKindDeployment)
	require.NoError(t, err)
	assert.Equal(t, models.DeploymentStatusSucceeded, snapshot.Status)
	assert.Equal(t, 2, statusCalls)

	results, ok := doc.(*models.DeploymentResults)
	require.True(t, ok)
	require.NotNil(t, results.Import)
	assert.Equal(t, models.AdminConsoleSettingsSummary{Total: 10, Imported: 9, Failed: 1, Skipped: 0}, results.Import.Summary.AdminConsoleSettings)
}

func TestTrackAndFetchSkipsResultsOnTimeout(t *testing.T) {
	src := &mock.MockClient{
		GetDeploymentStatusFn: func(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error) {
			return models.DeploymentStatusResponse{Status: models.DeploymentStatusInProgress}, nil
		},
	}

	p, _ := newTestPoller(Options{Interval: time.Minute, Timeout: time.Second})
	p.src = src

	_, _, err := TrackAndFetch(context.Background(), p, NewResolver(src), testID, models.OperationKindDeployment)
	var pollErr *PollTimeoutError
	require.True(t, errors.As(err, &pollErr))
	assert.Empty(t, src.GetDeploymentResultsCalls)
}
