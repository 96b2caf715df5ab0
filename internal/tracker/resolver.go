package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// ResultsSource is the subset of the API client that serves final results
type ResultsSource interface {
	GetDeploymentResults(ctx context.Context, id uuid.UUID) (models.DeploymentResults, error)
	GetInspectionResults(ctx context.Context, id uuid.UUID) (models.InspectionResults, error)
}

// Source serves both status and results
type Source interface {
	StatusSource
	ResultsSource
}

// Resolver fetches the final results document of an operation
type Resolver struct {
	src ResultsSource
}

// NewResolver creates a Resolver reading results from src
func NewResolver(src ResultsSource) *Resolver {
	return &Resolver{src: src}
}

// Fetch returns *models.DeploymentResults for deployments and exports and
// *models.InspectionResults for inspections. It does not wait for the
// operation to be terminal. A document carrying neither shape is a *client.DecodeError.
func (r *Resolver) Fetch(ctx context.Context, id uuid.UUID, kind models.OperationKind) (models.ResultsDocument, error) {
	switch kind {
	case models.OperationKindDeployment, models.OperationKindExport:
		results, err := r.src.GetDeploymentResults(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := results.Validate(); err != nil {
			return nil, &client.DecodeError{Target: "models.DeploymentResults", Err: err}
		}
		return &results, nil
	case models.OperationKindInspection:
		results, err := r.src.GetInspectionResults(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := results.Validate(); err != nil {
			return nil, &client.DecodeError{Target: "models.InspectionResults", Err: err}
		}
		return &results, nil
	default:
		return nil, fmt.Errorf("invalid operation kind: %q", kind)
	}
}

// TrackAndFetch waits for the operation to be terminal and then fetches its results
func TrackAndFetch(ctx context.Context, p *Poller, r *Resolver, id uuid.UUID, kind models.OperationKind) (*models.Snapshot, models.ResultsDocument, error) {
	snapshot, err := p.Track(ctx, id, kind)
	if err != nil {
		return nil, nil, err
	}

	results, err := r.Fetch(ctx, id, kind)
	if err != nil {
		return snapshot, nil, err
	}
	return snapshot, results, nil
}
