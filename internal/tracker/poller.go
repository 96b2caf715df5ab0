// Package tracker follows asynchronous server operations to a terminal status
// and fetches their final results.
package tracker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// Polling defaults
const (
	DefaultInterval       = 10 * time.Second
	DefaultTimeout        = time.Hour
	DefaultBackoffInitial = time.Second
	DefaultBackoffMax     = 30 * time.Second
)

// StatusSource is the subset of the API client that reports operation status
type StatusSource interface {
	GetDeploymentStatus(ctx context.Context, id uuid.UUID) (models.DeploymentStatusResponse, error)
	GetExportStatus(ctx context.Context, id uuid.UUID) (models.ExportResponse, error)
	GetInspectionStatus(ctx context.Context, id uuid.UUID) (models.InspectionStatusResponse, error)
}

// StatusQuery issues one status query and returns the status with the document it came from
type StatusQuery func(ctx context.Context, id uuid.UUID) (models.Status, interface{}, error)

// QueryFor returns the status query matching kind
func QueryFor(src StatusSource, kind models.OperationKind) (StatusQuery, error) {
	switch kind {
	case models.OperationKindDeployment:
		return func(ctx context.Context, id uuid.UUID) (models.Status, interface{}, error) {
			doc, err := src.GetDeploymentStatus(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			return doc.Status, doc, nil
		}, nil
	case models.OperationKindExport:
		return func(ctx context.Context, id uuid.UUID) (models.Status, interface{}, error) {
			doc, err := src.GetExportStatus(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			return doc.Status, doc, nil
		}, nil
	case models.OperationKindInspection:
		return func(ctx context.Context, id uuid.UUID) (models.Status, interface{}, error) {
			doc, err := src.GetInspectionStatus(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			return doc.Status, doc, nil
		}, nil
	default:
		return nil, fmt.Errorf("invalid operation kind: %q", kind)
	}
}

// BackoffOptions configures exponential growth of the wait between queries.
// When disabled the Poller waits a flat Interval.
type BackoffOptions struct {
	Enabled bool
	Initial time.Duration
	Max     time.Duration
	// Jitter randomizes each wait within [wait/2, wait]
	Jitter bool
}

// Options configures one Poller
type Options struct {
	Interval time.Duration
	Timeout  time.Duration
	Backoff  BackoffOptions
	// Query overrides the status query derived from the operation kind
	Query StatusQuery
	// OnProgress receives every non-terminal snapshot
	OnProgress func(models.Snapshot)
}

// DefaultOptions returns the default polling options
func DefaultOptions() Options {
	return Options{
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
		Backoff: BackoffOptions{
			Initial: DefaultBackoffInitial,
			Max:     DefaultBackoffMax,
			Jitter:  true,
		},
	}
}

// PollTimeoutError is returned when an operation is still not terminal after the timeout
type PollTimeoutError struct {
	ID      uuid.UUID
	Kind    models.OperationKind
	Timeout time.Duration
	// Last is the most recent non-terminal snapshot, if any query completed
	Last *models.Snapshot
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s %s to finish", e.Timeout, e.Kind, e.ID)
}

// TimeoutSeconds returns the timeout in whole seconds
func (e *PollTimeoutError) TimeoutSeconds() int64 {
	return int64(e.Timeout / time.Second)
}

// Poller repeatedly queries the status of one operation until it is terminal.
// A Poller holds no per-operation state, so one value may run several Track calls.
type Poller struct {
	src  StatusSource
	opts Options

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(limit time.Duration) time.Duration
}

// NewPoller creates a Poller reading status from src
func NewPoller(src StatusSource, opts Options) *Poller {
	return &Poller{
		src:    src,
		opts:   opts,
		now:    time.Now,
		sleep:  sleepContext,
		jitter: randomDuration,
	}
}

// Track polls the operation until it reaches a terminal status, the timeout elapses,
// a query fails, or ctx is done. The first query is issued immediately.
func (p *Poller) Track(ctx context.Context, id uuid.UUID, kind models.OperationKind) (*models.Snapshot, error) {
	query := p.opts.Query
	if query == nil {
		if p.src == nil {
			return nil, fmt.Errorf("poller has neither a status source nor a query")
		}
		var err error
		if query, err = QueryFor(p.src, kind); err != nil {
			return nil, err
		}
	}

	op := models.Operation{ID: id, Kind: kind}
	start := p.now()
	var last *models.Snapshot

	for attempt := 0; ; attempt++ {
		if p.now().Sub(start) > p.opts.Timeout {
			return nil, &PollTimeoutError{ID: id, Kind: kind, Timeout: p.opts.Timeout, Last: last}
		}

		status, doc, err := query(ctx, id)
		if err != nil {
			return nil, err
		}

		snapshot := models.NewSnapshot(op, status, doc)
		logger.DebugWithFields("observed operation status", map[string]interface{}{
			"uuid":    id.String(),
			"kind":    kind.String(),
			"status":  fmt.Sprint(status),
			"attempt": attempt + 1,
		})

		if snapshot.Terminal() {
			return &snapshot, nil
		}

		last = &snapshot
		if p.opts.OnProgress != nil {
			p.opts.OnProgress(snapshot)
		}

		if err := p.sleep(ctx, p.wait(attempt)); err != nil {
			return nil, err
		}
	}
}

// wait returns the pause after the attempt-th non-terminal observation
func (p *Poller) wait(attempt int) time.Duration {
	b := p.opts.Backoff
	if !b.Enabled {
		return p.opts.Interval
	}

	initial := b.Initial
	if initial <= 0 {
		initial = DefaultBackoffInitial
	}
	maxWait := b.Max
	if maxWait < initial {
		maxWait = initial
	}

	d := initial
	for i := 0; i < attempt && d < maxWait; i++ {
		d *= 2
	}
	if d > maxWait {
		d = maxWait
	}

	if b.Jitter {
		half := d / 2
		return half + p.jitter(d-half)
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomDuration returns a uniformly random duration in [0, limit]
func randomDuration(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(limit) + 1))
}
