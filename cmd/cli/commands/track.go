package commands

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	dbmodels "github.com/appian-deploy/appian-deploy/internal/db/models"
	"github.com/appian-deploy/appian-deploy/internal/db/repos"
	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/internal/tracker"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// trackedOutput is printed after waiting for an operation
type trackedOutput struct {
	Snapshot models.Snapshot        `json:"snapshot"`
	Results  models.ResultsDocument `json:"results,omitempty"`
}

// pollerOptions builds the polling options from the [monitor] configuration
func (c *cli) pollerOptions(ctx context.Context) tracker.Options {
	m := c.cfg.Monitor
	opts := tracker.DefaultOptions()
	opts.Interval = m.PollInterval()
	opts.Timeout = m.PollTimeout()
	opts.Backoff = tracker.BackoffOptions{
		Enabled: m.Backoff,
		Initial: m.BackoffInitial(),
		Max:     m.BackoffMax(),
		Jitter:  m.Jitter,
	}
	opts.OnProgress = func(s models.Snapshot) {
		logger.InfoWithFields("operation in progress", map[string]interface{}{
			"uuid":   s.Operation.ID.String(),
			"kind":   s.Operation.Kind.String(),
			"status": s.Status.String(),
		})
		c.recordSnapshot(ctx, s)
	}
	return opts
}

// waitFor tracks the operation to a terminal status, prints the snapshot with
// its results and fails when the operation did not succeed
func (c *cli) waitFor(cmd *cobra.Command, api client.Client, id uuid.UUID, kind models.OperationKind, opts tracker.Options) error {
	ctx := cmd.Context()
	logger.Infof("Waiting for %s %s to finish", kind, id)

	snapshot, results, err := tracker.TrackAndFetch(ctx, tracker.NewPoller(api, opts), tracker.NewResolver(api), id, kind)
	if snapshot != nil {
		c.recordSnapshot(ctx, *snapshot)
	}
	if err != nil {
		var timeout *tracker.PollTimeoutError
		if errors.As(err, &timeout) && timeout.Last != nil {
			c.recordSnapshot(ctx, *timeout.Last)
		}
		return err
	}

	out := trackedOutput{Snapshot: *snapshot, Results: results}
	if err := c.render(cmd, out, func(w io.Writer) {
		printSnapshot(w, *snapshot)
		printResults(w, results)
	}); err != nil {
		return err
	}
	return checkOutcome(*snapshot)
}

// checkOutcome fails for terminal statuses other than the clean success
func checkOutcome(s models.Snapshot) error {
	if s.Status != nil && s.Status.IsSuccess() {
		return nil
	}
	return &OperationFailedError{Snapshot: s}
}

// recordSubmission stores a newly submitted operation in the history, if enabled
func (c *cli) recordSubmission(ctx context.Context, id uuid.UUID, kind models.OperationKind, name, url, status string) {
	if c.history == nil {
		return
	}
	err := c.history.Record(ctx, &dbmodels.Operation{
		UUID:    id.String(),
		Kind:    kind.String(),
		Name:    name,
		BaseURL: c.cfg.BaseURL,
		URL:     url,
		Status:  status,
	})
	if err != nil {
		logger.Warnf("Failed to record %s %s in history: %v", kind, id, err)
	}
}

// recordSnapshot stores the latest observed status in the history, if enabled
func (c *cli) recordSnapshot(ctx context.Context, s models.Snapshot) {
	if c.history == nil || s.Status == nil {
		return
	}
	id := s.Operation.ID.String()
	status := s.Status.String()

	err := c.history.UpdateStatus(ctx, id, status, s.Status.IsTerminal(), s.Status.IsSuccess(), s.ObservedAt)
	if errors.Is(err, repos.ErrOperationNotFound) {
		observedAt := s.ObservedAt
		err = c.history.Record(ctx, &dbmodels.Operation{
			UUID:          id,
			Kind:          s.Operation.Kind.String(),
			BaseURL:       c.cfg.BaseURL,
			Status:        status,
			Terminal:      s.Status.IsTerminal(),
			Success:       s.Status.IsSuccess(),
			LastCheckedAt: &observedAt,
		})
	}
	if err != nil {
		logger.Warnf("Failed to record status of %s in history: %v", id, err)
	}
}
