package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/internal/tracker"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

const (
	flagDeploymentUUID  = "deployment-uuid"
	flagKind            = "kind"
	flagPoll            = "poll"
	flagIntervalSeconds = "interval-seconds"
	flagTimeoutSeconds  = "timeout-seconds"
	flagBackoff         = "backoff"

	// results --poll keeps the fixed cadence of the original command
	resultsPollInterval = 10 * time.Second
	resultsPollTimeout  = 10 * time.Minute
)

func parseKind(value string) (models.OperationKind, error) {
	kind, err := models.ParseOperationKind(value)
	if err != nil {
		return "", &UsageError{Err: err}
	}
	return kind, nil
}

func newStatusCmd(c *cli) *cobra.Command {
	var rawID, rawKind string

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"get-deployment"},
		Short:   "Check the status of an operation",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagDeploymentUUID, rawID)
			if err != nil {
				return err
			}
			kind, err := parseKind(rawKind)
			if err != nil {
				return err
			}
			api, err := c.api()
			if err != nil {
				return err
			}

			query, err := tracker.QueryFor(api, kind)
			if err != nil {
				return &UsageError{Err: err}
			}
			logger.Infof("Getting status for %s: %s", kind, id)
			status, doc, err := query(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error fetching %s status: %w", kind, err)
			}
			c.recordSnapshot(cmd.Context(), models.NewSnapshot(models.Operation{ID: id, Kind: kind}, status, doc))

			return c.render(cmd, doc, func(w io.Writer) {
				printStatusDocument(w, doc)
			})
		},
	}

	cmd.Flags().StringVar(&rawID, flagDeploymentUUID, "", "Operation UUID")
	cmd.Flags().StringVar(&rawKind, flagKind, string(models.OperationKindDeployment), "Operation kind (deployment, export or inspection)")
	return cmd
}

func newResultsCmd(c *cli) *cobra.Command {
	var (
		rawID   string
		rawKind string
		poll    bool
	)

	cmd := &cobra.Command{
		Use:     "get-deployment-results",
		Aliases: []string{"results"},
		Short:   "Retrieve the results of a deployment or export",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagDeploymentUUID, rawID)
			if err != nil {
				return err
			}
			kind, err := parseKind(rawKind)
			if err != nil {
				return err
			}
			api, err := c.api()
			if err != nil {
				return err
			}

			if poll {
				opts := c.pollerOptions(cmd.Context())
				opts.Interval = resultsPollInterval
				opts.Timeout = resultsPollTimeout
				opts.Backoff.Enabled = false
				return c.waitFor(cmd, api, id, kind, opts)
			}

			logger.Infof("Getting results for %s: %s", kind, id)
			results, err := tracker.NewResolver(api).Fetch(cmd.Context(), id, kind)
			if err != nil {
				return fmt.Errorf("error fetching %s results: %w", kind, err)
			}
			return c.render(cmd, results, func(w io.Writer) {
				printResults(w, results)
			})
		},
	}

	cmd.Flags().StringVar(&rawID, flagDeploymentUUID, "", "Operation UUID")
	cmd.Flags().StringVar(&rawID, flagUUID, "", "Alias of --"+flagDeploymentUUID)
	_ = cmd.Flags().MarkHidden(flagUUID)
	cmd.Flags().StringVar(&rawKind, flagKind, string(models.OperationKindDeployment), "Operation kind (deployment, export or inspection)")
	cmd.Flags().BoolVar(&poll, flagPoll, false, "Poll until terminal status before printing results")
	return cmd
}

func newMonitorCmd(c *cli) *cobra.Command {
	var (
		rawID           string
		rawKind         string
		intervalSeconds int
		timeoutSeconds  int
		backoff         bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor an operation until it finishes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagDeploymentUUID, rawID)
			if err != nil {
				return err
			}
			kind, err := parseKind(rawKind)
			if err != nil {
				return err
			}

			opts := c.pollerOptions(cmd.Context())
			if cmd.Flags().Changed(flagIntervalSeconds) {
				if intervalSeconds < 0 {
					return usageErrorf("--%s cannot be negative", flagIntervalSeconds)
				}
				opts.Interval = time.Duration(intervalSeconds) * time.Second
			}
			if cmd.Flags().Changed(flagTimeoutSeconds) {
				if timeoutSeconds <= 0 {
					return usageErrorf("--%s must be greater than 0", flagTimeoutSeconds)
				}
				opts.Timeout = time.Duration(timeoutSeconds) * time.Second
			}
			if cmd.Flags().Changed(flagBackoff) {
				opts.Backoff.Enabled = backoff
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Monitoring %s %s with interval %s, timeout %s", kind, id, opts.Interval, opts.Timeout)
			start := time.Now()
			snapshot, err := tracker.NewPoller(api, opts).Track(cmd.Context(), id, kind)
			if err != nil {
				return err
			}
			c.recordSnapshot(cmd.Context(), *snapshot)

			if err := c.render(cmd, snapshot, func(w io.Writer) {
				fmt.Fprintf(w, "Operation %s completed after %d seconds\n", id, int(time.Since(start).Seconds()))
				printStatusDocument(w, snapshot.Document)
			}); err != nil {
				return err
			}
			return checkOutcome(*snapshot)
		},
	}

	cmd.Flags().StringVar(&rawID, flagDeploymentUUID, "", "Operation UUID")
	cmd.Flags().StringVar(&rawKind, flagKind, string(models.OperationKindDeployment), "Operation kind (deployment, export or inspection)")
	cmd.Flags().IntVar(&intervalSeconds, flagIntervalSeconds, int(tracker.DefaultInterval/time.Second), "Polling interval in seconds")
	cmd.Flags().IntVar(&timeoutSeconds, flagTimeoutSeconds, int(tracker.DefaultTimeout/time.Second), "Timeout in seconds")
	cmd.Flags().BoolVar(&backoff, flagBackoff, false, "Grow the interval exponentially between queries")
	return cmd
}
