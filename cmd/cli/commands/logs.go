package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/internal/tracker"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

const (
	flagTail   = "tail"
	flagFollow = "follow"
)

// followInterval is the cadence at which --follow re-reads the log
var followInterval = 2 * time.Second

func newLogsCmd(c *cli) *cobra.Command {
	var (
		rawID  string
		tail   int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Retrieve deployment logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagDeploymentUUID, rawID)
			if err != nil {
				return err
			}
			if tail < 0 {
				return usageErrorf("--%s cannot be negative", flagTail)
			}
			if !cmd.Flags().Changed(flagFollow) {
				follow = c.cfg.Monitor.LogsFollowDefault
			}
			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Fetching logs for deployment: %s", id)
			if follow {
				return c.followLogs(cmd, api, id)
			}

			resp, err := api.GetDeploymentLogs(cmd.Context(), id, tail)
			if err != nil {
				return fmt.Errorf("error fetching logs: %w", err)
			}
			return c.render(cmd, resp, func(w io.Writer) {
				fmt.Fprintf(w, "Logs for deployment: %s\n", id)
				fmt.Fprintf(w, "Total entries: %d\n\n", resp.Total)
				if len(resp.Logs) == 0 {
					fmt.Fprintln(w, "No logs found.")
					return
				}
				for _, e := range resp.Logs {
					printLogEntry(w, e)
				}
			})
		},
	}

	cmd.Flags().StringVar(&rawID, flagDeploymentUUID, "", "Deployment UUID")
	cmd.Flags().IntVar(&tail, flagTail, 0, "Number of lines to show from the end of logs")
	cmd.Flags().BoolVarP(&follow, flagFollow, "f", false, "Stream logs until the deployment finishes")
	return cmd
}

// followLogs prints new log entries on every progress tick of a deployment
// poller and once more after the deployment reaches a terminal status
func (c *cli) followLogs(cmd *cobra.Command, api client.Client, id uuid.UUID) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	printed := 0

	fetch := func(ctx context.Context) error {
		resp, err := api.GetDeploymentLogs(ctx, id, 0)
		if err != nil {
			return fmt.Errorf("error fetching logs: %w", err)
		}
		// the server may rotate or truncate the log
		if printed > len(resp.Logs) {
			printed = 0
		}
		for _, e := range resp.Logs[printed:] {
			if c.flags.format == formatJSON {
				if err := enc.Encode(e); err != nil {
					return fmt.Errorf("error formatting log entry: %w", err)
				}
				continue
			}
			printLogEntry(out, e)
		}
		printed = len(resp.Logs)
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := fetch(ctx); err != nil {
		return err
	}

	var fetchErr error
	opts := c.pollerOptions(ctx)
	opts.Interval = followInterval
	opts.Backoff.Enabled = false
	report := opts.OnProgress
	opts.OnProgress = func(s models.Snapshot) {
		report(s)
		if err := fetch(ctx); err != nil {
			fetchErr = err
			cancel()
		}
	}

	snapshot, err := tracker.NewPoller(api, opts).Track(ctx, id, models.OperationKindDeployment)
	if fetchErr != nil {
		return fetchErr
	}
	if err != nil {
		var timeout *tracker.PollTimeoutError
		if errors.As(err, &timeout) {
			logger.Warnf("Stopped following logs of %s after %s", id, opts.Timeout)
		}
		return err
	}
	c.recordSnapshot(ctx, *snapshot)

	if err := fetch(ctx); err != nil {
		return err
	}
	if c.flags.format != formatJSON {
		fmt.Fprintf(out, "\nDeployment finished with status %s. Log streaming stopped.\n", snapshot.Status)
	}
	return nil
}
