package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

const (
	flagUUIDs      = "uuids"
	flagExportType = "export-type"
)

// parseUUID parses the value of an id flag
func parseUUID(flag, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, missingFlag(flag)
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, usageErrorf("invalid --%s %q: %v", flag, value, err)
	}
	return id, nil
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		rawUUIDs    []string
		exportType  string
		name        string
		description string
		dryRun      bool
		wait        bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export applications or a package to artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := models.ExportRequest{
				ExportType:  exportType,
				Name:        name,
				Description: description,
			}
			for _, raw := range rawUUIDs {
				id, err := parseUUID(flagUUIDs, raw)
				if err != nil {
					return err
				}
				req.UUIDs = append(req.UUIDs, id)
			}
			if err := req.Validate(); err != nil {
				return &UsageError{Err: err}
			}

			if dryRun {
				logger.Info("Dry run mode - validating export parameters")
				return c.render(cmd, req, func(w io.Writer) {
					fmt.Fprintln(w, "Dry run validation successful")
					fmt.Fprintf(w, "Export type: %s\n", req.ExportType)
					fmt.Fprintln(w, "UUIDs:")
					for _, id := range req.UUIDs {
						fmt.Fprintf(w, "  - %s\n", id)
					}
					if name != "" {
						fmt.Fprintf(w, "Name: %s\n", name)
					}
				})
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Starting %s export of %d item(s)", exportType, len(req.UUIDs))
			resp, err := api.Export(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("error submitting export: %w", err)
			}
			c.recordSubmission(cmd.Context(), resp.UUID, models.OperationKindExport, name, resp.URL, resp.Status.String())

			if wait {
				return c.waitFor(cmd, api, resp.UUID, models.OperationKindExport, c.pollerOptions(cmd.Context()))
			}

			return c.render(cmd, resp, func(w io.Writer) {
				fmt.Fprintln(w, "Export initiated successfully")
				fmt.Fprintf(w, "  Export UUID: %s\n", resp.UUID)
				fmt.Fprintf(w, "  Status: %s\n", resp.Status)
				fmt.Fprintf(w, "  Details URL: %s\n", resp.URL)
				fmt.Fprintln(w, "\nUse 'monitor --kind export' to track progress and 'download-package' to fetch the artifact")
			})
		},
	}

	cmd.Flags().StringSliceVar(&rawUUIDs, flagUUIDs, nil, "UUIDs to export (repeatable or comma-separated)")
	cmd.Flags().StringVar(&exportType, flagExportType, models.ExportTypePackage, "Export type (package|application)")
	cmd.Flags().StringVar(&name, flagName, "", "Export name")
	cmd.Flags().StringVar(&description, flagDescription, "", "Export description")
	cmd.Flags().BoolVar(&dryRun, flagDryRun, false, "Validate the export without submitting it")
	cmd.Flags().BoolVar(&wait, flagWait, false, "Wait for the export to finish and print its results")

	return cmd
}
