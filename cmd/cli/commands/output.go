package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	dbmodels "github.com/appian-deploy/appian-deploy/internal/db/models"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// render writes v as indented JSON when --format=json and calls text otherwise
func (c *cli) render(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if c.flags.format == formatJSON {
		prettyJSON, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Fprintln(out, string(prettyJSON))
		return nil
	}
	text(out)
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func formatBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

func printProgressHint(w io.Writer, terminal bool) {
	if terminal {
		fmt.Fprintln(w, "\nOperation completed")
		return
	}
	fmt.Fprintln(w, "\nOperation in progress...")
}

// printStatusDocument prints one status document of any operation kind
func printStatusDocument(w io.Writer, doc interface{}) {
	switch d := doc.(type) {
	case models.DeploymentStatusResponse:
		fmt.Fprintln(w, "Deployment Status:")
		fmt.Fprintf(w, "  Deployment ID: %s\n", d.DeploymentID)
		fmt.Fprintf(w, "  Status: %s\n", d.Status)
		if d.CurrentStep != nil {
			fmt.Fprintf(w, "  Current Step: %s\n", *d.CurrentStep)
		}
		if len(d.ResultLinks) > 0 {
			fmt.Fprintln(w, "  Result Links:")
			for _, link := range d.ResultLinks {
				fmt.Fprintf(w, "    - %s\n", link)
			}
		}
		fmt.Fprintf(w, "  Created: %s\n", formatTime(d.CreatedAt))
		fmt.Fprintf(w, "  Updated: %s\n", formatTime(d.UpdatedAt))
		printProgressHint(w, d.Status.IsTerminal())
	case models.ExportResponse:
		fmt.Fprintln(w, "Export Status:")
		fmt.Fprintf(w, "  Export UUID: %s\n", d.UUID)
		fmt.Fprintf(w, "  Status: %s\n", d.Status)
		fmt.Fprintf(w, "  Details URL: %s\n", d.URL)
		printProgressHint(w, d.Status.IsTerminal())
	case models.InspectionStatusResponse:
		fmt.Fprintln(w, "Inspection Status:")
		fmt.Fprintf(w, "  Inspection UUID: %s\n", d.UUID)
		fmt.Fprintf(w, "  Status: %s\n", d.Status)
		printProgressHint(w, d.Status.IsTerminal())
	default:
		fmt.Fprintf(w, "%v\n", d)
	}
}

func printSnapshot(w io.Writer, s models.Snapshot) {
	status := "unknown"
	if s.Status != nil {
		status = s.Status.String()
	}
	fmt.Fprintf(w, "Operation %s (%s) finished with status %s at %s\n",
		s.Operation.ID, s.Operation.Kind, status, formatTime(&s.ObservedAt))
}

func printCounts(w io.Writer, label string, total, imported, failed, skipped uint32) {
	fmt.Fprintf(w, "  %s:\n    total=%d, imported=%d, failed=%d, skipped=%d\n", label, total, imported, failed, skipped)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// printResults prints a results document of any operation kind
func printResults(w io.Writer, doc models.ResultsDocument) {
	switch r := doc.(type) {
	case *models.DeploymentResults:
		printDeploymentResults(w, r)
	case *models.InspectionResults:
		printInspectionResults(w, r)
	}
}

func printDeploymentResults(w io.Writer, r *models.DeploymentResults) {
	fmt.Fprintln(w, "Deployment Results:")
	switch {
	case r.Import != nil:
		s := r.Import.Summary
		fmt.Fprintf(w, "  Status: %s\n", r.Import.Status)
		fmt.Fprintf(w, "  Deployment Log: %s\n", s.DeploymentLogURL)
		printCounts(w, "Admin Console Settings", s.AdminConsoleSettings.Total, s.AdminConsoleSettings.Imported, s.AdminConsoleSettings.Failed, s.AdminConsoleSettings.Skipped)
		printCounts(w, "Objects", s.Objects.Total, s.Objects.Imported, s.Objects.Failed, s.Objects.Skipped)
		fmt.Fprintf(w, "  Plugins:\n    total=%d, imported=%d, skipped=%d\n", s.Plugins.Total, s.Plugins.Imported, s.Plugins.Skipped)
		fmt.Fprintf(w, "  Database Scripts: %d\n", s.DatabaseScripts)
	case r.Export != nil:
		e := r.Export
		fmt.Fprintf(w, "  Status: %s\n", e.Status)
		links := []struct {
			label string
			value *string
		}{
			{"Deployment Log", e.DeploymentLogURL},
			{"Package Zip", e.PackageZip},
			{"Plugins Zip", e.PluginsZip},
			{"Customization File", e.CustomizationFile},
			{"Customization File Template", e.CustomizationFileTemplate},
			{"Data Source", e.DataSource},
		}
		for _, link := range links {
			if v := optional(link.value); v != "" {
				fmt.Fprintf(w, "  %s: %s\n", link.label, v)
			}
		}
		if len(e.DatabaseScripts) > 0 {
			fmt.Fprintln(w, "  Database Scripts:")
			for _, s := range e.DatabaseScripts {
				fmt.Fprintf(w, "    - %s (order %d): %s\n", s.FileName, s.OrderID, s.URL)
			}
		}
	}
}

func printInspectionResults(w io.Writer, r *models.InspectionResults) {
	fmt.Fprintln(w, "Inspection Results:")
	fmt.Fprintf(w, "  Status: %s\n", r.Status)
	if r.Summary == nil {
		return
	}
	s := r.Summary
	printCounts(w, "Admin Console Settings Expected", s.AdminConsoleSettingsExpected.Total, s.AdminConsoleSettingsExpected.Imported, s.AdminConsoleSettingsExpected.Failed, s.AdminConsoleSettingsExpected.Skipped)
	printCounts(w, "Objects Expected", s.ObjectsExpected.Total, s.ObjectsExpected.Imported, s.ObjectsExpected.Failed, s.ObjectsExpected.Skipped)
	fmt.Fprintf(w, "  Problems: %d errors, %d warnings\n", s.Problems.TotalErrors, s.Problems.TotalWarnings)
	for _, e := range s.Problems.Errors {
		fmt.Fprintf(w, "    ERROR   %s (%s): %s\n", e.ObjectName, e.ObjectUUID, e.ErrorMessage)
	}
	for _, e := range s.Problems.Warnings {
		fmt.Fprintf(w, "    WARNING %s (%s): %s\n", e.ObjectName, e.ObjectUUID, e.WarningMessage)
	}
}

func printLogEntry(w io.Writer, e models.LogEntry) {
	fmt.Fprintf(w, "%s [%-5s] %s\n", e.Timestamp.UTC().Format("2006-01-02 15:04:05"), strings.ToUpper(string(e.Level)), e.Message)
}

func printPackages(w io.Writer, resp models.PackageListResponse) {
	fmt.Fprintf(w, "Packages: %d\n", resp.Total)
	if len(resp.Packages) == 0 {
		fmt.Fprintln(w, "No packages found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tDEPENDENCIES\tUPDATED")
	for _, p := range resp.Packages {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Version, strings.Join(p.Dependencies, ","), formatTime(&p.UpdatedAt))
	}
	_ = tw.Flush()
}

func printHistory(w io.Writer, ops []dbmodels.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "No operations recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UUID\tKIND\tNAME\tSTATUS\tSUBMITTED\tLAST CHECKED")
	for _, op := range ops {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", op.UUID, op.Kind, op.Name, op.Status, formatTime(&op.CreatedAt), formatTime(op.LastCheckedAt))
	}
	_ = tw.Flush()
}
