package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

const (
	flagOutput    = "output"
	flagOverwrite = "overwrite"
)

// downloadOutput is printed after a successful download
type downloadOutput struct {
	DeploymentUUID uuid.UUID `json:"deployment_uuid"`
	Source         string    `json:"source"`
	OutputPath     string    `json:"output_path"`
	SizeBytes      int64     `json:"size_bytes"`
	Success        bool      `json:"success"`
}

// resolveOutputPath picks the destination file: an explicit file, a file named
// after the operation inside an explicit directory, or inside dir
func resolveOutputPath(output, dir string, id uuid.UUID) string {
	name := id.String() + ".zip"
	if output == "" {
		if dir == "" {
			return name
		}
		return filepath.Join(dir, name)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}

// packageLocation returns the package link of export results, if any
func packageLocation(results models.DeploymentResults) string {
	if results.Export == nil || results.Export.PackageZip == nil {
		return ""
	}
	return *results.Export.PackageZip
}

func newDownloadCmd(c *cli) *cobra.Command {
	var (
		rawID     string
		output    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "download-package",
		Short: "Download the package produced by an export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagDeploymentUUID, rawID)
			if err != nil {
				return err
			}

			target := resolveOutputPath(output, c.cfg.Download.Dir, id)
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("file already exists: %s. Use --%s to replace", target, flagOverwrite)
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			var location string
			results, err := api.GetDeploymentResults(cmd.Context(), id)
			switch {
			case client.IsNotFound(err):
				logger.Warnf("No results found for %s, downloading artifact %s", id, id)
			case err != nil:
				return fmt.Errorf("error fetching export results: %w", err)
			default:
				location = packageLocation(results)
				if location == "" {
					logger.Warnf("Results of %s carry no package link, downloading artifact %s", id, id)
				}
			}
			if location == "" {
				location = id.String()
			}

			flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if !overwrite {
				flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
			}
			f, err := os.OpenFile(target, flags, 0o644)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			logger.Infof("Downloading package %s to %s", id, target)
			n, err := api.Download(cmd.Context(), location, f)
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = fmt.Errorf("failed to write file: %w", closeErr)
			}
			if err != nil {
				_ = os.Remove(target)
				return fmt.Errorf("error downloading package: %w", err)
			}

			out := downloadOutput{
				DeploymentUUID: id,
				Source:         location,
				OutputPath:     target,
				SizeBytes:      n,
				Success:        true,
			}
			return c.render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Package downloaded to: %s\n", target)
				fmt.Fprintf(w, "Package size: %d bytes (%s)\n", n, formatBytes(n))
			})
		},
	}

	cmd.Flags().StringVar(&rawID, flagDeploymentUUID, "", "Export UUID")
	cmd.Flags().StringVarP(&output, flagOutput, "o", "", "Output directory or file")
	cmd.Flags().BoolVar(&overwrite, flagOverwrite, false, "Overwrite existing files")
	return cmd
}
