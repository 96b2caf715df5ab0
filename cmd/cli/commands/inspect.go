package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

const (
	flagUUID = "uuid"

	// maxPackageSize is the size above which a package draws a warning
	maxPackageSize = 100 * 1024 * 1024
)

// violationSeverity grades a local package check
type violationSeverity string

const (
	severityError   violationSeverity = "error"
	severityWarning violationSeverity = "warning"
)

type violation struct {
	Severity violationSeverity `json:"severity"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
}

// packageValidation is the outcome of the local checks run before an inspection
type packageValidation struct {
	Size       int64       `json:"size"`
	Violations []violation `json:"violations,omitempty"`
}

// Valid reports whether no check failed with error severity
func (v packageValidation) Valid() bool {
	for _, vi := range v.Violations {
		if vi.Severity == severityError {
			return false
		}
	}
	return true
}

func (v packageValidation) warnings() []violation {
	var out []violation
	for _, vi := range v.Violations {
		if vi.Severity == severityWarning {
			out = append(out, vi)
		}
	}
	return out
}

// validatePackageFile runs the cheap local checks on a package before it is uploaded
func validatePackageFile(path string) (packageValidation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return packageValidation{}, fmt.Errorf("failed to read package file: %w", err)
	}

	v := packageValidation{Size: info.Size()}
	if info.Size() == 0 {
		v.Violations = append(v.Violations, violation{severityError, "EMPTY_FILE", "Package file is empty"})
	}
	if info.Size() > maxPackageSize {
		v.Violations = append(v.Violations, violation{severityWarning, "LARGE_FILE", "Package file is very large (>100MB)"})
	}
	if ext := filepath.Ext(path); ext != "" && !strings.EqualFold(ext, ".zip") {
		v.Violations = append(v.Violations, violation{severityWarning, "WRONG_EXTENSION", "Package file should have .zip extension"})
	}
	return v, nil
}

func newInspectCmd(c *cli) *cobra.Command {
	var (
		packageZip    string
		customization string
		adminConsole  string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a package before deploying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if packageZip == "" {
				return missingFlag(flagPackageZipName)
			}
			if err := checkLocalFiles(
				localFile{"Package file", packageZip},
				localFile{"Customization file", customization},
				localFile{"Admin Console settings file", adminConsole},
			); err != nil {
				return err
			}

			validation, err := validatePackageFile(packageZip)
			if err != nil {
				return err
			}
			for _, w := range validation.warnings() {
				logger.WarnWithFields(w.Message, map[string]interface{}{"code": w.Code})
			}
			if !validation.Valid() {
				return usageErrorf("package file is invalid: %s", packageZip)
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Inspecting package %s (%s)", packageZip, formatBytes(validation.Size))
			req := models.InspectionRequest{
				PackageFileName:              baseName(packageZip),
				CustomizationFileName:        baseName(customization),
				AdminConsoleSettingsFileName: baseName(adminConsole),
			}
			resp, err := api.Inspect(cmd.Context(), req, client.InspectFiles{
				Package:              packageZip,
				Customization:        customization,
				AdminConsoleSettings: adminConsole,
			})
			if err != nil {
				return fmt.Errorf("error submitting inspection: %w", err)
			}
			c.recordSubmission(cmd.Context(), resp.UUID, models.OperationKindInspection, baseName(packageZip), resp.URL, "")

			if wait {
				return c.waitFor(cmd, api, resp.UUID, models.OperationKindInspection, c.pollerOptions(cmd.Context()))
			}

			return c.render(cmd, resp, func(w io.Writer) {
				fmt.Fprintln(w, "Inspection initiated:")
				fmt.Fprintf(w, "  UUID: %s\n", resp.UUID)
				fmt.Fprintf(w, "  URL: %s\n", resp.URL)
				fmt.Fprintln(w, "\nUse 'get-inspection' to retrieve the results")
			})
		},
	}

	cmd.Flags().StringVar(&packageZip, flagPackageZipName, "", "Package zip file path")
	cmd.Flags().StringVar(&customization, flagCustomizationFile, "", "Import customization properties file (.properties)")
	cmd.Flags().StringVar(&adminConsole, flagAdminConsoleFile, "", "Admin Console settings zip (.zip)")
	cmd.Flags().BoolVar(&wait, flagWait, false, "Wait for the inspection to finish and print its results")

	return cmd
}

func newGetInspectionCmd(c *cli) *cobra.Command {
	var rawID string

	cmd := &cobra.Command{
		Use:   "get-inspection",
		Short: "Get inspection results by UUID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseUUID(flagUUID, rawID)
			if err != nil {
				return err
			}
			api, err := c.api()
			if err != nil {
				return err
			}

			results, err := api.GetInspectionResults(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error fetching inspection results: %w", err)
			}
			c.recordSnapshot(cmd.Context(), models.NewSnapshot(
				models.Operation{ID: id, Kind: models.OperationKindInspection}, results.Status, results))

			return c.render(cmd, results, func(w io.Writer) {
				printInspectionResults(w, &results)
			})
		},
	}

	cmd.Flags().StringVar(&rawID, flagUUID, "", "Inspection UUID")
	return cmd
}
