package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
	"github.com/appian-deploy/appian-deploy/pkg/models"
)

// flag names shared by the submission commands
const (
	flagPackageZipName    = "package-zip-name"
	flagName              = "name"
	flagDescription       = "description"
	flagDryRun            = "dry-run"
	flagWait              = "wait"
	flagCustomizationFile = "customization-file"
	flagAdminConsoleFile  = "admin-console-file"
	flagPluginsFile       = "plugins-file"
	flagDataSource        = "data-source"
	flagDatabaseScripts   = "database-scripts"
)

// localFile is a user-supplied path checked before anything is uploaded
type localFile struct {
	label string
	path  string
}

// checkLocalFiles fails on the first path that does not name a regular file. Empty paths are skipped.
func checkLocalFiles(files ...localFile) error {
	for _, f := range files {
		if f.path == "" {
			continue
		}
		info, err := os.Stat(f.path)
		if err != nil {
			return usageErrorf("%s not found: %s", f.label, f.path)
		}
		if info.IsDir() {
			return usageErrorf("%s is a directory: %s", f.label, f.path)
		}
	}
	return nil
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// deployPlan is printed by a dry run
type deployPlan struct {
	DryRun          bool                     `json:"dryRun"`
	Request         models.DeploymentRequest `json:"request"`
	PackageFile     string                   `json:"packageFile"`
	DatabaseScripts []string                 `json:"databaseScripts,omitempty"`
}

func newDeployCmd(c *cli) *cobra.Command {
	var (
		packageZip    string
		name          string
		description   string
		customization string
		adminConsole  string
		plugins       string
		dataSource    string
		scripts       []string
		dryRun        bool
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a package to the target environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if packageZip == "" {
				return missingFlag(flagPackageZipName)
			}
			if name == "" {
				return missingFlag(flagName)
			}

			files := []localFile{
				{"Package file", packageZip},
				{"Customization file", customization},
				{"Admin Console settings file", adminConsole},
				{"Plugins file", plugins},
			}
			for _, s := range scripts {
				files = append(files, localFile{"Database script", s})
			}
			if err := checkLocalFiles(files...); err != nil {
				return err
			}

			req := models.DeploymentRequest{
				Name:                         name,
				Description:                  description,
				PackageFileName:              baseName(packageZip),
				CustomizationFileName:        baseName(customization),
				AdminConsoleSettingsFileName: baseName(adminConsole),
				PluginsFileName:              baseName(plugins),
				DataSource:                   dataSource,
			}
			for i, s := range scripts {
				req.DatabaseScripts = append(req.DatabaseScripts, models.DatabaseScript{
					FileName: filepath.Base(s),
					OrderID:  strconv.Itoa(i + 1),
				})
			}
			if err := req.Validate(); err != nil {
				return &UsageError{Err: err}
			}

			if dryRun {
				logger.Info("Dry run mode - validating deployment parameters")
				plan := deployPlan{DryRun: true, Request: req, PackageFile: packageZip, DatabaseScripts: scripts}
				return c.render(cmd, plan, func(w io.Writer) {
					fmt.Fprintln(w, "Dry run validation successful")
					fmt.Fprintf(w, "Package: %s\n", packageZip)
					fmt.Fprintf(w, "Deployment name: %s\n", name)
					if description != "" {
						fmt.Fprintf(w, "Description: %s\n", description)
					}
					if customization != "" {
						fmt.Fprintf(w, "Customization file: %s\n", customization)
					}
					if adminConsole != "" {
						fmt.Fprintf(w, "Admin Console settings: %s\n", adminConsole)
					}
					if plugins != "" {
						fmt.Fprintf(w, "Plugins file: %s\n", plugins)
					}
					if dataSource != "" {
						fmt.Fprintf(w, "Data source: %s\n", dataSource)
					}
					if len(scripts) > 0 {
						fmt.Fprintln(w, "Database scripts (order):")
						for i, s := range scripts {
							fmt.Fprintf(w, "  %d. %s\n", i+1, s)
						}
					}
				})
			}

			api, err := c.api()
			if err != nil {
				return err
			}

			logger.Infof("Starting deployment: %s with package %s", name, packageZip)
			resp, err := api.Deploy(cmd.Context(), req, client.DeployFiles{
				Package:              packageZip,
				Customization:        customization,
				AdminConsoleSettings: adminConsole,
				Plugins:              plugins,
				DatabaseScripts:      scripts,
			})
			if err != nil {
				return fmt.Errorf("error submitting deployment: %w", err)
			}
			c.recordSubmission(cmd.Context(), resp.UUID, models.OperationKindDeployment, name, resp.URL, resp.Status)

			if wait {
				logger.InfoWithFields("deployment submitted", map[string]interface{}{
					"uuid":   resp.UUID.String(),
					"status": resp.Status,
				})
				return c.waitFor(cmd, api, resp.UUID, models.OperationKindDeployment, c.pollerOptions(cmd.Context()))
			}

			return c.render(cmd, resp, func(w io.Writer) {
				fmt.Fprintln(w, "Deployment initiated successfully")
				fmt.Fprintf(w, "  Deployment UUID: %s\n", resp.UUID)
				fmt.Fprintf(w, "  Status: %s\n", resp.Status)
				fmt.Fprintf(w, "  Results URL: %s\n", resp.URL)
				fmt.Fprintln(w, "\nUse 'status' or 'monitor' commands to track progress")
			})
		},
	}

	cmd.Flags().StringVar(&packageZip, flagPackageZipName, "", "Package zip file path")
	cmd.Flags().StringVar(&name, flagName, "", "Deployment name")
	cmd.Flags().StringVar(&description, flagDescription, "", "Deployment description")
	cmd.Flags().StringVar(&customization, flagCustomizationFile, "", "Import customization properties file (.properties)")
	cmd.Flags().StringVar(&adminConsole, flagAdminConsoleFile, "", "Admin Console settings zip (.zip)")
	cmd.Flags().StringVar(&plugins, flagPluginsFile, "", "Plug-ins file (.zip)")
	cmd.Flags().StringVar(&dataSource, flagDataSource, "", "Data source name or UUID")
	cmd.Flags().StringSliceVar(&scripts, flagDatabaseScripts, nil, "Comma-separated database scripts (.sql,.ddl) in execution order")
	cmd.Flags().BoolVar(&dryRun, flagDryRun, false, "Validate the deployment without submitting it")
	cmd.Flags().BoolVar(&wait, flagWait, false, "Wait for the deployment to finish and print its results")

	return cmd
}
