package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/appian-deploy/appian-deploy/internal/config"
	"github.com/appian-deploy/appian-deploy/internal/db"
	"github.com/appian-deploy/appian-deploy/internal/db/repos"
	"github.com/appian-deploy/appian-deploy/internal/logger"
	"github.com/appian-deploy/appian-deploy/pkg/api/v2/client"
)

// flag names
const (
	flagConfigFile = "config-file"
	flagBaseURL    = "base-url"
	flagAPIKey     = "api-key"
	flagVerbose    = "verbose"
	flagQuiet      = "quiet"
	flagFormat     = "format"
)

// output formats
const (
	formatText = "text"
	formatJSON = "json"
)

// Version is set at build time
var Version = "dev"

// newClient builds the API client from the loaded configuration. Tests replace it.
var newClient = func(cfg *config.Config) (client.Client, error) {
	opts := client.DefaultOptions()
	opts.BaseURL = cfg.BaseURL
	opts.APIKey = cfg.APIKey
	opts.Timeout = cfg.Timeout()

	c, err := client.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type globalFlags struct {
	configFile string
	baseURL    string
	apiKey     string
	verbose    bool
	quiet      bool
	format     string
}

// cli carries the state shared by every subcommand of one invocation
type cli struct {
	flags globalFlags

	cfg       *config.Config
	apiClient client.Client
	historyDB *gorm.DB
	history   *repos.OperationRepository
}

// newRootCmd builds the complete command tree around a fresh invocation state
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "appian-deploy",
		Short: "Appian deployment CLI - automate Appian deployments via the deployment-management API v2",
		Long: `appian-deploy submits deployments, exports and inspections to an Appian environment,
tracks them until they finish and retrieves their results, logs and artifacts.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.flags.configFile, flagConfigFile, "", "Configuration file path (default ./"+config.DefaultConfigFile+" when present)")
	flags.StringVar(&c.flags.baseURL, flagBaseURL, "", "Base URL of the Appian environment (env: APPIAN_BASE_URL)")
	flags.StringVar(&c.flags.apiKey, flagAPIKey, "", "API key for authentication (env: APPIAN_API_KEY)")
	flags.BoolVarP(&c.flags.verbose, flagVerbose, "v", false, "Enable verbose output")
	flags.BoolVarP(&c.flags.quiet, flagQuiet, "q", false, "Suppress non-essential output")
	flags.StringVar(&c.flags.format, flagFormat, formatText, "Output format (text or json)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	rootCmd.AddCommand(
		newDeployCmd(c),
		newExportCmd(c),
		newInspectCmd(c),
		newGetInspectionCmd(c),
		newStatusCmd(c),
		newResultsCmd(c),
		newMonitorCmd(c),
		newDownloadCmd(c),
		newLogsCmd(c),
		newGetPackagesCmd(c),
		newHistoryCmd(c),
	)

	return rootCmd, c
}

// Execute runs the CLI with the given context
func Execute(ctx context.Context) error {
	rootCmd, c := newRootCmd()
	defer c.close()
	return rootCmd.ExecuteContext(ctx)
}

// setup configures logging and loads the configuration before any subcommand runs
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.flags.format != formatText && c.flags.format != formatJSON {
		return usageErrorf("invalid --%s %q (expected %s or %s)", flagFormat, c.flags.format, formatText, formatJSON)
	}

	level := ""
	switch {
	case c.flags.verbose:
		level = "debug"
	case c.flags.quiet:
		level = "error"
	}
	logger.Configure(logger.Options{Level: level})

	overrides := config.Overrides{}
	if cmd.Flags().Changed(flagBaseURL) {
		overrides.BaseURL = &c.flags.baseURL
	}
	if cmd.Flags().Changed(flagAPIKey) {
		overrides.APIKey = &c.flags.apiKey
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.flags.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return &UsageError{Err: err}
	}
	c.cfg = cfg

	if level == "" {
		level = cfg.Logging.Level
	}
	logger.Configure(logger.Options{Level: level, JSON: cfg.Logging.JSON})
	logger.Debugf("appian-deploy %s targeting %s", Version, cfg.BaseURL)

	if cfg.History.Enabled {
		gdb, err := db.New(db.Options{DSN: cfg.History.DSN})
		if err != nil {
			return fmt.Errorf("failed to open operation history: %w", err)
		}
		c.historyDB = gdb
		c.history = repos.NewOperationRepository(gdb)
	}
	return nil
}

// api returns the API client, building it on first use. The configuration is
// validated here so commands that never reach the server run without credentials.
func (c *cli) api() (client.Client, error) {
	if c.apiClient != nil {
		return c.apiClient, nil
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, &UsageError{Err: err}
	}
	apiClient, err := newClient(c.cfg)
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	c.apiClient = apiClient
	return apiClient, nil
}

func (c *cli) close() {
	if c.historyDB == nil {
		return
	}
	if sqlDB, err := c.historyDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
