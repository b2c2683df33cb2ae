package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/michaelvu812/mvpaginator/internal/config"
	"github.com/michaelvu812/mvpaginator/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the paginator CLI.
// It wires up logging, tracing, the project config overlay and the
// subcommands (page, browse, sources, config, version).
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
		configFile string
	)

	cmd := &cobra.Command{
		Use:           "paginator",
		Short:         "Page through records from files, databases and HTTP endpoints",
		Long:          "paginator: fetch records one page at a time from in-memory, store and remote sources",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(projectDir, configFile); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding a .paginator/config.yaml overlay (default: search upwards from cwd)")
	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"load configuration from this file instead of ~/.paginator/config.yaml")

	cmd.AddCommand(
		NewPageCmd(), NewBrowseCmd(), newSourcesCmd(), newConfigCmd(), NewVersionCmd(ver),
	)

	return cmd
}

// loadConfig resolves the project directory and installs the global config.
// An explicit --config file replaces the global file; the project overlay is
// still applied on top of the default path only.
func loadConfig(projectDirFlag, configFile string) error {
	cwd, _ := os.Getwd()
	config.SetResolvedProjectDir(config.ResolveProjectDir(projectDirFlag, cwd))

	if configFile == "" {
		config.InitGlobalConfig()
		return nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

const rootCmdExample = `  # Print the first page of a JSON file
  paginator page --file people.json

  # Print three pages of 25 rows from a sqlite table
  paginator page --sqlite app.db --entity users --where "age>=30" --page-size 25 --pages 3

  # Page through a server-side paged endpoint as JSON
  paginator page --url https://api.example.com/items --pages 0 --output json

  # Browse a configured source interactively
  paginator browse people

  # Check that every configured source answers
  paginator sources check

  # Initialize configuration
  paginator config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}

// newSourcesCmd creates the sources command group.
func newSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sources", Short: "Inspect configured sources"}
	cmd.AddCommand(NewSourcesListCmd(), NewSourcesCheckCmd())
	return cmd
}
