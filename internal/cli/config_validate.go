package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelvu812/mvpaginator/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file, project overlay and
environment overrides) for syntax and semantic correctness.

This includes:
- Schema version compatibility
- Paging, output and logging settings
- Every source definition: kind, backend, DSN or path, entity and filter syntax`,
		Example: `  # Validate current configuration
  paginator config validate

  # Validate and show detailed information
  paginator config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, config.GetGlobalConfig(), verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, cfg *config.Config, verbose bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	if dir := config.GetResolvedProjectDir(); dir != "" {
		cmd.Printf("  Project directory: %s\n", dir)
	}
	cmd.Printf("  Schema version: %s\n", cfg.SchemaVersion)
	cmd.Printf("  Page size: %d\n", cfg.Paging.PageSize)
	if cfg.Paging.MaxPages > 0 {
		cmd.Printf("  Max pages: %d\n", cfg.Paging.MaxPages)
	} else {
		cmd.Println("  Max pages: unlimited")
	}
	cmd.Printf("  Output format: %s\n", cfg.Output.Format)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}

	names := cfg.SourceNames()
	if len(names) == 0 {
		cmd.Println("  No sources configured")
		return
	}
	cmd.Printf("  Configured sources: %d\n", len(names))
	for _, name := range names {
		sc := cfg.Sources[name]
		cmd.Printf("    - %s (%s, page size %d)\n", name, sc.Kind, cfg.EffectivePageSize(sc))
	}
}
