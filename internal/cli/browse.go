package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/michaelvu812/mvpaginator/internal/cli/pagination"
	"github.com/michaelvu812/mvpaginator/internal/config"
	"github.com/michaelvu812/mvpaginator/internal/record"
	"github.com/michaelvu812/mvpaginator/internal/sources"
	"github.com/michaelvu812/mvpaginator/internal/tui"
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// NewBrowseCmd creates the browse command, an interactive pager over a source.
// Without an interactive terminal it prints the first page like the page
// command.
func NewBrowseCmd() *cobra.Command {
	params := pagination.NewPaginationParams()
	var flags sources.Flags

	cmd := &cobra.Command{
		Use:   "browse [source]",
		Short: "Browse a source interactively, one page at a time",
		Long: `Opens a terminal UI over a source. Pages are fetched in the background as
you scroll or press n; enter shows every field of the selected record, r starts
over from the first page, c cancels a slow fetch and q quits.

Without an interactive terminal the first page is printed as a table instead.`,
		Example: `  # Browse a configured source
  paginator browse people

  # Browse a postgres table 50 rows at a time
  paginator browse --postgres "postgres://localhost/app?sslmode=disable" --entity orders --order-by id --page-size 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			if tui.DetectOutputMode(false, false, false) != tui.OutputModeInteractive {
				params.Pages = defaultPages
				return runPage(cmd, cfg, args, *params, flags)
			}
			return runBrowse(cmd, cfg, args, *params, flags)
		},
	}

	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "records per page (0 = source or config default)")
	addSourceFlags(cmd, &flags)

	return cmd
}

func runBrowse(
	cmd *cobra.Command,
	cfg *config.Config,
	args []string,
	params pagination.PaginationParams,
	flags sources.Flags,
) error {
	if err := params.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	p, name, closeFn, err := openPaginator(ctx, cfg, args, params, flags, paginator.SinkFuncs[record.Record]{})
	if err != nil {
		return err
	}
	defer closeFn()

	prog := tea.NewProgram(tui.NewBrowseModel(ctx, name, p), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, runErr := prog.Run(); runErr != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", runErr)
	}
	return nil
}
