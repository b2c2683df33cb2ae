package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelvu812/mvpaginator/internal/cli/pagination"
	"github.com/michaelvu812/mvpaginator/internal/config"
	"github.com/michaelvu812/mvpaginator/internal/logging"
	"github.com/michaelvu812/mvpaginator/internal/record"
	"github.com/michaelvu812/mvpaginator/internal/sources"
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// defaultPages is how many pages the page command fetches without --pages.
const defaultPages = 1

// NewPageCmd creates the page command, which fetches pages from a source and
// prints the accumulated records.
func NewPageCmd() *cobra.Command {
	params := pagination.NewPaginationParams()
	params.Pages = defaultPages
	var flags sources.Flags

	cmd := &cobra.Command{
		Use:   "page [source]",
		Short: "Fetch pages from a source and print the records",
		Long: `Fetches pages from a configured source, or from an ad-hoc source given with
--file, --sqlite, --postgres, --redis, --url or --json-url, and prints every
record fetched so far.

--pages 0 fetches until the last page, bounded by paging.max_pages when set.`,
		Example: `  # First page of a configured source
  paginator page people

  # Two pages of five records from a YAML file
  paginator page --file people.yaml --page-size 5 --pages 2

  # Everything from a redis list, sorted by age
  paginator page --redis redis://localhost:6379/0 --entity events --pages 0 --sort age:desc

  # A JSON document nested under data.items, as YAML
  paginator page --json-url https://example.com/export.json --items-path data.items --output yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			if !cmd.Flags().Changed("output") && cfg.Output.Format != "" {
				params.Output = cfg.Output.Format
			}
			return runPage(cmd, cfg, args, *params, flags)
		},
	}

	addPaginationFlags(cmd, params)
	addSourceFlags(cmd, &flags)

	return cmd
}

// addPaginationFlags registers the shared paging flags.
func addPaginationFlags(cmd *cobra.Command, params *pagination.PaginationParams) {
	cmd.Flags().IntVar(&params.PageSize, "page-size", params.PageSize,
		"records per page (0 = source or config default)")
	cmd.Flags().IntVar(&params.Pages, "pages", params.Pages, "number of pages to fetch (0 = all)")
	cmd.Flags().StringVarP(&params.Output, "output", "o", params.Output, "output format: table, json, yaml")
	cmd.Flags().StringVar(&params.Sort, "sort", "", "sort fetched records by field[:asc|desc]")
}

// addSourceFlags registers the ad-hoc source selection flags.
func addSourceFlags(cmd *cobra.Command, f *sources.Flags) {
	cmd.Flags().StringVar(&f.File, "file", "", "JSON or YAML file of records (with --entity: a file store)")
	cmd.Flags().StringVar(&f.SQLite, "sqlite", "", "sqlite database path or DSN")
	cmd.Flags().StringVar(&f.Postgres, "postgres", "", "postgres connection string")
	cmd.Flags().StringVar(&f.Redis, "redis", "", "redis URL, e.g. redis://localhost:6379/0")
	cmd.Flags().StringVar(&f.URL, "url", "", "server-side paged JSON endpoint")
	cmd.Flags().StringVar(&f.JSONURL, "json-url", "", "URL of a JSON document holding an array of records")
	cmd.Flags().StringVar(&f.Entity, "entity", "", "table, list or entity name for store sources")
	cmd.Flags().StringVar(&f.Where, "where", "", `store filter, e.g. "age>=30,team=core"`)
	cmd.Flags().StringVar(&f.OrderBy, "order-by", "", "SQL column to order store pages by")
	cmd.Flags().StringVar(&f.ItemsPath, "items-path", "", "dotted path to the array in a --json-url document")
}

// runPage opens the source, drains the requested pages and renders them.
func runPage(
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
	sink := paginator.SinkFuncs[record.Record]{
		Results: func(p *paginator.Paginator[record.Record], results []record.Record) {
			logger.Debug().Ctx(ctx).
				Int("page", p.CurrentPage()).
				Int("total_pages", p.TotalPageCount()).
				Int("accumulated", len(results)).
				Msg("page received")
		},
	}
	p, name, closeFn, err := openPaginator(ctx, cfg, args, params, flags, sink)
	if err != nil {
		return err
	}
	defer closeFn()

	maxPages := params.Pages
	if maxPages == 0 {
		maxPages = cfg.Paging.MaxPages
	}

	fetched, err := p.Drain(ctx, maxPages)
	if err != nil {
		logger.Error().Ctx(ctx).Err(err).Str("source", name).Int("pages_fetched", fetched).Msg("paging failed")
		return fmt.Errorf("fetching page %d of %q: %w", p.CurrentPage()+1, name, err)
	}

	logger.Debug().Ctx(ctx).
		Str("source", name).
		Int("pages_fetched", fetched).
		Int("total_count", p.TotalCount()).
		Msg("paging finished")

	records := p.Results()
	if params.Sort != "" {
		field, order, _ := pagination.ParseSort(params.Sort)
		records = pagination.SortRecords(records, field, order)
	}

	meta := pagination.NewPaginationMeta(name, p.Snapshot())
	return renderPage(cmd.OutOrStdout(), params.Output, meta, records)
}

// openPaginator resolves and opens the source selected by args and flags and
// binds a paginator with sink to it. The returned func releases the source.
func openPaginator(
	ctx context.Context,
	cfg *config.Config,
	args []string,
	params pagination.PaginationParams,
	flags sources.Flags,
	sink paginator.Sink[record.Record],
) (*paginator.Paginator[record.Record], string, func(), error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	name, sc, err := sources.Resolve(cfg, name, flags)
	if err != nil {
		return nil, "", nil, err
	}

	opened, err := sources.Open(ctx, name, sc)
	if err != nil {
		return nil, "", nil, err
	}
	closeFn := func() {
		if closeErr := opened.Close(); closeErr != nil {
			logger.Warn().Ctx(ctx).Err(closeErr).Str("source", name).Msg("closing source")
		}
	}

	p, err := paginator.New[record.Record](opened.Source, sink,
		paginator.WithPageSize(params.EffectivePageSize(cfg.EffectivePageSize(sc))),
		paginator.WithLogger(logging.ComponentLogger(*logging.FromContext(ctx), "paginator")),
	)
	if err != nil {
		closeFn()
		return nil, "", nil, err
	}
	return p, name, closeFn, nil
}
