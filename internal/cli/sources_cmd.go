package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/michaelvu812/mvpaginator/internal/config"
	"github.com/michaelvu812/mvpaginator/internal/logging"
	"github.com/michaelvu812/mvpaginator/internal/record"
	"github.com/michaelvu812/mvpaginator/internal/sources"
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

const (
	// defaultCheckTimeout bounds a whole sources check run.
	defaultCheckTimeout = 30 * time.Second

	// defaultCheckParallelism is how many sources are checked at once.
	defaultCheckParallelism = 4
)

// ErrSourceCheckFailed is returned when at least one source failed its check.
var ErrSourceCheckFailed = errors.New("source check failed")

// NewSourcesListCmd creates the sources list command.
func NewSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderSourceList(cmd.OutOrStdout(), config.GetGlobalConfig())
		},
	}
}

func renderSourceList(w io.Writer, cfg *config.Config) error {
	names := cfg.SourceNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "No sources configured. Add a sources section to the config file:")
		fmt.Fprintln(w, "  paginator config init && paginator config show")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTARGET\tPAGE SIZE")
	fmt.Fprintln(tw, "----\t----\t------\t---------")
	for _, name := range names {
		sc := cfg.Sources[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", name, sc.Kind, sourceTarget(sc), cfg.EffectivePageSize(sc))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

// sourceTarget is a one-line description of where a source reads from. DSNs
// are not shown since they may hold credentials.
func sourceTarget(sc config.SourceConfig) string {
	switch {
	case sc.URL != "":
		return sc.URL
	case sc.Backend != "" && sc.Entity != "":
		if sc.Backend == sources.BackendFile {
			return fmt.Sprintf("%s:%s#%s", sc.Backend, sc.Path, sc.Entity)
		}
		return fmt.Sprintf("%s#%s", sc.Backend, sc.Entity)
	default:
		return sc.Path
	}
}

// checkResult is the outcome of loading the first page of one source.
type checkResult struct {
	Name     string
	Kind     string
	Total    int
	Pages    int
	Duration time.Duration
	Err      error
}

// NewSourcesCheckCmd creates the sources check command, which loads the
// first page of every configured source concurrently.
func NewSourcesCheckCmd() *cobra.Command {
	var (
		timeout     time.Duration
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "check [source...]",
		Short: "Load the first page of each source and report totals",
		Example: `  # Check every configured source
  paginator sources check

  # Check two sources, one at a time
  paginator sources check people orders --parallel 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetGlobalConfig()
			names := args
			if len(names) == 0 {
				names = cfg.SourceNames()
			}
			if len(names) == 0 {
				return fmt.Errorf("%w: no sources configured", sources.ErrNoSource)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results, err := checkSources(ctx, cfg, names, parallelism)
			if err != nil {
				return err
			}
			return renderCheckResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "overall timeout")
	cmd.Flags().IntVar(&parallelism, "parallel", defaultCheckParallelism, "sources checked at once")

	return cmd
}

// checkSources loads the first page of each named source. A failing source
// does not stop the others; its error is kept in its result.
func checkSources(ctx context.Context, cfg *config.Config, names []string, parallelism int) ([]checkResult, error) {
	for _, name := range names {
		if _, err := cfg.Source(name); err != nil {
			return nil, err
		}
	}

	results := make([]checkResult, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res := checkSource(gctx, cfg, name)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkSource(ctx context.Context, cfg *config.Config, name string) checkResult {
	start := time.Now()
	sc := cfg.Sources[name]
	res := checkResult{Name: name, Kind: sc.Kind}

	opened, err := sources.Open(ctx, name, sc)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}
	defer func() { _ = opened.Close() }()
	res.Kind = opened.Source.Kind().String()

	p, err := paginator.New[record.Record](opened.Source, paginator.SinkFuncs[record.Record]{},
		paginator.WithPageSize(cfg.EffectivePageSize(sc)),
		paginator.WithLogger(logging.ComponentLogger(*logging.FromContext(ctx), "paginator")),
	)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	out := p.Load(ctx)
	res.Duration = time.Since(start)
	if !out.OK() {
		res.Err = out.Err
		if res.Err == nil {
			res.Err = fmt.Errorf("first page not fetched: %s", out.Kind)
		}
		return res
	}
	res.Total = p.TotalCount()
	res.Pages = p.TotalPageCount()

	logging.FromContext(ctx).Debug().
		Str("source", name).
		Int("total_count", res.Total).
		Dur("duration", res.Duration).
		Msg("source checked")
	return res
}

func renderCheckResults(w io.Writer, results []checkResult) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tKIND\tSTATUS\tRECORDS\tPAGES\tTIME")
	fmt.Fprintln(tw, "------\t----\t------\t-------\t-----\t----")

	failed := 0
	for _, r := range results {
		status := "ok"
		records, pages := p.Sprintf("%d", r.Total), p.Sprintf("%d", r.Pages)
		if r.Err != nil {
			failed++
			status, records, pages = "error", "-", "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Kind, status, records, pages, r.Duration.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}

	if failed == 0 {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ERRORS")
	fmt.Fprintln(w, "======")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", r.Name, r.Err)
		}
	}
	return fmt.Errorf("%w: %d of %d sources", ErrSourceCheckFailed, failed, len(results))
}
