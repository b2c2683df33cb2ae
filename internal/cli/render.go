package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/michaelvu812/mvpaginator/internal/cli/pagination"
	"github.com/michaelvu812/mvpaginator/internal/record"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

const (
	// tabPadding is the gap between table columns.
	tabPadding = 2

	// maxCellWidth truncates long cell values in table output.
	maxCellWidth = 40
)

// pageDocument is the json/yaml shape of the page command output.
type pageDocument struct {
	Pagination pagination.PaginationMeta `json:"pagination" yaml:"pagination"`
	Items      []record.Record           `json:"items"      yaml:"items"`
}

// renderPage writes records in the requested format. Table output is styled
// when w is a terminal.
func renderPage(w io.Writer, format string, meta pagination.PaginationMeta, records []record.Record) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pageDocument{Pagination: meta, Items: nonNil(records)})
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(pageDocument{Pagination: meta, Items: nonNil(records)})
	case outputTable, "":
		if isWriterTerminal(w) {
			return renderStyledTable(w, meta, records)
		}
		return renderPlainTable(w, meta, records)
	default:
		return fmt.Errorf("%w: got %q", pagination.ErrInvalidOutput, format)
	}
}

func nonNil(records []record.Record) []record.Record {
	if records == nil {
		return []record.Record{}
	}
	return records
}

// isWriterTerminal reports whether w is an *os.File attached to a terminal.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// renderPlainTable writes a tab-aligned table followed by a summary line.
func renderPlainTable(w io.Writer, meta pagination.PaginationMeta, records []record.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records")
		fmt.Fprintln(w, summaryLine(meta))
		return nil
	}

	if err := writeTable(w, records); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryLine(meta))
	return nil
}

// renderStyledTable boxes the table with Lip Gloss and highlights the header.
func renderStyledTable(w io.Writer, meta pagination.PaginationMeta, records []record.Record) error {
	var body strings.Builder
	if len(records) == 0 {
		body.WriteString("No records")
	} else if err := writeTable(&body, records); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimRight(body.String(), "\n"), "\n")
	if len(records) > 0 && len(lines) > 0 {
		lines[0] = headerStyle().Render(lines[0])
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(summaryLine(meta))
	_, err := fmt.Fprintf(w, "%s\n%s\n", box, footer)
	return err
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
}

// writeTable writes the header row and one row per record through a tabwriter.
func writeTable(w io.Writer, records []record.Record) error {
	cols := record.Columns(records)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	cells := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			cells[i] = truncate(record.Field(r, c), maxCellWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	const ellipsis = "..."
	return string(r[:n-len(ellipsis)]) + ellipsis
}

// summaryLine describes how far the session got, with grouped thousands.
func summaryLine(meta pagination.PaginationMeta) string {
	p := message.NewPrinter(language.English)
	line := p.Sprintf("Page %d of %d (%d of %d records, page size %d)",
		meta.CurrentPage, meta.TotalPages, meta.Fetched, meta.TotalItems, meta.PageSize)
	if meta.HasNext {
		line += ", more available"
	}
	return line
}
