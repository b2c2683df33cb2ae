package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/michaelvu812/mvpaginator/internal/record"
	listview "github.com/michaelvu812/mvpaginator/internal/tui/list"
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

const (
	// colWidth is the width of one record column in the list.
	colWidth = 18

	// colGap separates columns.
	colGap = 2

	// chromeHeight is the title, column header, status bar and help line.
	chromeHeight = 6
)

// pageMsg carries the outcome of an asynchronous page fetch.
type pageMsg struct {
	out paginator.Outcome[record.Record]
}

// BrowseModel is the Bubble Tea model for paging through a source
// interactively. Pages are fetched on demand with FetchNextPageAsync and
// appended to a virtual list.
type BrowseModel struct {
	ctx    context.Context
	source string
	pager  *paginator.Paginator[record.Record]

	state   ViewState
	list    *listview.VirtualListModel[record.Record]
	columns []string
	keys    KeyMap
	help    help.Model
	loading *LoadingState

	width  int
	height int

	status string
	err    error
}

// NewBrowseModel creates a browse model over pager. The first page is
// requested by Init.
func NewBrowseModel(ctx context.Context, source string, pager *paginator.Paginator[record.Record]) *BrowseModel {
	m := &BrowseModel{
		ctx:     ctx,
		source:  source,
		pager:   pager,
		state:   ViewStateLoading,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		loading: NewLoadingState("Fetching first page..."),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.list = listview.NewVirtualListModel(pager.Results(), m.listHeight(), m.width, m.renderRow)
	return m
}

// Init requests the first page.
func (m *BrowseModel) Init() tea.Cmd {
	return m.fetchNext()
}

// fetchNext starts a fetch and returns the commands that wait for it and
// animate the spinner. The paginator's guard is taken before this returns.
func (m *BrowseModel) fetchNext() tea.Cmd {
	ch := m.pager.FetchNextPageAsync(m.ctx)
	wait := func() tea.Msg {
		return pageMsg{out: <-ch}
	}
	return tea.Batch(wait, m.loading.Init())
}

// Update handles messages and updates the model state.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(m.listHeight(), m.width)
		return m, nil
	case pageMsg:
		m.handlePage(msg.out)
		return m, nil
	case spinner.TickMsg:
		if !m.Fetching() {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state = ViewStateQuitting
		m.pager.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m, m.fetchNext()
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.Cancel):
		if m.pager.Cancel() {
			m.status = "fetch canceled"
		}
		return m, nil
	}

	switch m.state {
	case ViewStateDetail:
		if key.Matches(msg, m.keys.Back) {
			m.state = ViewStateList
		}
		return m, nil
	case ViewStateList:
	default:
		return m, nil
	}

	if key.Matches(msg, m.keys.Open) {
		if m.list.GetSelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	}
	m.list.Update(msg)

	// Scrolling onto the last row pulls in the next page.
	if m.list.AtEnd() && m.err == nil && m.pager.Status() == paginator.StatusDone && !m.pager.IsLastPage() {
		return m, m.fetchNext()
	}
	return m, nil
}

// reload starts a new session. A fetch still running is discarded by Reset.
func (m *BrowseModel) reload() tea.Cmd {
	m.pager.Reset()
	m.columns = nil
	m.list.SetItems(nil)
	m.err = nil
	m.status = ""
	m.state = ViewStateLoading
	return m.fetchNext()
}

func (m *BrowseModel) handlePage(out paginator.Outcome[record.Record]) {
	switch out.Kind {
	case paginator.OutcomeFetched:
		results := m.pager.Results()
		m.columns = record.Columns(results)
		m.list.SetItems(results)
		m.err = nil
		m.status = fmt.Sprintf("loaded page %d", out.Window.Page)
		m.state = ViewStateList
	case paginator.OutcomeFailed:
		m.err = out.Err
		m.status = ""
		m.state = ViewStateList
	case paginator.OutcomeSkippedInProgress:
		m.status = "a page is already loading"
	case paginator.OutcomeSkippedLastPage:
		m.status = "no more pages"
	case paginator.OutcomeCanceled:
		m.status = "fetch canceled"
		m.state = ViewStateList
	case paginator.OutcomeDiscarded:
		// Result of a session that was reset; nothing to show.
	}
}

// Fetching reports whether a page fetch is outstanding.
func (m *BrowseModel) Fetching() bool {
	return m.pager.Status() == paginator.StatusInProgress
}

// Err returns the last fetch failure, cleared by the next successful page.
func (m *BrowseModel) Err() error {
	return m.err
}

// Status returns the transient status line.
func (m *BrowseModel) Status() string {
	return m.status
}

// State returns the current view state.
func (m *BrowseModel) State() ViewState {
	return m.state
}

func (m *BrowseModel) listHeight() int {
	h := m.height - chromeHeight
	if h < minHeight {
		h = minHeight
	}
	return h
}

// visibleColumns returns as many columns as fit the width.
func (m *BrowseModel) visibleColumns() []string {
	n := m.width / (colWidth + colGap)
	if n < 1 {
		n = 1
	}
	if len(m.columns) < n {
		return m.columns
	}
	return m.columns[:n]
}

func (m *BrowseModel) renderRow(r record.Record, selected bool) string {
	cols := m.visibleColumns()
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = cell(record.Field(r, c))
	}
	row := strings.Join(cells, strings.Repeat(" ", colGap))
	if selected {
		return SelectedStyle.Render(row)
	}
	return row
}

// cell pads or truncates s to colWidth runes.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > colWidth {
		return string(r[:colWidth-1]) + "…"
	}
	return s + strings.Repeat(" ", colWidth-len(r))
}

// View renders the current view.
func (m *BrowseModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", m.source, m.pager.Kind())))
	b.WriteString("\n")

	switch m.state {
	case ViewStateLoading:
		b.WriteString(RenderLoading(m.loading))
		b.WriteString(m.help.View(m.keys))
		return b.String()
	case ViewStateDetail:
		if r := m.list.GetSelectedItem(); r != nil {
			b.WriteString(RenderRecordDetail(*r, m.width))
		}
		b.WriteString("\n")
		b.WriteString(StatusStyle.Width(m.width).Render(m.statusLine()))
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	cols := m.visibleColumns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = cell(strings.ToUpper(c))
	}
	b.WriteString(HeaderStyle.Render(strings.Join(headers, strings.Repeat(" ", colGap))))
	b.WriteString("\n")

	if m.list.ItemCount() == 0 {
		b.WriteString(LabelStyle.Render("No records"))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	b.WriteString(StatusStyle.Width(m.width).Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// statusLine shows progress, the spinner while fetching, and the last
// failure or status message.
func (m *BrowseModel) statusLine() string {
	s := m.pager.Snapshot()
	p := message.NewPrinter(language.English)
	line := p.Sprintf("page %d/%d  records %d/%d", s.CurrentPage, s.TotalPageCount, s.Accumulated, s.TotalCount)
	if s.LastPage {
		line += "  (end)"
	}

	switch {
	case m.Fetching():
		line += "  " + m.loading.View() + " loading"
	case m.err != nil:
		line += "  " + CriticalStyle.Render("error: "+m.err.Error()+" (n to retry)")
	case m.status != "":
		line += "  " + LabelStyle.Render(m.status)
	}
	return line
}

// detailKeyWidth caps the label column of the detail view.
const detailKeyWidth = 24

// RenderRecordDetail renders every field of r, one per line, with nested
// values flattened to JSON.
func RenderRecordDetail(r record.Record, width int) string {
	cols := record.Columns([]record.Record{r})
	keyWidth := 0
	for _, c := range cols {
		keyWidth = max(keyWidth, len([]rune(c)))
	}
	keyWidth = min(keyWidth, detailKeyWidth)

	valueWidth := width - keyWidth - colGap
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("RECORD DETAIL"))
	sb.WriteString("\n\n")
	for _, c := range cols {
		label := c
		if n := len([]rune(label)); n < keyWidth {
			label += strings.Repeat(" ", keyWidth-n)
		}
		value := strings.ReplaceAll(record.Field(r, c), "\n", " ")
		if vr := []rune(value); valueWidth > 1 && len(vr) > valueWidth {
			value = string(vr[:valueWidth-1]) + "…"
		}
		sb.WriteString(LabelStyle.Render(label))
		sb.WriteString(strings.Repeat(" ", colGap))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	return sb.String()
}
