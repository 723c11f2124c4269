package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/expand"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// reportLoadedMsg signals that a report has been built.
type reportLoadedMsg struct {
	resp *contract.ReportResponse
	err  error
}

type browseKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Sort      key.Binding
	Hierarchy key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

func newBrowseKeyMap() browseKeyMap {
	return browseKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "category")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab")),
		Sort:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "sort")),
		Hierarchy: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "hierarchy")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// browseRow is one visible line of the tree.
type browseRow struct {
	node  *aggregate.Node
	depth int
}

// browseModel is an expandable report tree. Field and sort changes
// re-fold the loaded records in place; only refresh goes back to the
// report service.
type browseModel struct {
	ctx  context.Context
	app  *App
	req  contract.ReportRequest
	keys browseKeyMap

	loading bool
	loadErr error // last report request failure
	foldErr error // loaded records rejected by strict folding
	resp    *contract.ReportResponse

	folded []*aggregate.Node // unsorted fold of resp.Records
	roots  []*aggregate.Node
	rows   []browseRow
	expand *expand.State

	cursor int
	offset int
	width  int
	height int
}

func newBrowseModel(ctx context.Context, app *App, req contract.ReportRequest) *browseModel {
	return &browseModel{
		ctx:     ctx,
		app:     app,
		req:     req,
		keys:    newBrowseKeyMap(),
		loading: true,
		expand:  expand.NewState(req.Hierarchy.CollapsePolicy()),
	}
}

func (m *browseModel) ShortHelp() []key.Binding {
	k := m.keys
	return []key.Binding{k.Up, k.Down, k.Toggle, k.NextField, k.Sort, k.Hierarchy, k.Refresh, k.Quit}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load()
}

func (m *browseModel) load() tea.Cmd {
	ctx, reports, req := m.ctx, m.app.Reports, m.req
	return func() tea.Msg {
		resp, err := reports.Build(ctx, req)
		return reportLoadedMsg{resp: resp, err: err}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampCursor()
		return m, nil

	case reportLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		m.resp = msg.resp
		m.refold()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *browseModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.load()
	}

	if m.resp == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.NextField):
		m.req.Field = cycle(domain.AllHoursFields(), m.req.Field, 1)
		m.refold()
	case key.Matches(msg, m.keys.PrevField):
		m.req.Field = cycle(domain.AllHoursFields(), m.req.Field, -1)
		m.refold()
	case key.Matches(msg, m.keys.Sort):
		m.req.SortBy = aggregate.AllSortColumns()[msg.String()[0]-'1']
		m.resort()
	case key.Matches(msg, m.keys.Hierarchy):
		m.req.Hierarchy = cycle(aggregate.AllHierarchies(), m.req.Hierarchy, 1)
		m.expand = expand.NewState(m.req.Hierarchy.CollapsePolicy())
		m.cursor, m.offset = 0, 0
		m.refold()
	}
	return m, nil
}

// cycle returns the element step places after cur, wrapping around.
func cycle[T comparable](all []T, cur T, step int) T {
	i := slices.Index(all, cur)
	n := len(all)
	return all[((i+step)%n+n)%n]
}

func (m *browseModel) toggle() {
	if m.cursor >= len(m.rows) {
		return
	}
	n := m.rows[m.cursor].node
	if n.IsLeaf() {
		return
	}
	m.expand.Toggle(n.Path)
	m.refreshRows()
}

// refold rebuilds the tree from the loaded records for the current
// field and hierarchy.
func (m *browseModel) refold() {
	records := m.resp.Records
	m.foldErr = nil
	if m.req.Strict {
		folded, err := aggregate.AggregateStrict(records, m.req.Field, m.req.Hierarchy)
		if err != nil {
			m.foldErr = err
		}
		m.folded = folded
	} else {
		m.folded = aggregate.Aggregate(records, m.req.Field, m.req.Hierarchy)
	}
	m.resort()
}

func (m *browseModel) resort() {
	m.roots = aggregate.SortTree(m.folded, m.req.SortBy)
	m.refreshRows()
}

// refreshRows flattens the tree through the expand state and keeps the
// cursor on the same node when it is still visible.
func (m *browseModel) refreshRows() {
	var current expand.Path
	if m.cursor < len(m.rows) {
		current = m.rows[m.cursor].node.Path
	}

	m.rows = m.rows[:0]
	aggregate.Walk(m.roots, func(n *aggregate.Node, depth int) bool {
		if !m.expand.Visible(n.Path) {
			return false
		}
		m.rows = append(m.rows, browseRow{node: n, depth: depth})
		return true
	})

	if current != nil {
		for i, r := range m.rows {
			if r.node.Path.Equal(current) {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

// pageSize is how many tree rows fit below the header and above the
// footer. Zero means no limit.
func (m *browseModel) pageSize() int {
	if m.height == 0 {
		return 0
	}
	chrome := 8 + len(m.warnings())
	return max(1, m.height-chrome)
}

func (m *browseModel) clampCursor() {
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
	page := m.pageSize()
	if page == 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(0, min(m.offset, max(0, len(m.rows)-page)))
}

func (m *browseModel) warnings() []string {
	if m.resp == nil {
		return nil
	}
	return m.resp.Warnings
}

func (m *browseModel) View() string {
	if m.resp == nil {
		if m.loadErr != nil {
			return formatter.StyleRed.Render("Error: "+m.loadErr.Error()) + "\n"
		}
		return formatter.Dim("Loading timesheet...") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n")
	for _, w := range m.warnings() {
		b.WriteString(formatter.Warning(w))
		b.WriteString("\n")
	}
	for _, err := range []error{m.loadErr, m.foldErr} {
		if err != nil {
			b.WriteString(formatter.StyleRed.Render("Error: " + err.Error()))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.foldErr == nil {
			b.WriteString(formatter.Dim(formatter.EmptyMessage(&contract.ReportResponse{Field: m.req.Field})))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.viewRows())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *browseModel) viewHeader() string {
	source := strings.Join(m.resp.Slugs, ", ")
	if m.resp.Source == contract.SourceSnapshot {
		source = "snapshot " + formatter.TruncID(m.resp.SnapshotID)
	}
	title := formatter.StyleHeader.Render("TALLY")
	view := fmt.Sprintf("%s · hours by %s", source, m.req.Hierarchy)
	if m.loading {
		view += " " + formatter.Dim("(refreshing...)")
	}
	return title + "  " + view
}

func (m *browseModel) viewTabs() string {
	tabs := make([]string, 0, len(domain.AllHoursFields()))
	for _, f := range domain.AllHoursFields() {
		if f == m.req.Field {
			tabs = append(tabs, formatter.StyleSelected.Render("["+f.Label()+"]"))
		} else {
			tabs = append(tabs, formatter.Dim(" "+f.Label()+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *browseModel) viewRows() string {
	cols := aggregate.AllSortColumns()
	headers := []string{"Name", "Hours"}
	for _, k := range []aggregate.Kind{aggregate.KindClient, aggregate.KindSponsor, aggregate.KindCase, aggregate.KindWorker} {
		headers = append(headers, k.Label())
	}
	for i, c := range cols {
		headers[i+1] = fmt.Sprintf("%d %s", i+1, headers[i+1])
		if c == m.req.SortBy {
			headers[i+1] += " ▼"
		}
	}

	kinds := m.req.Hierarchy.Kinds()
	start, end := m.offset, len(m.rows)
	if page := m.pageSize(); page > 0 {
		end = min(end, start+page)
	}

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		r := m.rows[i]
		n := r.node

		marker := "  "
		if i == m.cursor {
			marker = formatter.StyleGreen.Render("▸ ")
		}
		glyph := "  "
		if !n.IsLeaf() {
			glyph = "+ "
			if m.expand.IsExpanded(n.Path) {
				glyph = "- "
			}
		}
		style := formatter.KindStyle(n.Kind)
		if i == m.cursor {
			style = formatter.StyleSelected
		}
		name := marker + strings.Repeat("  ", r.depth) + formatter.Dim(glyph) + style.Render(formatter.DisplayName(n.Key))

		row := []string{name, formatter.FormatHours(n.TotalHours)}
		below := kinds[slices.Index(kinds, n.Kind)+1:]
		for _, c := range cols[1:] {
			row = append(row, countCell(n, c, below))
		}
		rows = append(rows, row)
	}
	return formatter.RenderTable(headers, rows, 1, 2, 3, 4, 5)
}

// countCell shows a distinct count only for kinds that sit below n.
func countCell(n *aggregate.Node, c aggregate.SortColumn, below []aggregate.Kind) string {
	k := sortKind(c)
	if !slices.Contains(below, k) {
		return ""
	}
	return fmt.Sprint(n.UniqueCount(k))
}

func sortKind(c aggregate.SortColumn) aggregate.Kind {
	switch c {
	case aggregate.SortClients:
		return aggregate.KindClient
	case aggregate.SortSponsors:
		return aggregate.KindSponsor
	case aggregate.SortCases:
		return aggregate.KindCase
	default:
		return aggregate.KindWorker
	}
}

func (m *browseModel) viewFooter() string {
	total := fmt.Sprintf("Total %s · %s",
		formatter.Bold(formatter.FormatHours(aggregate.TotalHours(m.roots))),
		formatter.FormatCount(len(m.rows), "row"))
	if page := m.pageSize(); page > 0 && len(m.rows) > page {
		total += formatter.Dim(fmt.Sprintf(" · %d-%d shown", m.offset+1, min(len(m.rows), m.offset+page)))
	}

	help := make([]string, 0, len(m.ShortHelp()))
	for _, b := range m.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	line := formatter.Dim(strings.Join(help, " • "))
	if m.width > 0 && lipgloss.Width(line) > m.width {
		line = formatter.Dim("q quit · ↑↓ move · enter expand")
	}
	return total + "\n" + line + "\n"
}
