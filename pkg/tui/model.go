// Package tui is the interactive list page: a table over one feature page
// with a search box, facet filters, sorting, and add/edit/delete overlays.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/form"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/store"
	"tableflip.dev/sitelog/pkg/view"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDate
	modeFacets
	modeAdd
	modeEdit
	modeDelete
)

const maxCellWidth = 28

type loadedMsg struct {
	feature site.Feature
	err     error
}

type refetchedMsg struct {
	resource string
	err      error
}

type submittedMsg struct {
	verb string
	err  error
}

type snapshotMsg struct {
	event store.Event
	ok    bool
}

// Options configure New.
type Options struct {
	Session *app.Session
	Scope   string
	Feature site.Feature
	// Events, when set, refetches resources whose snapshot changed.
	Events <-chan store.Event
	Theme  *Theme
}

// Model is the Bubble Tea model of the page UI.
type Model struct {
	ctx     context.Context
	session *app.Session
	scope   string
	page    app.Pager
	events  <-chan store.Event
	theme   Theme

	mode   mode
	search textinput.Model
	date   textinput.Model
	form   *formOverlay
	draft  *form.Draft
	facets *facetPicker

	cursor  int
	width   int
	height  int
	loading bool
	status  string
	err     error
}

var _ tea.Model = (*Model)(nil)

// New builds the model. Nothing is fetched until Init runs.
func New(ctx context.Context, opts Options) (*Model, error) {
	if opts.Session == nil {
		return nil, errors.New("tui: session required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	feature := opts.Feature
	if feature == "" {
		feature = site.Events
	}
	page, err := opts.Session.Page(feature)
	if err != nil {
		return nil, err
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "поиск"
	search.CharLimit = 128
	search.SetValue(page.Filters().Search)

	date := textinput.New()
	date.Prompt = "дата: "
	date.Placeholder = "2024-03-01"
	date.CharLimit = 10

	return &Model{
		ctx:     ctx,
		session: opts.Session,
		scope:   opts.Scope,
		page:    page,
		events:  opts.Events,
		theme:   theme,
		search:  search,
		date:    date,
	}, nil
}

// Page returns the page on screen.
func (m *Model) Page() app.Pager { return m.page }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(m.page.Feature()), m.waitForSnapshot())
}

func (m *Model) load(f site.Feature) tea.Cmd {
	m.loading = true
	ctx, session, scope := m.ctx, m.session, m.scope
	return func() tea.Msg {
		return loadedMsg{feature: f, err: session.Load(ctx, scope, f)}
	}
}

func (m *Model) waitForSnapshot() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		return snapshotMsg{event: ev, ok: ok}
	}
}

func (m *Model) submit(verb string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return submittedMsg{verb: verb, err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		if msg.feature == m.page.Feature() {
			m.loading = false
		}
		m.err = msg.err
		if msg.err == nil {
			if err := m.page.Err(); err != nil {
				m.err = fmt.Errorf("showing last known data: %w", err)
			}
		}
		m.clampCursor()
		return m, nil

	case refetchedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "updated " + msg.resource
		}
		m.clampCursor()
		return m, nil

	case snapshotMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.onSnapshot(msg.event), m.waitForSnapshot())

	case submittedMsg:
		m.submitted(msg)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeDate:
		m.date, cmd = m.date.Update(msg)
	}
	return m, cmd
}

func (m *Model) onSnapshot(ev store.Event) tea.Cmd {
	if ev.Type == store.EventInvalidated {
		return m.load(m.page.Feature())
	}
	if ev.Scope != m.scope {
		return nil
	}
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return refetchedMsg{resource: ev.Resource, err: session.Refetch(ctx, ev.Resource)}
	}
}

func (m *Model) submitted(msg submittedMsg) {
	switch msg.verb {
	case "add", "edit":
		if msg.err != nil {
			if m.form != nil && m.form.setError(msg.err) {
				m.err = nil
				m.status = "check the highlighted fields"
				return
			}
			m.err = msg.err
			return
		}
		m.form = nil
		m.draft = nil
		m.mode = modeList
		m.err = nil
		if msg.verb == "add" {
			m.status = "added"
		} else {
			m.status = "saved"
		}
	case "delete":
		m.mode = modeList
		if msg.err != nil {
			m.page.CloseDelete()
			m.err = msg.err
			return
		}
		m.err = nil
		m.status = "deleted"
	}
	m.clampCursor()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	switch m.mode {
	case modeSearch:
		return m.searchKey(msg)
	case modeDate:
		return m.dateKey(msg)
	case modeFacets:
		return m.facetKey(key)
	case modeAdd, modeEdit:
		return m.formKey(msg)
	case modeDelete:
		return m.deleteKey(key)
	}
	return m.listKey(key)
}

func (m *Model) listKey(key string) tea.Cmd {
	m.status = ""
	switch key {
	case "q":
		return tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.bodyHeight())
	case "pgdown":
		m.moveCursor(m.bodyHeight())
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = m.page.Len() - 1
		m.clampCursor()
	case "/":
		m.mode = modeSearch
		return m.search.Focus()
	case "t":
		m.mode = modeDate
		if d := m.page.Filters().Date; d != nil {
			m.date.SetValue(d.String())
		}
		return m.date.Focus()
	case "f":
		m.mode = modeFacets
		m.facets = newFacetPicker(m.page)
	case "s":
		m.page.ToggleSort(nextField(m.page.SortFields(), m.page.Sort().Field))
		m.status = site.SortLabel(m.page.Sort())
	case "S":
		m.page.ToggleSort(m.page.Sort().Field)
		m.status = site.SortLabel(m.page.Sort())
	case "r":
		m.resetFilters()
	case "enter":
		if m.page.SelectAt(m.cursor) {
			m.mode = modeEdit
			m.form = newForm("Редактирование", site.FormFields(m.page.Feature()), m.page.EditDraft())
		}
	case "esc":
		m.page.Deselect()
	case "a":
		m.draft = m.page.OpenAdd()
		m.mode = modeAdd
		m.form = newForm("Новая запись: "+m.page.Feature().Title(), site.FormFields(m.page.Feature()), m.draft)
	case "d":
		if m.page.ConfirmDeleteAt(m.cursor) {
			m.mode = modeDelete
		}
	case "tab":
		return m.switchPage(1)
	case "shift+tab":
		return m.switchPage(-1)
	case "R":
		return m.load(m.page.Feature())
	}
	return nil
}

func (m *Model) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.search.Blur()
		return nil
	case "esc":
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.page.SetSearch("")
		m.clampCursor()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.page.SetSearch(m.search.Value())
	m.clampCursor()
	return cmd
}

func (m *Model) dateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.date.Value())
		if raw == "" {
			m.page.SetDate(nil)
		} else {
			d, err := view.ParseDay(raw)
			if err != nil {
				m.err = fmt.Errorf("invalid date %q", raw)
				return nil
			}
			m.page.SetDate(&d)
		}
		m.err = nil
		m.mode = modeList
		m.date.Blur()
		m.clampCursor()
		return nil
	case "esc":
		m.mode = modeList
		m.date.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.date, cmd = m.date.Update(msg)
	return cmd
}

func (m *Model) facetKey(key string) tea.Cmd {
	switch key {
	case "esc", "f", "q":
		m.mode = modeList
		m.facets = nil
	case "up", "k":
		m.facets.move(-1)
	case "down", "j":
		m.facets.move(1)
	case " ", "space", "enter", "x":
		if e, ok := m.facets.current(); ok {
			m.page.ToggleFacet(e.facet, e.Value)
		}
	case "r":
		m.resetFilters()
	}
	m.clampCursor()
	return nil
}

func (m *Model) formKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.mode == modeAdd {
			m.page.CloseAdd()
		} else {
			m.page.Deselect()
		}
		m.mode = modeList
		m.form = nil
		m.draft = nil
		return nil
	case "enter":
		if m.mode == modeAdd {
			m.form.apply(m.draft)
			return m.submit("add", m.page.SubmitAdd)
		}
		draft := m.page.EditDraft()
		if draft == nil {
			m.mode = modeList
			m.form = nil
			return nil
		}
		m.form.apply(draft)
		return m.submit("edit", m.page.SubmitEdit)
	}
	return m.form.Update(msg)
}

func (m *Model) deleteKey(key string) tea.Cmd {
	switch key {
	case "y", "Y", "enter":
		return m.submit("delete", m.page.SubmitDelete)
	case "n", "N", "esc", "q":
		m.page.CloseDelete()
		m.mode = modeList
	}
	return nil
}

func (m *Model) resetFilters() {
	m.page.ResetFilters()
	m.search.SetValue("")
	m.date.SetValue("")
	m.status = "filters reset"
	m.clampCursor()
}

func (m *Model) switchPage(delta int) tea.Cmd {
	current := m.page.Feature()
	idx := 0
	for i, f := range site.Pages {
		if f == current {
			idx = i
		}
	}
	next := site.Pages[(idx+delta+len(site.Pages))%len(site.Pages)]
	page, err := m.session.Page(next)
	if err != nil {
		m.err = err
		return nil
	}
	m.page = page
	m.cursor = 0
	m.err = nil
	m.search.SetValue(page.Filters().Search)
	m.date.SetValue("")
	if page.Status() == collection.StatusIdle {
		return m.load(next)
	}
	return nil
}

func nextField(fields []string, current string) string {
	if len(fields) == 0 {
		return current
	}
	for i, f := range fields {
		if f == current {
			return fields[(i+1)%len(fields)]
		}
	}
	return fields[0]
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.page.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// bodyHeight is the number of table rows that fit on screen.
func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n")
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n")

	switch m.mode {
	case modeFacets:
		b.WriteString(m.facets.View(m.theme, m.page, m.bodyHeight()))
	case modeAdd, modeEdit:
		b.WriteString(m.form.View(m.theme))
	case modeDelete:
		b.WriteString(m.deleteView())
	default:
		b.WriteString(m.table())
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) tabs() string {
	parts := make([]string, len(site.Pages))
	for i, f := range site.Pages {
		if f == m.page.Feature() {
			parts[i] = m.theme.Selected.Render(f.Title())
		} else {
			parts[i] = m.theme.Help.Render(f.Title())
		}
	}
	return strings.Join(parts, m.theme.Help.Render(" │ "))
}

func (m *Model) header() string {
	title := m.theme.Title.Render(m.page.Feature().Title())
	count := fmt.Sprintf(" %d", m.page.Len())
	if total := m.page.Total(); total != m.page.Len() {
		count = fmt.Sprintf(" %d of %d", m.page.Len(), total)
	}
	line := title + m.theme.Count.Render(count+" · "+site.SortLabel(m.page.Sort()))
	if m.scope != "" {
		line += m.theme.Count.Render(" · " + m.scope)
	}
	if m.loading {
		line += m.theme.Count.Render(" · загрузка…")
	}
	return line
}

func (m *Model) filterLine() string {
	switch m.mode {
	case modeSearch:
		return m.search.View()
	case modeDate:
		return m.date.View()
	}
	f := m.page.Filters()
	var parts []string
	if q := strings.TrimSpace(f.Search); q != "" {
		parts = append(parts, "/ "+q)
	}
	if f.Date != nil && !f.Date.IsZero() {
		parts = append(parts, "дата "+f.Date.String())
	}
	for _, facet := range f.ActiveFacets() {
		parts = append(parts, facet+": "+strings.Join(m.labels(facet, f.Values(facet)), ", "))
	}
	if len(parts) == 0 {
		return m.theme.Filters.Render("без фильтров")
	}
	return m.theme.Filters.Render(strings.Join(parts, " · "))
}

func (m *Model) labels(facet string, values []string) []string {
	byValue := map[string]string{}
	for _, opt := range m.page.FacetOptions(facet) {
		byValue[opt.Value] = opt.Label
	}
	out := make([]string, len(values))
	for i, v := range values {
		if label, ok := byValue[v]; ok {
			out[i] = label
		} else {
			out[i] = v
		}
	}
	return out
}

func (m *Model) table() string {
	headers := m.page.Headers()
	rows := m.page.Rows()
	if len(rows) == 0 {
		if m.loading {
			return m.theme.Help.Render("  загрузка…")
		}
		return m.theme.Help.Render("  нет записей")
	}

	widths := make([]int, len(headers))
	for i := 1; i < len(headers); i++ {
		widths[i] = lipgloss.Width(headers[i])
	}
	for _, row := range rows {
		for i := 1; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(m.theme.Header.Render(joinCells(headers, widths)))
	b.WriteString("\n")

	current := m.page.CurrentID()
	start, end := visibleRange(m.cursor, len(rows), m.bodyHeight())
	for i := start; i < end; i++ {
		row := rows[i]
		marker := "  "
		if current != "" && row[0] == current {
			marker = m.theme.Selected.Render("● ")
		}
		line := joinCells(row, widths)
		if i == m.cursor {
			line = m.theme.Cursor.Render(line)
		}
		b.WriteString(marker + line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// joinCells pads and truncates every cell but the id column.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, 0, len(cells))
	for i := 1; i < len(cells) && i < len(widths); i++ {
		cell := strings.Join(strings.Fields(cells[i]), " ")
		cell = truncate.StringWithTail(cell, uint(widths[i]), "…")
		if pad := widths[i] - lipgloss.Width(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) deleteView() string {
	id := m.page.Overlays().DeletingID
	summary := id
	for _, row := range m.page.Rows() {
		if row[0] == id {
			summary = strings.Join(row[1:], " · ")
			break
		}
	}
	body := m.theme.Modal.Title.Render("Удалить запись?") + "\n\n" +
		summary + "\n\n" +
		m.theme.Help.Render("y delete · n cancel")
	return m.theme.Modal.Frame.Render(body)
}

func (m *Model) footer() string {
	if m.err != nil {
		return m.theme.Error.Render(m.err.Error())
	}
	if m.status != "" {
		return m.theme.Status.Render(m.status)
	}
	switch m.mode {
	case modeSearch:
		return m.theme.Help.Render("enter keep · esc clear")
	case modeDate:
		return m.theme.Help.Render("YYYY-MM-DD · empty clears · esc cancel")
	}
	return m.theme.Help.Render("/ search · t date · f filters · s sort · S reverse · r reset · enter open · a add · d delete · tab page · q quit")
}
