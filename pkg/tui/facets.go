package tui

import (
	"strings"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
)

type facetEntry struct {
	facet string
	site.Option
}

// facetPicker lists every facet value of a page for toggling.
type facetPicker struct {
	entries []facetEntry
	cursor  int
}

func newFacetPicker(page app.Pager) *facetPicker {
	p := &facetPicker{}
	for _, facet := range page.FacetNames() {
		for _, opt := range page.FacetOptions(facet) {
			p.entries = append(p.entries, facetEntry{facet: facet, Option: opt})
		}
	}
	return p
}

func (p *facetPicker) move(delta int) {
	if len(p.entries) == 0 {
		return
	}
	p.cursor = (p.cursor + delta + len(p.entries)) % len(p.entries)
}

func (p *facetPicker) current() (facetEntry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return facetEntry{}, false
	}
	return p.entries[p.cursor], true
}

func (p *facetPicker) View(t Theme, page app.Pager, height int) string {
	var b strings.Builder
	b.WriteString(t.Modal.Title.Render("Фильтры"))
	b.WriteString("\n\n")
	if len(p.entries) == 0 {
		b.WriteString(t.Help.Render("nothing to filter by"))
		return t.Modal.Frame.Render(b.String())
	}

	filters := page.Filters()
	start, end := visibleRange(p.cursor, len(p.entries), height)
	last := ""
	for i := start; i < end; i++ {
		e := p.entries[i]
		if e.facet != last {
			b.WriteString(t.Modal.Label.Render(e.facet) + "\n")
			last = e.facet
		}
		mark := "[ ]"
		for _, v := range filters.Values(e.facet) {
			if v == e.Value {
				mark = "[x]"
				break
			}
		}
		line := "  " + mark + " " + e.Label
		if i == p.cursor {
			line = t.Cursor.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Help.Render("space toggle · r reset · esc close"))
	return t.Modal.Frame.Render(b.String())
}

// visibleRange returns the window of n rows of at most height that keeps
// cursor visible.
func visibleRange(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}
