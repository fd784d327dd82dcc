// Package printers renders list pages for the terminal.
package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/sitelog/pkg/view"
)

// DefaultWidth caps cell width when writing to a terminal.
const DefaultWidth = 40

// PrettyPrint writes titled tables. The first column of every row is the
// record id and is only shown with ShowID.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// Width truncates cells; 0 means DefaultWidth on a terminal and no limit
	// otherwise.
	Width int
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) width() uint {
	if pp.Width > 0 {
		return uint(pp.Width)
	}
	if IsTerminal(pp.out()) {
		return DefaultWidth
	}
	return 0
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	if w == color.Output {
		w = os.Stdout
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

// TitleWithCount prints the page title with the visible and total counts.
func (pp *PrettyPrint) TitleWithCount(title string, count, total int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	if count == total {
		_, _ = c.Fprintf(pp.out(), " - %d", count)
	} else {
		_, _ = c.Fprintf(pp.out(), " - %d of %d", count, total)
	}
	switch total {
	case 1:
		_, _ = c.Fprintln(pp.out(), " record")
	default:
		_, _ = c.Fprintln(pp.out(), " records")
	}
}

// Filters prints a faint summary of the active filters and sort.
func (pp *PrettyPrint) Filters(f view.Filters, sortLabel string) {
	var parts []string
	for _, facet := range f.ActiveFacets() {
		parts = append(parts, facet+"="+strings.Join(f.Values(facet), ","))
	}
	if f.Date != nil && !f.Date.IsZero() {
		parts = append(parts, "date="+f.Date.String())
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		parts = append(parts, fmt.Sprintf("search=%q", q))
	}
	if sortLabel != "" {
		parts = append(parts, "sort: "+sortLabel)
	}
	if len(parts) == 0 {
		return
	}
	c := color.New(color.Faint, color.Italic)
	_, _ = c.Fprintln(pp.out(), strings.Join(parts, "; "))
}

// Table prints headers and rows. Empty tables print a faint "none".
func (pp *PrettyPrint) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	bold := color.New(color.Bold)
	id := color.New(color.FgHiYellow, color.Faint)
	width := pp.width()

	tbl := uitable.New()
	tbl.Separator = "  "

	header := make([]interface{}, 0, len(headers))
	for i, h := range headers {
		if i == 0 && !pp.ShowID {
			continue
		}
		header = append(header, bold.Sprint(h))
	}
	tbl.AddRow(header...)

	for _, row := range rows {
		cells := make([]interface{}, 0, len(row))
		for i, cell := range row {
			if i == 0 {
				if pp.ShowID {
					cells = append(cells, id.Sprint(cell))
				}
				continue
			}
			cells = append(cells, Truncate(cell, width))
		}
		tbl.AddRow(cells...)
	}

	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Truncate shortens s to width cells with an ellipsis. A zero width keeps s.
func Truncate(s string, width uint) string {
	s = strings.Join(strings.Fields(s), " ")
	if width == 0 {
		return s
	}
	return truncate.StringWithTail(s, width, "…")
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	if w == nil {
		w = color.Output
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
