package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/sitelog/pkg/form"
	"tableflip.dev/sitelog/pkg/site"
)

// formOverlay edits the fields of an add or edit draft.
type formOverlay struct {
	title  string
	fields []string
	inputs []textinput.Model
	focus  int
	errs   map[string]string
}

func newForm(title string, fields []string, draft *form.Draft) *formOverlay {
	f := &formOverlay{title: title, fields: fields, errs: map[string]string{}}
	for _, name := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		if draft != nil {
			in.SetValue(draft.Get(name))
		}
		f.inputs = append(f.inputs, in)
	}
	f.focusAt(0)
	return f
}

func (f *formOverlay) focusAt(i int) {
	if len(f.inputs) == 0 {
		return
	}
	i = (i + len(f.inputs)) % len(f.inputs)
	for n := range f.inputs {
		f.inputs[n].Blur()
	}
	f.focus = i
	f.inputs[i].Focus()
}

// Update moves focus or edits the focused input.
func (f *formOverlay) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.focusAt(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.focusAt(f.focus - 1)
		return nil
	}
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// Value returns the current text of field.
func (f *formOverlay) Value(field string) string {
	for i, name := range f.fields {
		if name == field {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// apply copies the inputs into d. Blank inputs clear the field.
func (f *formOverlay) apply(d *form.Draft) {
	for i, name := range f.fields {
		value := strings.TrimSpace(f.inputs[i].Value())
		if value == "" {
			if d.Get(name) != "" {
				d.Unset(name)
			}
			continue
		}
		d.Set(name, value)
	}
}

// setError records field messages from a validation error. It reports
// whether err was a validation error.
func (f *formOverlay) setError(err error) bool {
	f.errs = map[string]string{}
	var ve *site.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve.Errors {
		f.errs[fe.Field] = fe.Message
	}
	for i, name := range f.fields {
		if _, bad := f.errs[name]; bad {
			f.focusAt(i)
			break
		}
	}
	return true
}

func (f *formOverlay) View(t Theme) string {
	width := 0
	for _, name := range f.fields {
		if len(name) > width {
			width = len(name)
		}
	}
	var b strings.Builder
	b.WriteString(t.Modal.Title.Render(f.title))
	b.WriteString("\n\n")
	for i, name := range f.fields {
		b.WriteString(t.Modal.Label.Render(name + strings.Repeat(" ", width-len(name)) + "  "))
		b.WriteString(f.inputs[i].View())
		if msg, bad := f.errs[name]; bad {
			b.WriteString("  " + t.Modal.Error.Render(msg))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.Help.Render("tab next · enter save · esc cancel"))
	return t.Modal.Frame.Render(b.String())
}
