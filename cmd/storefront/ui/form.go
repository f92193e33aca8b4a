package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FieldSpec describes one form input.
type FieldSpec struct {
	Key         string
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

type formField struct {
	spec  FieldSpec
	input textinput.Model
}

// Form is a vertical list of labelled text inputs with one focused field.
// Field errors are shown under their input.
type Form struct {
	fields []formField
	focus  int
	errors map[string]string
}

// NewForm builds a form with the first field focused.
func NewForm(specs ...FieldSpec) Form {
	f := Form{errors: map[string]string{}}
	for _, s := range specs {
		in := textinput.New()
		in.Placeholder = s.Placeholder
		in.Prompt = ""
		in.Cursor.SetMode(cursor.CursorStatic)
		in.Width = FormWidth
		in.CharLimit = 120
		if s.CharLimit > 0 {
			in.CharLimit = s.CharLimit
		}
		if s.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, formField{spec: s, input: in})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Len returns the number of fields.
func (f Form) Len() int { return len(f.fields) }

// Focused returns the key of the focused field.
func (f Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focus].spec.Key
}

// FocusIndex moves focus to field i.
func (f *Form) FocusIndex(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	if i >= len(f.fields) {
		i = 0
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.fields[i].input.Focus()
}

// Next moves focus down one field, wrapping.
func (f *Form) Next() tea.Cmd { return f.FocusIndex(f.focus + 1) }

// Prev moves focus up one field, wrapping.
func (f *Form) Prev() tea.Cmd { return f.FocusIndex(f.focus - 1) }

// Value returns the trimmed value of key.
func (f Form) Value(key string) string {
	for _, fld := range f.fields {
		if fld.spec.Key == key {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

// RawValue returns the value of key as typed. Passwords are read this way.
func (f Form) RawValue(key string) string {
	for _, fld := range f.fields {
		if fld.spec.Key == key {
			return fld.input.Value()
		}
	}
	return ""
}

// SetValue replaces the value of key.
func (f *Form) SetValue(key, v string) {
	for i := range f.fields {
		if f.fields[i].spec.Key == key {
			f.fields[i].input.SetValue(v)
			return
		}
	}
}

// SetErrors replaces the per-field messages.
func (f *Form) SetErrors(errs map[string]string) {
	f.errors = map[string]string{}
	for k, v := range errs {
		f.errors[k] = v
	}
}

// Errors returns the current per-field messages.
func (f Form) Errors() map[string]string { return f.errors }

// Reset clears every value and error and focuses the first field.
func (f *Form) Reset() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	f.errors = map[string]string{}
	return f.FocusIndex(0)
}

// Blur removes focus from every field.
func (f *Form) Blur() {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

// Update handles focus movement and routes other messages to the focused
// input. Enter and Esc are left to the caller.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f.Next()
		case "shift+tab", "up":
			return f.Prev()
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// View renders label, input and error per field.
func (f Form) View(styles Styles) string {
	var sb strings.Builder
	for i, fld := range f.fields {
		label := styles.Label
		if i == f.focus && fld.input.Focused() {
			label = styles.FocusedLabel
		}
		sb.WriteString(label.Render(fld.spec.Label))
		sb.WriteString(fld.input.View())
		sb.WriteString("\n")
		if msg, ok := f.errors[fld.spec.Key]; ok {
			sb.WriteString(styles.FieldError.Render(msg))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
