package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

type field struct {
	label string
	value string
}

// form is a column of single-line text fields edited in place.
type form struct {
	title  string
	fields []field
	focus  int
}

func newForm(title string, labels ...string) *form {
	f := &form{title: title, fields: make([]field, len(labels))}
	for i, label := range labels {
		f.fields[i].label = label
	}
	return f
}

func (f *form) set(i int, value string) { f.fields[i].value = value }

func (f *form) value(i int) string { return f.fields[i].value }

func (f *form) handleKey(msg tea.KeyMsg) formAction {
	switch msg.Type {
	case tea.KeyEsc:
		return formCancel
	case tea.KeyEnter:
		return formSubmit
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % len(f.fields)
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	case tea.KeyBackspace:
		v := []rune(f.fields[f.focus].value)
		if len(v) > 0 {
			f.fields[f.focus].value = string(v[:len(v)-1])
		}
	case tea.KeyCtrlU:
		f.fields[f.focus].value = ""
	case tea.KeySpace:
		f.fields[f.focus].value += " "
	case tea.KeyRunes:
		f.fields[f.focus].value += string(msg.Runes)
	}
	return formNone
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n")
	for i, fl := range f.fields {
		value := fl.value
		if i == f.focus {
			value = focusStyle.Render(value + "_")
		}
		b.WriteString(labelStyle.Render(fl.label) + " " + value + "\n")
	}
	b.WriteString(mutedStyle.Render("enter save · tab next · esc cancel"))
	return formStyle.Render(b.String())
}

// optionalText maps a blank field to nil.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
