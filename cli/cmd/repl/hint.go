package repl

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/wz/lang"
)

// bindingHint renders the kind and value of the variable name bound in env,
// ellipsized to width. Returns an empty string if name is not bound.
func bindingHint(env *lang.Environment, name string, width int) string {
	v, ok := env.Get(name)
	if !ok || width <= 0 {
		return ""
	}

	label := lipgloss.NewStyle().Bold(true).Render(name)
	prefix := label + hintStyle.Render(": "+v.Kind().String()+" = ")

	text := v.String()
	if v.Kind() == lang.KindString {
		text = `"` + text + `"`
	}

	room := width - lipgloss.Width(prefix)
	if room <= 0 {
		return prefix
	}

	return prefix + resultStyle.Render(ellipsize(text, room))
}

// ellipsize truncates s to at most width runes, marking the cut with "...".
func ellipsize(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	if width <= 3 {
		return string(r[:width])
	}

	return string(r[:width-3]) + "..."
}
