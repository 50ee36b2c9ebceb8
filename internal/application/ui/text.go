package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	toneColors = map[string]lipgloss.Color{
		"high":        lipgloss.Color("9"),
		"medium":      lipgloss.Color("11"),
		"low":         lipgloss.Color("10"),
		"done":        lipgloss.Color("10"),
		"in-progress": lipgloss.Color("11"),
		"overdue":     lipgloss.Color("9"),
	}
)

// RenderText writes a terminal rendering of the tree, one node per line,
// indented by depth.
func RenderText(w io.Writer, n Node) error {
	var b strings.Builder
	renderText(&b, n, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderText(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if line := textLine(n); line != "" {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, c := range n.Children {
		renderText(b, c, depth+1)
	}
	for _, a := range n.Actions {
		label := a.Label
		if label == "" {
			label = a.Name
		}
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(actionStyle.Render("[" + label + "]"))
		b.WriteByte('\n')
	}
}

func textLine(n Node) string {
	switch n.Kind {
	case KindPanel, KindCard:
		return titleStyle.Render(n.Text)
	case KindHeading, KindColumn:
		return headingStyle.Render(n.Text)
	case KindBadge:
		style := lipgloss.NewStyle()
		if tone, ok := n.Attrs["tone"].(string); ok {
			if color, ok := toneColors[tone]; ok {
				style = style.Foreground(color)
			}
		}
		return style.Render("(" + n.Text + ")")
	case KindStat:
		return fmt.Sprintf("%s: %v", n.Text, n.Attrs["value"])
	case KindProgress:
		percent, _ := n.Attrs["percent"].(int)
		filled := percent / 5
		return fmt.Sprintf("%s [%s%s] %d%%", n.Text, strings.Repeat("#", filled), strings.Repeat(".", 20-filled), percent)
	case KindEmpty:
		line := mutedStyle.Render(n.Text)
		if hint, ok := n.Attrs["hint"].(string); ok && hint != "" {
			line += " " + mutedStyle.Render(hint)
		}
		return line
	case KindChart:
		return headingStyle.Render(n.Text) + " " + mutedStyle.Render(attrSummary(n.Attrs, "series"))
	case KindList, KindGrid:
		return ""
	default:
		return n.Text
	}
}

func attrSummary(attrs map[string]any, skip ...string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
outer:
	for _, k := range keys {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, attrs[k]))
	}
	return strings.Join(parts, " ")
}
