package lineage

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/stitchbook/internal/markdown"
)

var (
	patternStyle  = lipgloss.NewStyle().Bold(true)
	finishedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	danglingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

// RenderASCII draws every pattern with its projects and finished works
// below it, followed by the records whose pattern is gone.
func RenderASCII(t *Tree) string {
	roots := t.Roots()
	dangling := t.Dangling()
	if len(roots) == 0 && len(dangling) == 0 {
		return "No patterns."
	}

	var sb strings.Builder
	for i, id := range roots {
		if i > 0 {
			sb.WriteString("\n")
		}
		p := t.patterns[id]
		sb.WriteString(patternStyle.Render(fmt.Sprintf("%s %s [%s]", p.ID, p.Title, p.Category)) + "\n")
		renderChildren(&sb, t, id)
	}
	for _, id := range dangling {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(danglingStyle.Render(fmt.Sprintf("%s (pattern not found)", id)) + "\n")
		renderChildren(&sb, t, id)
	}
	return sb.String()
}

func renderChildren(sb *strings.Builder, t *Tree, patternID string) {
	var labels []string
	for _, p := range t.projects[patternID] {
		labels = append(labels, markdown.StatusStyle(p.Status).Render(fmt.Sprintf("%s %s [%s %d%%]", p.ID, p.Name, p.Status, p.Progress)))
	}
	for _, f := range t.finished[patternID] {
		labels = append(labels, finishedStyle.Render(fmt.Sprintf("%s %s [finished %s]", f.ID, f.Name, f.CompletedDate)))
	}
	for i, label := range labels {
		connector := "├── "
		if i == len(labels)-1 {
			connector = "└── "
		}
		sb.WriteString("    " + connector + label + "\n")
	}
}

// RenderUnused lists the patterns no project or finished work refers to.
func RenderUnused(t *Tree) string {
	ids := t.Unused()
	if len(ids) == 0 {
		return "Every pattern is in use.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d pattern(s) not used yet:\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&sb, "  %s %s\n", id, t.patterns[id].Title)
	}
	return sb.String()
}
