package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/stitchbook/internal/model"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	planStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	inProgStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func StatusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.StatusInProgress:
		return inProgStyle
	case model.StatusPaused:
		return pausedStyle
	case model.StatusCompleted:
		return completedStyle
	default:
		return planStyle
	}
}

func RenderStatus(status model.Status) string {
	return StatusStyle(status).Render(string(status))
}

// RenderScale draws a 1..5 value such as difficulty or rating as stars.
func RenderScale(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// RenderProgress draws a ten-cell bar followed by the percentage.
func RenderProgress(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %d%%", pct)
}

// RenderSwatch shows a small block in the yarn's color when the value is a
// hex color the terminal can display, followed by the value itself.
func RenderSwatch(colorValue string) string {
	if !strings.HasPrefix(colorValue, "#") {
		return colorValue
	}
	block := lipgloss.NewStyle().Background(lipgloss.Color(colorValue)).Render("  ")
	return block + " " + colorValue
}

// RenderMuted is used for placeholders such as a dangling pattern reference.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

func RenderField(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func RenderEntityHeader(title string, fields []string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  " + f + "\n")
	}
	return sb.String()
}
