package markdown

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/remote"
	"github.com/rogersnm/stitchbook/internal/store"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
)

func RenderPatternTable(patterns []*model.Pattern) string {
	if len(patterns) == 0 {
		return "No patterns found."
	}
	rows := make([][]string, len(patterns))
	for i, p := range patterns {
		rows[i] = []string{p.ID, p.Title, string(p.Category), RenderScale(p.Difficulty), p.HookSize}
	}
	return renderTable([]string{"ID", "Title", "Category", "Difficulty", "Hook"}, rows)
}

// RenderProjectTable lists projects; patternTitles maps pattern ids to
// titles for the weak reference column.
func RenderProjectTable(projects []*model.Project, patternTitles map[string]string) string {
	if len(projects) == 0 {
		return "No projects found."
	}
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{p.ID, p.Name, RenderStatus(p.Status), RenderProgress(p.Progress), patternCell(p.PatternID, patternTitles)}
	}
	return renderTable([]string{"ID", "Name", "Status", "Progress", "Pattern"}, rows)
}

func RenderYarnTable(yarns []*model.Yarn) string {
	if len(yarns) == 0 {
		return "No yarn found."
	}
	rows := make([][]string, len(yarns))
	for i, y := range yarns {
		rows[i] = []string{y.ID, store.YarnLabel(y), RenderSwatch(y.ColorValue), y.Weight, FormatQuantity(y.Stock, y.Unit)}
	}
	return renderTable([]string{"ID", "Yarn", "Color", "Weight", "Stock"}, rows)
}

func RenderFinishedTable(works []*model.FinishedWork, patternTitles map[string]string) string {
	if len(works) == 0 {
		return "No finished works found."
	}
	rows := make([][]string, len(works))
	for i, f := range works {
		rows[i] = []string{f.ID, f.Name, f.CompletedDate, RenderScale(f.Rating), patternCell(f.PatternID, patternTitles)}
	}
	return renderTable([]string{"ID", "Name", "Completed", "Rating", "Pattern"}, rows)
}

func RenderBackupTable(entries []remote.BackupEntry) string {
	if len(entries) == 0 {
		return "No backups found."
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Basename, e.LastMod.Local().Format("2006-01-02 15:04"), FormatSize(e.Size)}
	}
	return renderTable([]string{"File", "Modified", "Size"}, rows)
}

func RenderSearchTable(results []store.SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{string(r.Collection), r.ID, r.Title, r.Snippet}
	}
	return renderTable([]string{"Kind", "ID", "Title", "Match"}, rows)
}

// RenderDiffTable summarizes a dry-run import per collection.
func RenderDiffTable(d *backup.Diff) string {
	rows := make([][]string, len(d.Collections))
	for i, c := range d.Collections {
		rows[i] = []string{string(c.Collection), strconv.Itoa(len(c.Added)), strconv.Itoa(len(c.Overwritten)), strconv.Itoa(c.Invalid)}
	}
	return renderTable([]string{"Collection", "Add", "Overwrite", "Invalid"}, rows)
}

func patternCell(patternID string, titles map[string]string) string {
	if patternID == "" {
		return ""
	}
	if title, ok := titles[patternID]; ok {
		return title
	}
	return RenderMuted("(pattern not found)")
}

// FormatQuantity prints a stock amount without trailing zeros.
func FormatQuantity(v float64, unit model.Unit) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + string(unit)
}

func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			return cellStyle
		})
	return t.Render()
}
