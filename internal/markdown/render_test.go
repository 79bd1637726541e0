package markdown

import (
	"testing"
	"time"

	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/remote"
	"github.com/stretchr/testify/assert"
)

func TestRenderScale(t *testing.T) {
	assert.Equal(t, "★★☆☆☆", RenderScale(2))
	assert.Equal(t, "☆☆☆☆☆", RenderScale(-1))
	assert.Equal(t, "★★★★★", RenderScale(9))
}

func TestRenderProgress(t *testing.T) {
	assert.Equal(t, "████░░░░░░ 40%", RenderProgress(40))
	assert.Equal(t, "░░░░░░░░░░ 0%", RenderProgress(-5))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "250.5 g", FormatQuantity(250.5, model.UnitGrams))
	assert.Equal(t, "3 balls", FormatQuantity(3, model.UnitBalls))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "2.0 KB", FormatSize(2048))
	assert.Equal(t, "1.5 MB", FormatSize(3<<19))
}

func TestEmptyTables(t *testing.T) {
	assert.Equal(t, "No patterns found.", RenderPatternTable(nil))
	assert.Equal(t, "No projects found.", RenderProjectTable(nil, nil))
	assert.Equal(t, "No yarn found.", RenderYarnTable(nil))
	assert.Equal(t, "No finished works found.", RenderFinishedTable(nil, nil))
	assert.Equal(t, "No backups found.", RenderBackupTable(nil))
	assert.Equal(t, "No results found.", RenderSearchTable(nil))
}

func TestRenderProjectTable_DanglingPattern(t *testing.T) {
	out := RenderProjectTable([]*model.Project{
		{Meta: model.Meta{ID: "pr1"}, Name: "Blanket", Status: model.StatusPlan, PatternID: "p1"},
		{Meta: model.Meta{ID: "pr2"}, Name: "Scarf", Status: model.StatusPaused, PatternID: "gone"},
	}, map[string]string{"p1": "Granny Square"})
	assert.Contains(t, out, "Granny Square")
	assert.Contains(t, out, "(pattern not found)")
}

func TestRenderBackupTable(t *testing.T) {
	out := RenderBackupTable([]remote.BackupEntry{
		{Basename: "crochet_backup_2026-10-18T09-30-15-123Z.json", LastMod: time.Now(), Size: 2048},
	})
	assert.Contains(t, out, "crochet_backup_2026-10-18T09-30-15-123Z.json")
	assert.Contains(t, out, "2.0 KB")
}

func TestRenderDiffTable(t *testing.T) {
	out := RenderDiffTable(&backup.Diff{Collections: []backup.CollectionDiff{
		{Collection: model.Patterns, Added: []string{"a", "b"}, Overwritten: []string{"c"}},
	}})
	assert.Contains(t, out, "patterns")
	assert.Contains(t, out, "Overwrite")
}

func TestRenderSwatch(t *testing.T) {
	assert.Equal(t, "rose", RenderSwatch("rose"))
	assert.Contains(t, RenderSwatch("#e8a0b4"), "#e8a0b4")
}
