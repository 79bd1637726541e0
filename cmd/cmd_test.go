package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/config"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/remote"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

func setupEnv(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "stitchbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		st = nil
	})
	dataDir = dir
	st = s
	cfg = &config.Config{}
	return s, dir
}

// resetFlags clears flag values left over from earlier runs; cobra keeps
// them on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

// captureStdout returns what fn prints; commands write with fmt.Print.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()
	defer func() { os.Stdout = orig }()
	fn()
	w.Close()
	return <-done
}

func newDAVServer(t *testing.T) string {
	t.Helper()
	dav := &webdav.Handler{FileSystem: webdav.Dir(t.TempDir()), LockSystem: webdav.NewMemLS()}
	srv := httptest.NewServer(dav)
	t.Cleanup(srv.Close)
	return srv.URL
}

// --- patterns ---

func TestPatternAdd_Success(t *testing.T) {
	s, _ := setupEnv(t)
	require.NoError(t, run(t, "pattern", "add", "Granny Square", "--category", "HomeDecor", "--difficulty", "2", "--hook", "4mm", "--tags", "motif,blanket"))

	patterns, err := s.Patterns().ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, "Granny Square", patterns[0].Title)
	assert.Equal(t, model.CategoryHomeDecor, patterns[0].Category)
	assert.Equal(t, []string{"motif", "blanket"}, patterns[0].Tags)
}

func TestPatternAdd_InvalidCategory(t *testing.T) {
	s, _ := setupEnv(t)
	assert.Error(t, run(t, "pattern", "add", "X", "--category", "Socks"))

	n, err := s.Patterns().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPatternAdd_WithImage(t *testing.T) {
	s, dir := setupEnv(t)
	img := filepath.Join(dir, "granny.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nfake"), 0644))

	require.NoError(t, run(t, "pattern", "add", "Granny Square", "--image", img))

	patterns, err := s.Patterns().ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, patterns[0].Images, 1)
	assert.Regexp(t, `^data:image/png;base64,`, patterns[0].Images[0])
}

func TestPatternAdd_RejectsNonImage(t *testing.T) {
	_, dir := setupEnv(t)
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))
	assert.Error(t, run(t, "pattern", "add", "X", "--image", txt))
}

func TestPatternList_Empty(t *testing.T) {
	setupEnv(t)
	require.NoError(t, run(t, "pattern", "list"))
}

func TestPatternShow_NotFound(t *testing.T) {
	setupEnv(t)
	err := run(t, "pattern", "show", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestPatternShow(t *testing.T) {
	s, _ := setupEnv(t)
	p, err := s.Patterns().Insert(context.Background(), &model.Pattern{
		Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2, Content: "# Round 1\n\nch 4",
	})
	require.NoError(t, err)
	require.NoError(t, run(t, "pattern", "show", p.ID))
	require.NoError(t, run(t, "pattern", "show", p.ID, "--raw"))
}

func TestPatternEdit(t *testing.T) {
	s, dir := setupEnv(t)
	p, err := s.Patterns().Insert(context.Background(), &model.Pattern{
		Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2, Images: []string{"data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)

	script := filepath.Join(dir, "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsed -i 's/^difficulty: 2$/difficulty: 4/' \"$1\"\n"), 0755))
	t.Setenv("EDITOR", script)

	require.NoError(t, run(t, "pattern", "edit", p.ID))

	got, err := s.Patterns().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Difficulty)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)
	assert.Equal(t, p.Images, got.Images)
}

func TestPatternDelete_LeavesDanglingReference(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	p, err := s.Patterns().Insert(ctx, &model.Pattern{Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2})
	require.NoError(t, err)
	pr, err := s.Projects().Insert(ctx, &model.Project{Name: "Blanket", Status: model.StatusPlan, PatternID: p.ID})
	require.NoError(t, err)

	require.NoError(t, run(t, "pattern", "delete", p.ID, "--force"))

	got, err := s.Projects().GetByID(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.PatternID)

	// Rendering a dangling reference is not an error.
	require.NoError(t, run(t, "project", "show", pr.ID))
	require.NoError(t, run(t, "project", "list"))
}

// --- projects ---

func TestProjectAdd_DefaultsStartDate(t *testing.T) {
	s, _ := setupEnv(t)
	require.NoError(t, run(t, "project", "add", "Cardigan"))

	projects, err := s.Projects().ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, model.StatusPlan, projects[0].Status)
	assert.Equal(t, today(), projects[0].StartDate)
}

func TestProjectAdd_InvalidDate(t *testing.T) {
	setupEnv(t)
	assert.Error(t, run(t, "project", "add", "Cardigan", "--start", "18/10/2026"))
}

func TestProjectUpdate(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	p, err := s.Projects().Insert(ctx, &model.Project{Name: "Cardigan", Status: model.StatusPlan, Notes: "keep"})
	require.NoError(t, err)

	require.NoError(t, run(t, "project", "update", p.ID, "--status", "in-progress", "--progress", "30"))

	got, err := s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, 30, got.Progress)
	assert.Equal(t, "keep", got.Notes)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)
}

func TestProjectUpdate_InvalidProgress(t *testing.T) {
	s, _ := setupEnv(t)
	p, err := s.Projects().Insert(context.Background(), &model.Project{Name: "Cardigan", Status: model.StatusPlan})
	require.NoError(t, err)
	assert.Error(t, run(t, "project", "update", p.ID, "--progress", "150"))
}

func TestProjectList_StatusFilter(t *testing.T) {
	s, _ := setupEnv(t)
	_, err := s.Projects().Insert(context.Background(), &model.Project{Name: "A", Status: model.StatusPaused})
	require.NoError(t, err)
	require.NoError(t, run(t, "project", "list", "--status", "paused"))
}

// --- yarn / finished ---

func TestYarnAddAndUse(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	require.NoError(t, run(t, "yarn", "add", "--brand", "Drops", "--color", "Rose", "--stock", "250", "--unit", "g"))

	yarns, err := s.Yarns().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, yarns, 1)

	require.NoError(t, run(t, "yarn", "update", yarns[0].ID, "--use", "50.5"))
	got, err := s.Yarns().GetByID(ctx, yarns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 199.5, got.Stock)

	assert.Error(t, run(t, "yarn", "update", yarns[0].ID, "--use", "500"), "stock cannot go negative")
	assert.Error(t, run(t, "yarn", "update", yarns[0].ID, "--use=-10"))

	got, err = s.Yarns().GetByID(ctx, yarns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 199.5, got.Stock)
}

func TestYarnList_Filter(t *testing.T) {
	s, _ := setupEnv(t)
	_, err := s.Yarns().Insert(context.Background(), &model.Yarn{Brand: "Drops", Unit: model.UnitGrams})
	require.NoError(t, err)
	require.NoError(t, run(t, "yarn", "list", "--filter", "drops"))
}

func TestFinishedAddShowDelete(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	require.NoError(t, run(t, "finished", "add", "Coaster", "--rating", "4", "--completed", "2026-08-12", "--pattern", "missing"))

	works, err := s.Finished().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "2026-08-12", works[0].CompletedDate)

	require.NoError(t, run(t, "finished", "show", works[0].ID))
	require.NoError(t, run(t, "finished", "delete", works[0].ID, "--force"))
	_, err = s.Finished().GetByID(ctx, works[0].ID)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestFinishedUpdate(t *testing.T) {
	s, dir := setupEnv(t)
	ctx := context.Background()
	f, err := s.Finished().Insert(ctx, &model.FinishedWork{Name: "Coaster", Rating: 3, CompletedDate: "2026-08-12", TimeSpent: "2h"})
	require.NoError(t, err)
	require.Empty(t, f.UpdatedAt)

	img := filepath.Join(dir, "coaster.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nfake"), 0644))
	require.NoError(t, run(t, "finished", "update", f.ID, "--name", "Coaster set", "--rating", "5", "--image", img))

	got, err := s.Finished().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coaster set", got.Name)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "2026-08-12", got.CompletedDate)
	assert.Equal(t, "2h", got.TimeSpent)
	require.Len(t, got.Images, 1)
	assert.Regexp(t, `^data:image/png;base64,`, got.Images[0])
	assert.Equal(t, f.CreatedAt, got.CreatedAt)
	assert.NotEmpty(t, got.UpdatedAt)

	assert.Error(t, run(t, "finished", "update", f.ID, "--rating", "9"))
	assert.Error(t, run(t, "finished", "update", f.ID, "--completed", "12/08/2026"))
	assert.Error(t, run(t, "finished", "update", "missing", "--rating", "4"))

	got, err = s.Finished().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
}

func TestSearchAndStats(t *testing.T) {
	s, _ := setupEnv(t)
	_, err := s.Patterns().Insert(context.Background(), &model.Pattern{Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2})
	require.NoError(t, err)
	require.NoError(t, run(t, "search", "granny"))
	require.NoError(t, run(t, "search", "xyznonexistent"))
	require.NoError(t, run(t, "stats"))
}

func TestSearch_InCollection(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	_, err := s.Patterns().Insert(ctx, &model.Pattern{Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2})
	require.NoError(t, err)
	_, err = s.Projects().Insert(ctx, &model.Project{Name: "Granny blanket", Status: model.StatusPlan})
	require.NoError(t, err)

	out := captureStdout(t, func() {
		require.NoError(t, run(t, "search", "granny", "--in", "projects"))
	})
	assert.Contains(t, out, "Granny blanket")
	assert.NotContains(t, out, "Granny Square")

	assert.Error(t, run(t, "search", "granny", "--in", "stash"))
}

func TestStats_ShowsDatabase(t *testing.T) {
	s, _ := setupEnv(t)
	out := captureStdout(t, func() {
		require.NoError(t, run(t, "stats"))
	})
	assert.Contains(t, out, s.Path())
}

// --- backup ---

func TestBackupExportImport(t *testing.T) {
	s, dir := setupEnv(t)
	ctx := context.Background()
	_, err := s.Patterns().Insert(ctx, &model.Pattern{Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2})
	require.NoError(t, err)
	_, err = s.Yarns().Insert(ctx, &model.Yarn{Brand: "Drops", Unit: model.UnitGrams})
	require.NoError(t, err)

	out := filepath.Join(dir, "backup.json")
	require.NoError(t, run(t, "backup", "export", "--out", out))
	doc, err := backup.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Len())

	// Import into a fresh store.
	s2, _ := setupEnv(t)
	require.NoError(t, run(t, "backup", "import", out))
	st2, err := s2.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Stats{Patterns: 1, Yarns: 1}, st2)
}

func TestBackupImport_DryRun(t *testing.T) {
	s, dir := setupEnv(t)
	path := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"timestamp":"x","data":{"patterns":[{"id":"p1","title":"A"}]}}`), 0644))

	require.NoError(t, run(t, "backup", "import", path, "--dry-run"))
	n, err := s.Patterns().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBackupImport_OverwriteNeedsForce(t *testing.T) {
	s, dir := setupEnv(t)
	ctx := context.Background()
	_, err := s.Patterns().Restore(ctx, &model.Pattern{Meta: model.Meta{ID: "p1"}, Title: "Local"})
	require.NoError(t, err)
	path := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"data":{"patterns":[{"id":"p1","title":"Backup"}]}}`), 0644))

	require.NoError(t, run(t, "backup", "import", path, "--force"))
	got, err := s.Patterns().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Backup", got.Title)
}

func TestBackupImport_InvalidFormat(t *testing.T) {
	_, dir := setupEnv(t)
	path := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0644))

	err := run(t, "backup", "import", path)
	assert.True(t, errors.Is(err, backup.ErrInvalidFormat))
}

func TestBackupImport_PartialFailureWritesRetryFile(t *testing.T) {
	s, dir := setupEnv(t)
	path := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"data":{"patterns":[{"id":"p1","title":"A"},{"title":"no id"}]}}`), 0644))

	err := run(t, "backup", "import", path)
	assert.True(t, errors.Is(err, backup.ErrPartialImport))

	n, err := s.Patterns().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	retry, err := backup.ReadFile(filepath.Join(dir, "crochet_backup_retry.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Len())
}

// --- remote ---

func TestRemoteSetAndStatus(t *testing.T) {
	_, dir := setupEnv(t)
	require.NoError(t, run(t, "remote", "set", "https://dav.example.com/crochet", "--username", "alice", "--password", "secret", "--timeout", "10s"))

	c, err := config.Load(dir)
	require.NoError(t, err)
	require.NotNil(t, c.Remote)
	assert.Equal(t, "alice", c.Remote.Username)
	require.NoError(t, run(t, "remote", "status"))
}

func TestRemote_NotConfigured(t *testing.T) {
	setupEnv(t)
	err := run(t, "remote", "test")
	assert.True(t, errors.Is(err, remote.ErrNotConfigured))
}

func TestRemotePushPull(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	url := newDAVServer(t)
	require.NoError(t, run(t, "remote", "set", url))
	require.NoError(t, run(t, "remote", "test"))

	p, err := s.Patterns().Insert(ctx, &model.Pattern{Title: "Granny Square", Category: model.CategoryHomeDecor, Difficulty: 2})
	require.NoError(t, err)
	require.NoError(t, run(t, "remote", "push", "--force"))
	require.NoError(t, run(t, "remote", "list"))

	require.NoError(t, s.Patterns().DeleteByID(ctx, p.ID))
	require.NoError(t, run(t, "remote", "pull", "--latest"))

	got, err := s.Patterns().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestRemoteTest_Unreachable(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	require.NoError(t, run(t, "remote", "set", url))
	err := run(t, "remote", "test")
	assert.True(t, errors.Is(err, remote.ErrConnection))
}

// --- tree / init ---

func TestTree(t *testing.T) {
	s, _ := setupEnv(t)
	ctx := context.Background()
	p, err := s.Patterns().Insert(ctx, &model.Pattern{Title: "Bunny", Category: model.CategoryAmigurumi, Difficulty: 3})
	require.NoError(t, err)
	_, err = s.Projects().Insert(ctx, &model.Project{Name: "Easter bunny", Status: model.StatusInProgress, PatternID: p.ID})
	require.NoError(t, err)
	_, err = s.Finished().Insert(ctx, &model.FinishedWork{Name: "Old bunny", Rating: 4, PatternID: "deleted-pattern"})
	require.NoError(t, err)

	_, err = s.Patterns().Insert(ctx, &model.Pattern{Title: "Market bag", Category: model.CategoryAccessories, Difficulty: 2})
	require.NoError(t, err)

	out := captureStdout(t, func() {
		require.NoError(t, run(t, "tree", "--unused"))
	})
	assert.Contains(t, out, "Easter bunny")
	assert.Contains(t, out, "deleted-pattern (pattern not found)")
	assert.Contains(t, out, "1 pattern(s) not used yet")
	assert.Contains(t, out, "Market bag")
}

func TestTree_Empty(t *testing.T) {
	setupEnv(t)
	require.NoError(t, run(t, "tree"))
}

func TestInit_CreatesLocalCatalog(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, run(t, "init"))

	_, err := os.Stat(filepath.Join(dir, ".stitchbook", "stitchbook.db"))
	assert.NoError(t, err)
}
