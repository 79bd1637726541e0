package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fake-editor.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return p
}

func TestEditorCmd(t *testing.T) {
	t.Setenv("EDITOR", "code --wait")
	t.Setenv("VISUAL", "nano")
	assert.Equal(t, []string{"code", "--wait"}, editorCmd())

	t.Setenv("EDITOR", "")
	assert.Equal(t, []string{"nano"}, editorCmd())

	t.Setenv("VISUAL", "")
	assert.Equal(t, []string{"vi"}, editorCmd())
}

func TestEdit_ReturnsSavedContent(t *testing.T) {
	t.Setenv("EDITOR", writeScript(t, `echo "Round 3: sc around" >> "$1"`))

	out, err := Edit([]byte("Round 1\n"), "pattern-*.md")
	require.NoError(t, err)
	assert.Equal(t, "Round 1\nRound 3: sc around\n", string(out))
}

func TestEdit_EditorFails(t *testing.T) {
	t.Setenv("EDITOR", writeScript(t, "exit 3"))

	_, err := Edit([]byte("x"), "pattern-*.md")
	assert.Error(t, err)
}
