//go:build integration

package remote

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests run against a live WebDAV server.
// Set STITCHBOOK_TEST_WEBDAV_URL (and optionally _USER / _PASSWORD).
//
// Run: go test -tags integration ./internal/remote/ -v

func liveConfig(t *testing.T) Config {
	t.Helper()
	url := os.Getenv("STITCHBOOK_TEST_WEBDAV_URL")
	if url == "" {
		t.Skip("STITCHBOOK_TEST_WEBDAV_URL not set, skipping integration tests")
	}
	return Config{
		URL:      url,
		Username: os.Getenv("STITCHBOOK_TEST_WEBDAV_USER"),
		Password: os.Getenv("STITCHBOOK_TEST_WEBDAV_PASSWORD"),
	}
}

func TestLive_RoundTrip(t *testing.T) {
	cfg := liveConfig(t)
	ctx := context.Background()

	require.NoError(t, TestConnection(ctx, cfg))

	doc := sampleDoc()
	filename, err := UploadBackup(ctx, cfg, doc)
	require.NoError(t, err)

	entries, err := ListBackups(ctx, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var found bool
	for _, e := range entries {
		if e.Filename == filename {
			found = true
		}
	}
	require.True(t, found, "uploaded %s not listed", filename)

	got, err := DownloadBackup(ctx, cfg, filename)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}
