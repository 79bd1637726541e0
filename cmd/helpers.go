package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/spf13/cobra"
)

func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil {
		return ""
	}
	// Only read if stdin is explicitly a pipe (not a terminal, not a socket)
	if info.Mode()&os.ModeNamedPipe == 0 && info.Size() == 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// confirm asks a yes/no question unless --force was given.
func confirm(cmd *cobra.Command, title string) error {
	if force, _ := cmd.Flags().GetBool("force"); force {
		return nil
	}
	var ok bool
	if err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run(); err != nil {
		return fmt.Errorf("confirmation cancelled (use --force to skip)")
	}
	if !ok {
		return fmt.Errorf("cancelled")
	}
	return nil
}

// imageDataURIs reads image files and embeds them as data URIs, the form
// records keep their photos in.
func imageDataURIs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if mediaType == "" {
			mediaType = http.DetectContentType(data)
		}
		if !strings.HasPrefix(mediaType, "image/") {
			return nil, fmt.Errorf("%s is not an image (%s)", p, mediaType)
		}
		out = append(out, "data:"+mediaType+";base64,"+base64.StdEncoding.EncodeToString(data))
	}
	return out, nil
}

func today() string {
	return time.Now().Format(model.DateLayout)
}

func validateDate(field, s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("%s must be YYYY-MM-DD, got %q", field, s)
	}
	return nil
}

// formatTimestamp shows a stored timestamp in local time, or the raw value
// if it does not parse.
func formatTimestamp(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := model.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
