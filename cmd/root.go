package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/rogersnm/stitchbook/internal/config"
	"github.com/rogersnm/stitchbook/internal/datadir"
	"github.com/rogersnm/stitchbook/internal/logging"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	dataDir string
	st      *store.Store
	cfg     *config.Config
	log     = logging.NewLogger("cmd")
)

func defaultDataDir() string {
	cwd, _ := os.Getwd()
	return datadir.Default(cwd)
}

var rootCmd = &cobra.Command{
	Use:     "stitchbook",
	Short:   "Crochet patterns, projects, yarn stash and finished works",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := logging.Configure(cfg.Logging); err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}

		if st == nil {
			st, err = store.Open(cfg.DatabasePath(dataDir))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
		}
		log.WithField("data_dir", dataDir).Debug("ready")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory path")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"pattern add": {
				Stdin: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "Pattern instructions",
				},
				Examples: []mtp.Example{
					{Description: "Add a pattern", Command: "stitchbook pattern add \"Granny Square\" --category HomeDecor --difficulty 2 --hook 4mm"},
					{Description: "Add a pattern with piped instructions and a photo", Command: "cat granny.md | stitchbook pattern add \"Granny Square\" --image granny.jpg"},
				},
			},
			"pattern list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of patterns with ID, title, category, difficulty and hook size",
				},
				Examples: []mtp.Example{
					{Description: "List amigurumi patterns", Command: "stitchbook pattern list --filter amigurumi"},
				},
			},
			"pattern edit": {
				Examples: []mtp.Example{
					{Description: "Edit a pattern in $EDITOR", Command: "stitchbook pattern edit 7c9e6679-7425-40de-944b-e07fc1f90ae7"},
				},
			},
			"pattern delete": {
				Examples: []mtp.Example{
					{Description: "Delete a pattern (interactive confirm)", Command: "stitchbook pattern delete 7c9e6679-7425-40de-944b-e07fc1f90ae7"},
					{Description: "Delete a pattern (skip confirm)", Command: "stitchbook pattern delete 7c9e6679-7425-40de-944b-e07fc1f90ae7 --force"},
				},
			},
			"project add": {
				Examples: []mtp.Example{
					{Description: "Start a project from a pattern", Command: "stitchbook project add \"Sofa blanket\" --pattern 7c9e6679-7425-40de-944b-e07fc1f90ae7 --status in-progress"},
				},
			},
			"project update": {
				Examples: []mtp.Example{
					{Description: "Record progress", Command: "stitchbook project update 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --progress 60"},
				},
			},
			"yarn add": {
				Examples: []mtp.Example{
					{Description: "Add yarn to the stash", Command: "stitchbook yarn add --brand Drops --color Rose --color-value '#e8a0b4' --stock 250 --unit g"},
				},
			},
			"finished add": {
				Examples: []mtp.Example{
					{Description: "Record a finished work", Command: "stitchbook finished add \"Coaster\" --rating 4 --completed 2026-08-12"},
				},
			},
			"search": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Matching records with collection, ID, title and snippet",
				},
				Examples: []mtp.Example{
					{Description: "Search across all collections", Command: "stitchbook search \"granny\""},
				},
			},
			"backup export": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Path of the written backup file",
				},
				Examples: []mtp.Example{
					{Description: "Export to the default file name", Command: "stitchbook backup export"},
					{Description: "Export to stdout", Command: "stitchbook backup export --out -"},
				},
			},
			"backup import": {
				Examples: []mtp.Example{
					{Description: "Preview an import", Command: "stitchbook backup import crochet_backup_2026-10-18.json --dry-run"},
					{Description: "Import without confirmation", Command: "stitchbook backup import crochet_backup_2026-10-18.json --force"},
				},
			},
			"remote set": {
				Examples: []mtp.Example{
					{Description: "Configure a WebDAV server", Command: "stitchbook remote set https://dav.example.com/crochet --username alice --password secret"},
				},
			},
			"tree": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Patterns with the projects and finished works made from them",
				},
			},
			"init": {
				Examples: []mtp.Example{
					{Description: "Keep a separate catalog for the current folder", Command: "stitchbook init"},
				},
			},
			"remote list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of remote backups, most recent first",
				},
			},
			"remote pull": {
				Examples: []mtp.Example{
					{Description: "Restore the most recent remote backup", Command: "stitchbook remote pull --latest"},
					{Description: "Restore a named backup", Command: "stitchbook remote pull crochet_backup_2026-10-18T09-30-15-123Z.json --force"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

// Execute runs the CLI. Interrupts cancel the command context, which
// aborts remote requests in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() {
		if st != nil {
			st.Close()
			st = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
