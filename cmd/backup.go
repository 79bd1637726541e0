package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import JSON backups",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all records to a backup file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		doc, err := backup.Export(cmd.Context(), st)
		if err != nil {
			return err
		}
		if out == "-" {
			return backup.Encode(os.Stdout, doc)
		}
		if out == "" {
			out = backup.LocalFileName(time.Now())
		}
		if err := backup.WriteFile(out, doc); err != nil {
			return err
		}
		fmt.Printf("Exported %d records to %s\n", doc.Len(), out)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Restore records from a backup file",
	Long: `Restore records from a backup file.

Records are matched by id: existing records are replaced, new ones are
added and records missing from the backup are kept. A preview of the
changes is shown first; overwriting existing records asks for
confirmation unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := backup.ReadFile(args[0])
		if err != nil {
			return err
		}
		return applyBackup(cmd, doc, args[0])
	},
}

// applyBackup previews doc against the store, asks before overwriting and
// imports it. Records that fail are saved to a retry file.
func applyBackup(cmd *cobra.Command, doc *backup.Document, source string) error {
	ctx := cmd.Context()
	diff, err := backup.DryRun(ctx, st, doc)
	if err != nil {
		return err
	}
	added, overwritten, invalid := diff.Totals()
	fmt.Println(markdown.RenderDiffTable(diff))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Println("Dry run, nothing was written.")
		return nil
	}
	if added+overwritten+invalid == 0 {
		fmt.Println("Backup is empty, nothing to import.")
		return nil
	}
	if overwritten > 0 {
		if err := confirm(cmd, fmt.Sprintf("Overwrite %d existing records with the versions from %s?", overwritten, source)); err != nil {
			return err
		}
	}

	res, err := backup.Import(ctx, st, doc)
	if res != nil {
		fmt.Printf("Imported %d records from %s\n", res.Written, source)
	}
	if err != nil && res != nil && !res.OK() {
		for _, f := range res.Failures {
			fmt.Printf("  failed: %v\n", f)
		}
		retryPath := filepath.Join(dataDir, backup.FilePrefix+"_retry.json")
		if werr := backup.WriteFile(retryPath, res.Retry(doc)); werr != nil {
			log.WithError(werr).Warn("could not save retry file")
		} else {
			fmt.Printf("Failed records saved to %s\n", retryPath)
		}
	}
	return err
}

func init() {
	backupExportCmd.Flags().StringP("out", "o", "", "output path, or - for stdout (default crochet_backup_<date>.json)")
	backupImportCmd.Flags().BoolP("force", "f", false, "overwrite existing records without asking")
	backupImportCmd.Flags().Bool("dry-run", false, "only show what would change")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}
