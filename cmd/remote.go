package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/stitchbook/internal/backup"
	"github.com/rogersnm/stitchbook/internal/config"
	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/remote"
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Sync backups with a WebDAV server",
}

var remoteSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Configure the WebDAV server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if username != "" && !cmd.Flags().Changed("password") {
			if err := huh.NewInput().
				Title("Password for " + username).
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Run(); err != nil {
				return fmt.Errorf("password prompt cancelled (use --password)")
			}
		}

		cfg.Remote = &config.RemoteConfig{
			URL:      args[0],
			Username: username,
			Password: password,
			Timeout:  timeout,
		}
		if err := config.Save(dataDir, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Remote set to %s\n", args[0])
		return nil
	},
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := cfg.RemoteConfig()
		if rc.URL == "" {
			fmt.Println("Not configured. Run: stitchbook remote set <url>")
			return nil
		}
		timeout := rc.Timeout
		if timeout <= 0 {
			timeout = remote.DefaultTimeout
		}
		fmt.Printf("URL: %s\n", rc.URL)
		fmt.Printf("Username: %s\n", orDash(rc.Username))
		fmt.Printf("Timeout: %s\n", timeout)
		return nil
	},
}

var remoteTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the server is reachable with the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := cfg.RemoteConfig()
		fmt.Printf("Testing %s...\n", rc.URL)
		if err := remote.TestConnection(cmd.Context(), rc); err != nil {
			return err
		}
		fmt.Println("Connected.")
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups on the server, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := remote.ListBackups(cmd.Context(), cfg.RemoteConfig())
		if err != nil {
			return err
		}
		fmt.Println(markdown.RenderBackupTable(entries))
		return nil
	},
}

var remotePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a backup of all records",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := cfg.RemoteConfig()
		doc, err := backup.Export(cmd.Context(), st)
		if err != nil {
			return err
		}
		if err := confirm(cmd, fmt.Sprintf("Upload %d records to %s?", doc.Len(), rc.URL)); err != nil {
			return err
		}
		filename, err := remote.UploadBackup(cmd.Context(), rc, doc)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %s\n", filename)
		return nil
	},
}

var remotePullCmd = &cobra.Command{
	Use:   "pull [filename]",
	Short: "Download a backup and restore it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := cfg.RemoteConfig()
		var filename string
		if len(args) == 1 {
			filename = args[0]
		} else {
			entries, err := remote.ListBackups(cmd.Context(), rc)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no backups found on %s", rc.URL)
			}
			if latest, _ := cmd.Flags().GetBool("latest"); latest {
				filename = entries[0].Filename
			} else {
				opts := make([]huh.Option[string], len(entries))
				for i, e := range entries {
					opts[i] = huh.NewOption(fmt.Sprintf("%s  %s", e.LastMod.Local().Format(time.DateTime), e.Basename), e.Filename)
				}
				if err := huh.NewSelect[string]().
					Title("Select a backup").
					Options(opts...).
					Value(&filename).
					Run(); err != nil {
					return fmt.Errorf("selection cancelled (pass a filename or --latest)")
				}
			}
		}

		doc, err := remote.DownloadBackup(cmd.Context(), rc, filename)
		if err != nil {
			return err
		}
		return applyBackup(cmd, doc, filename)
	},
}

func init() {
	remoteSetCmd.Flags().StringP("username", "u", "", "username")
	remoteSetCmd.Flags().StringP("password", "p", "", "password (prompted when omitted with --username)")
	remoteSetCmd.Flags().Duration("timeout", 0, "request timeout (default 30s)")
	remotePushCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	remotePullCmd.Flags().Bool("latest", false, "restore the most recent backup")
	remotePullCmd.Flags().BoolP("force", "f", false, "overwrite existing records without asking")
	remotePullCmd.Flags().Bool("dry-run", false, "only show what would change")

	remoteCmd.AddCommand(remoteSetCmd)
	remoteCmd.AddCommand(remoteStatusCmd)
	remoteCmd.AddCommand(remoteTestCmd)
	remoteCmd.AddCommand(remoteListCmd)
	remoteCmd.AddCommand(remotePushCmd)
	remoteCmd.AddCommand(remotePullCmd)
	rootCmd.AddCommand(remoteCmd)
}
