package cmd

import (
	"fmt"
	"os"

	"github.com/rogersnm/stitchbook/internal/config"
	"github.com/rogersnm/stitchbook/internal/datadir"
	"github.com/rogersnm/stitchbook/internal/lineage"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show patterns with the projects and finished works made from them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		patterns, err := st.Patterns().ListAll(ctx)
		if err != nil {
			return err
		}
		projects, err := st.Projects().ListAll(ctx)
		if err != nil {
			return err
		}
		finished, err := st.Finished().ListAll(ctx)
		if err != nil {
			return err
		}

		t := lineage.Build(patterns, projects, finished)
		fmt.Print(lineage.RenderASCII(t))
		if unused, _ := cmd.Flags().GetBool("unused"); unused {
			fmt.Println()
			fmt.Print(lineage.RenderUnused(t))
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a catalog in the current directory",
	Long:  "Creates a .stitchbook directory here. Commands run from this directory or below use it instead of ~/.stitchbook.",
	Args:  cobra.NoArgs,
	// the catalog does not exist yet, so skip the root setup
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		path, err := datadir.Init(dir)
		if err != nil {
			return fmt.Errorf("creating catalog: %w", err)
		}
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		s, err := store.Open(c.DatabasePath(path))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		s.Close()
		fmt.Printf("Initialized catalog in %s\n", path)
		return nil
	},
}

func init() {
	treeCmd.Flags().Bool("unused", false, "also list patterns with no projects or finished works")
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(initCmd)
}
