package cmd

import (
	"fmt"

	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search across all collections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetStringSlice("in")
		only := make(map[model.Collection]bool)
		for _, name := range in {
			c, err := model.ParseCollection(name)
			if err != nil {
				return err
			}
			only[c] = true
		}

		results, err := st.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(only) > 0 {
			var kept []store.SearchResult
			for _, r := range results {
				if only[r.Collection] {
					kept = append(kept, r)
				}
			}
			results = kept
		}
		fmt.Println(markdown.RenderSearchTable(results))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many records each collection holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := st.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(markdown.RenderEntityHeader("Stitchbook", []string{
			markdown.RenderField("Patterns", fmt.Sprint(s.Patterns)),
			markdown.RenderField("Projects", fmt.Sprint(s.Projects)),
			markdown.RenderField("Yarns", fmt.Sprint(s.Yarns)),
			markdown.RenderField("Finished works", fmt.Sprint(s.Finished)),
			markdown.RenderField("Database", st.Path()),
		}))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSlice("in", nil, "only search these collections (patterns, projects, yarns, finished_works)")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
}
