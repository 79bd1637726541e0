package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rogersnm/stitchbook/internal/editor"
	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
)

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Manage patterns",
}

var patternAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a pattern; instructions are read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		hook, _ := cmd.Flags().GetString("hook")
		tags, _ := cmd.Flags().GetStringSlice("tags")
		note, _ := cmd.Flags().GetString("note")
		imagePaths, _ := cmd.Flags().GetStringSlice("image")

		images, err := imageDataURIs(imagePaths)
		if err != nil {
			return err
		}
		p, err := st.Patterns().Insert(cmd.Context(), &model.Pattern{
			Title:      args[0],
			Category:   model.Category(category),
			Difficulty: difficulty,
			HookSize:   hook,
			Tags:       tags,
			Content:    readStdin(),
			Note:       note,
			Images:     images,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added pattern %s (%s)\n", p.Title, p.ID)
		return nil
	},
}

var patternListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		patterns, err := st.Patterns().ListAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(markdown.RenderPatternTable(store.FilterPatterns(patterns, filter)))
		return nil
	},
}

var patternShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a pattern with its instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Patterns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			data, err := markdown.MarshalPattern(p)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}

		usage, err := st.PatternUsage(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		fields := []string{
			markdown.RenderField("ID", p.ID),
			markdown.RenderField("Category", string(p.Category)),
			markdown.RenderField("Difficulty", markdown.RenderScale(p.Difficulty)),
			markdown.RenderField("Hook", orDash(p.HookSize)),
			markdown.RenderField("Tags", orDash(strings.Join(p.Tags, ", "))),
			markdown.RenderField("Images", strconv.Itoa(len(p.Images))),
			markdown.RenderField("Created", formatTimestamp(p.CreatedAt)),
			markdown.RenderField("Updated", formatTimestamp(p.UpdatedAt)),
		}
		if p.Note != "" {
			fields = append(fields, markdown.RenderField("Note", p.Note))
		}
		for _, pr := range usage.Projects {
			fields = append(fields, markdown.RenderField("Project", fmt.Sprintf("%s (%s, %s)", pr.Name, pr.ID, pr.Status)))
		}
		for _, f := range usage.Finished {
			fields = append(fields, markdown.RenderField("Finished", fmt.Sprintf("%s (%s)", f.Name, f.ID)))
		}
		fmt.Print(markdown.RenderEntityHeader(p.Title, fields))
		if p.Content != "" {
			rendered, err := markdown.RenderMarkdown(p.Content)
			if err != nil {
				return err
			}
			fmt.Print(rendered)
		}
		return nil
	},
}

var patternEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a pattern in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Patterns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := markdown.MarshalPattern(p)
		if err != nil {
			return err
		}
		edited, err := editor.Edit(data, "stitchbook-pattern-*.md")
		if err != nil {
			return err
		}
		if bytes.Equal(edited, data) {
			fmt.Println("No changes.")
			return nil
		}
		updated, err := markdown.ParsePattern(bytes.NewReader(edited), p)
		if err != nil {
			return err
		}
		if _, err := st.Patterns().Upsert(cmd.Context(), updated); err != nil {
			return err
		}
		fmt.Printf("Updated pattern %s\n", updated.ID)
		return nil
	},
}

var patternDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pattern; projects and finished works keep their reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Patterns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		usage, err := st.PatternUsage(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Pattern: %s (%s), used by %d projects and %d finished works\n",
			p.Title, p.ID, len(usage.Projects), len(usage.Finished))

		if err := confirm(cmd, fmt.Sprintf("Delete pattern %s?", p.ID)); err != nil {
			return err
		}
		if err := st.Patterns().DeleteByID(cmd.Context(), p.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted pattern %s\n", p.ID)
		return nil
	},
}

func init() {
	patternAddCmd.Flags().StringP("category", "c", string(model.CategoryOther), "category (Amigurumi, Clothing, HomeDecor, Accessories, Other)")
	patternAddCmd.Flags().IntP("difficulty", "d", 1, "difficulty 1-5")
	patternAddCmd.Flags().String("hook", "", "hook size, e.g. 4mm")
	patternAddCmd.Flags().StringSliceP("tags", "t", nil, "comma-separated tags")
	patternAddCmd.Flags().String("note", "", "short note")
	patternAddCmd.Flags().StringSlice("image", nil, "image file to embed (repeatable)")
	patternListCmd.Flags().StringP("filter", "q", "", "filter by title or category")
	patternShowCmd.Flags().Bool("raw", false, "output the editable markdown (no ANSI styling)")
	patternDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	patternCmd.AddCommand(patternAddCmd)
	patternCmd.AddCommand(patternListCmd)
	patternCmd.AddCommand(patternShowCmd)
	patternCmd.AddCommand(patternEditCmd)
	patternCmd.AddCommand(patternDeleteCmd)
	rootCmd.AddCommand(patternCmd)
}
