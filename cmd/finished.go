package cmd

import (
	"fmt"
	"strconv"

	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/spf13/cobra"
)

var finishedCmd = &cobra.Command{
	Use:     "finished",
	Aliases: []string{"fo"},
	Short:   "Manage finished works",
}

var finishedAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Record a finished work; notes are read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		completed, _ := cmd.Flags().GetString("completed")
		patternID, _ := cmd.Flags().GetString("pattern")
		timeSpent, _ := cmd.Flags().GetString("time")
		rating, _ := cmd.Flags().GetInt("rating")
		imagePaths, _ := cmd.Flags().GetStringSlice("image")

		if completed == "" {
			completed = today()
		}
		if err := validateDate("completed date", completed); err != nil {
			return err
		}
		images, err := imageDataURIs(imagePaths)
		if err != nil {
			return err
		}
		f, err := st.Finished().Insert(cmd.Context(), &model.FinishedWork{
			Name:          args[0],
			CompletedDate: completed,
			PatternID:     patternID,
			TimeSpent:     timeSpent,
			Rating:        rating,
			Notes:         readStdin(),
			Images:        images,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added finished work %s (%s)\n", f.Name, f.ID)
		return nil
	},
}

var finishedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finished works",
	RunE: func(cmd *cobra.Command, args []string) error {
		works, err := st.Finished().ListAll(cmd.Context())
		if err != nil {
			return err
		}
		titles, err := patternTitles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(markdown.RenderFinishedTable(works, titles))
		return nil
	},
}

var finishedShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a finished work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := st.Finished().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		pattern, err := describePattern(cmd.Context(), f.PatternID)
		if err != nil {
			return err
		}
		fields := []string{
			markdown.RenderField("ID", f.ID),
			markdown.RenderField("Completed", orDash(f.CompletedDate)),
			markdown.RenderField("Rating", markdown.RenderScale(f.Rating)),
			markdown.RenderField("Time spent", orDash(f.TimeSpent)),
			markdown.RenderField("Pattern", pattern),
			markdown.RenderField("Images", strconv.Itoa(len(f.Images))),
			markdown.RenderField("Created", formatTimestamp(f.CreatedAt)),
			markdown.RenderField("Updated", formatTimestamp(f.UpdatedAt)),
		}
		fmt.Print(markdown.RenderEntityHeader(f.Name, fields))
		if f.Notes != "" {
			fmt.Println()
			fmt.Println(f.Notes)
		}
		return nil
	},
}

var finishedUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a finished work; notes are replaced from stdin when piped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := st.Finished().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			f.Name, _ = flags.GetString("name")
		}
		if flags.Changed("completed") {
			f.CompletedDate, _ = flags.GetString("completed")
			if err := validateDate("completed date", f.CompletedDate); err != nil {
				return err
			}
		}
		if flags.Changed("pattern") {
			f.PatternID, _ = flags.GetString("pattern")
		}
		if flags.Changed("time") {
			f.TimeSpent, _ = flags.GetString("time")
		}
		if flags.Changed("rating") {
			f.Rating, _ = flags.GetInt("rating")
		}
		if flags.Changed("image") {
			paths, _ := flags.GetStringSlice("image")
			images, err := imageDataURIs(paths)
			if err != nil {
				return err
			}
			f.Images = append(f.Images, images...)
		}
		if notes := readStdin(); notes != "" {
			f.Notes = notes
		}
		if err := f.Validate(); err != nil {
			return err
		}
		if _, err := st.Finished().Upsert(cmd.Context(), f); err != nil {
			return err
		}
		fmt.Printf("Updated finished work %s\n", f.ID)
		return nil
	},
}

var finishedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a finished work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := st.Finished().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := confirm(cmd, fmt.Sprintf("Delete finished work %s (%s)?", f.Name, f.ID)); err != nil {
			return err
		}
		if err := st.Finished().DeleteByID(cmd.Context(), f.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted finished work %s\n", f.ID)
		return nil
	},
}

func init() {
	finishedAddCmd.Flags().String("completed", "", "completion date YYYY-MM-DD (default today)")
	finishedAddCmd.Flags().StringP("pattern", "p", "", "pattern ID")
	finishedAddCmd.Flags().String("time", "", "time spent, e.g. 12h")
	finishedAddCmd.Flags().IntP("rating", "r", 5, "rating 1-5")
	finishedAddCmd.Flags().StringSlice("image", nil, "image file to embed (repeatable)")
	finishedUpdateCmd.Flags().String("name", "", "new name")
	finishedUpdateCmd.Flags().String("completed", "", "new completion date YYYY-MM-DD")
	finishedUpdateCmd.Flags().StringP("pattern", "p", "", "pattern ID (empty to clear)")
	finishedUpdateCmd.Flags().String("time", "", "time spent, e.g. 12h")
	finishedUpdateCmd.Flags().IntP("rating", "r", 0, "rating 1-5")
	finishedUpdateCmd.Flags().StringSlice("image", nil, "image file to add (repeatable)")
	finishedDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	finishedCmd.AddCommand(finishedAddCmd)
	finishedCmd.AddCommand(finishedListCmd)
	finishedCmd.AddCommand(finishedShowCmd)
	finishedCmd.AddCommand(finishedUpdateCmd)
	finishedCmd.AddCommand(finishedDeleteCmd)
	rootCmd.AddCommand(finishedCmd)
}
