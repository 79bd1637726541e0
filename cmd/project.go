package cmd

import (
	"context"
	"fmt"

	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects in progress",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start a project; notes are read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		start, _ := cmd.Flags().GetString("start")
		patternID, _ := cmd.Flags().GetString("pattern")
		progress, _ := cmd.Flags().GetInt("progress")

		if start == "" {
			start = today()
		}
		if err := validateDate("start date", start); err != nil {
			return err
		}
		p, err := st.Projects().Insert(cmd.Context(), &model.Project{
			Name:      args[0],
			Status:    model.Status(status),
			StartDate: start,
			PatternID: patternID,
			Progress:  progress,
			Notes:     readStdin(),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added project %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		projects, err := st.Projects().ListAll(cmd.Context())
		if err != nil {
			return err
		}
		if status != "" {
			var filtered []*model.Project
			for _, p := range projects {
				if string(p.Status) == status {
					filtered = append(filtered, p)
				}
			}
			projects = filtered
		}
		titles, err := patternTitles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(markdown.RenderProjectTable(projects, titles))
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Projects().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		pattern, err := describePattern(cmd.Context(), p.PatternID)
		if err != nil {
			return err
		}
		fields := []string{
			markdown.RenderField("ID", p.ID),
			markdown.RenderField("Status", markdown.RenderStatus(p.Status)),
			markdown.RenderField("Progress", markdown.RenderProgress(p.Progress)),
			markdown.RenderField("Started", orDash(p.StartDate)),
			markdown.RenderField("Pattern", pattern),
			markdown.RenderField("Created", formatTimestamp(p.CreatedAt)),
			markdown.RenderField("Updated", formatTimestamp(p.UpdatedAt)),
		}
		fmt.Print(markdown.RenderEntityHeader(p.Name, fields))
		if p.Notes != "" {
			fmt.Println()
			fmt.Println(p.Notes)
		}
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project; notes are replaced from stdin when piped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Projects().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("name") {
			p.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			p.Status = model.Status(s)
		}
		if cmd.Flags().Changed("start") {
			p.StartDate, _ = cmd.Flags().GetString("start")
			if err := validateDate("start date", p.StartDate); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("pattern") {
			p.PatternID, _ = cmd.Flags().GetString("pattern")
		}
		if cmd.Flags().Changed("progress") {
			p.Progress, _ = cmd.Flags().GetInt("progress")
		}
		if notes := readStdin(); notes != "" {
			p.Notes = notes
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if _, err := st.Projects().Upsert(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Printf("Updated project %s\n", p.ID)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.Projects().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := confirm(cmd, fmt.Sprintf("Delete project %s (%s)?", p.Name, p.ID)); err != nil {
			return err
		}
		if err := st.Projects().DeleteByID(cmd.Context(), p.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s\n", p.ID)
		return nil
	},
}

// patternTitles maps every pattern id to its title for list views.
func patternTitles(ctx context.Context) (map[string]string, error) {
	patterns, err := st.Patterns().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(patterns))
	for _, p := range patterns {
		titles[p.ID] = p.Title
	}
	return titles, nil
}

// describePattern follows a weak pattern reference for display.
func describePattern(ctx context.Context, patternID string) (string, error) {
	if patternID == "" {
		return "-", nil
	}
	p, found, err := st.ResolvePattern(ctx, patternID)
	if err != nil {
		return "", err
	}
	if !found {
		return markdown.RenderMuted(fmt.Sprintf("%s (pattern not found)", patternID)), nil
	}
	return fmt.Sprintf("%s (%s)", p.Title, p.ID), nil
}

func init() {
	projectAddCmd.Flags().StringP("status", "s", string(model.StatusPlan), "status (plan, in-progress, paused, completed)")
	projectAddCmd.Flags().String("start", "", "start date YYYY-MM-DD (default today)")
	projectAddCmd.Flags().StringP("pattern", "p", "", "pattern ID")
	projectAddCmd.Flags().Int("progress", 0, "progress percentage 0-100")
	projectListCmd.Flags().StringP("status", "s", "", "filter by status")
	projectUpdateCmd.Flags().String("name", "", "new name")
	projectUpdateCmd.Flags().StringP("status", "s", "", "new status")
	projectUpdateCmd.Flags().String("start", "", "new start date YYYY-MM-DD")
	projectUpdateCmd.Flags().StringP("pattern", "p", "", "pattern ID (empty to clear)")
	projectUpdateCmd.Flags().Int("progress", 0, "progress percentage 0-100")
	projectDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
