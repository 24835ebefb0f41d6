package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iammorganparry/clive/apps/tasks/internal/client"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusWIP      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusPending  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	busyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Italic(true)
	subtaskBullet  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Render("•")
	errorMessage   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func statusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.TaskStatusCompleted:
		return statusDone
	case models.TaskStatusInProgress:
		return statusWIP
	default:
		return statusPending
	}
}

func newTasksCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := client.New(serverURL(cmd)).ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			renderTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var description string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "suggest <title>",
		Short: "Suggest subtasks for a task title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			subtasks, err := client.New(serverURL(cmd)).Suggest(cmd.Context(), title, description)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorMessage.Render(err.Error()))
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models.SuggestResponse{Subtasks: subtasks})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(title))
			for _, s := range subtasks {
				fmt.Fprintf(out, "  %s %s\n", subtaskBullet, s)
			}
			fmt.Fprintln(out, successMessage.Render("Subtasks generated successfully"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional task description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func renderTasks(w io.Writer, tasks []models.BoardTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks."))
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("%s  %s", titleStyle.Render(t.Title), statusStyle(t.Status).Render(string(t.Status)))
		if t.Pending {
			line += "  " + busyStyle.Render("generating…")
		}
		fmt.Fprintln(w, line)
		if t.Description != "" {
			fmt.Fprintln(w, "  "+t.Description)
		}
		if t.DueDate != "" {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  %s: %s", t.DueLabel, t.DueDate)))
		}
		for _, s := range t.Subtasks {
			fmt.Fprintf(w, "  %s %s\n", subtaskBullet, s)
		}
		fmt.Fprintln(w, mutedStyle.Render("  id "+t.ID))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
