package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"task-manager/internal/filter"
	"task-manager/internal/model"
)

func taskCmd(app func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with tasks",
	}
	cmd.AddCommand(taskListCmd(app))
	return cmd
}

func taskListCmd(app func() *app) *cobra.Command {
	var (
		params     filter.TaskParams
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching every given filter",
		Long: `List tasks. Each flag narrows the result; with no flags every task is listed.

Examples:
  # Tasks whose title contains "bug", in any case
  taskmanager task list --title=bug

  # Draft tasks assigned to user 3 carrying label 2, as JSON
  taskmanager task list --status=draft --assignee=3 --label=2 --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app().tasks.ListTasks(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if tasks == nil {
					tasks = []model.Task{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}

			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			fmt.Fprintln(out, taskTable(tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&params.TitleCont, "title", "", "Title contains (case-insensitive)")
	cmd.Flags().UintVar(&params.AssigneeID, "assignee", 0, "Assignee user ID")
	cmd.Flags().StringVar(&params.Status, "status", "", "Status slug")
	cmd.Flags().UintVar(&params.LabelID, "label", 0, "Label ID")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// taskTable renders tasks as a static bordered table.
func taskTable(tasks []model.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Status.Slug,
			assigneeName(t.Assignee),
			labelNames(t.Labels),
			t.Name,
		})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("ID", "STATUS", "ASSIGNEE", "LABELS", "TITLE").
		Rows(rows...).
		String()
}

func assigneeName(u *model.User) string {
	if u == nil {
		return "-"
	}
	return u.Email
}

func labelNames(labels []model.Label) string {
	if len(labels) == 0 {
		return "-"
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return strings.Join(names, ",")
}
