package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-board/internal/app"
	"task-board/internal/board"
)

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create tasks and move them through the board",
	}
	cmd.AddCommand(
		newTaskAddCmd(opts),
		newTaskStepCmd(opts, "start", "Move a To Do task to In Progress", (*board.Controller).StartTask),
		newTaskStepCmd(opts, "complete", "Move an In Progress task to Done", (*board.Controller).CompleteTask),
		newTaskStepCmd(opts, "delete", "Delete a Done task", (*board.Controller).DeleteTask),
		newTaskEditCmd(opts),
		newTaskMoveCmd(opts),
	)
	return cmd
}

func newTaskAddCmd(opts *rootOptions) *cobra.Command {
	var draft board.TaskDraft
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to To Do",
		Long: `Add a task to the To Do column.

Examples:
  taskboard task add "Design review" -d "Review mockups" --category UX
  taskboard task add "Login API" -d "JWT endpoints" --category backend --assign <member-id>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Title = args[0]
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Controller.CreateTask(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Task description (required)")
	cmd.Flags().StringVar(&draft.Category, "category", "", "UX, frontend, backend, fullstack, management or testing (required)")
	cmd.Flags().StringVarP(&draft.AssignedTo, "assign", "a", "", "Assign to a team member id")
	return cmd
}

// newTaskStepCmd builds the start, complete and delete commands, which all
// take one task id and call one controller method.
func newTaskStepCmd(opts *rootOptions, use, short string, step func(*board.Controller, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveTaskID(a.Repo, args[0])
				if err != nil {
					return err
				}
				return step(a.Controller, ctx, id)
			})
		},
	}
}

func newTaskEditCmd(opts *rootOptions) *cobra.Command {
	var edit board.TaskEdit
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Edit a task's fields. Flags that are not given keep their current value.
Use --assign unassigned to clear the assignee.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveTaskID(a.Repo, args[0])
				if err != nil {
					return err
				}
				current, _ := a.Repo.Task(id)
				flags := cmd.Flags()
				if !flags.Changed("title") {
					edit.Title = current.Title
				}
				if !flags.Changed("description") {
					edit.Description = current.Description
				}
				if !flags.Changed("category") {
					edit.Category = string(current.Category)
				}
				if !flags.Changed("assign") {
					edit.AssignedTo = current.AssignedTo
				}
				return a.Controller.EditTask(ctx, id, edit)
			})
		},
	}
	cmd.Flags().StringVarP(&edit.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&edit.Description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&edit.Category, "category", "", "New category")
	cmd.Flags().StringVarP(&edit.AssignedTo, "assign", "a", "", "Team member id, or unassigned")
	cmd.Flags().StringVar(&edit.Status, "status", "", "new, in-progress or done")
	return cmd
}

func newTaskMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <column>",
		Short: "Drop a task on a column (todo, in-progress, done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			column := board.ColumnID(args[1])
			if column.Status() == "" {
				return fmt.Errorf("unknown column %q, want todo, in-progress or done", args[1])
			}
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveTaskID(a.Repo, args[0])
				if err != nil {
					return err
				}
				drag := board.NewDrag(a.Repo, a.Controller)
				drag.Begin(id)
				moved, err := drag.End(ctx, id, column)
				if err != nil {
					return err
				}
				if !moved {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Task is already in that column"))
				}
				return nil
			})
		},
	}
}
