package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-board/internal/app"
	"task-board/internal/board"
)

func newBoardCmd(opts *rootOptions) *cobra.Command {
	var member, category, sortBy, direction string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board",
		Long: `Show tasks in To Do, In Progress and Done columns.

Examples:
  taskboard board
  taskboard board --category frontend --sort title --direction asc
  taskboard board --member <member-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := board.ParseCriteria(member, category, sortBy, direction)
			if err != nil {
				return err
			}
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				snap := a.Repo.Snapshot()
				cols := board.GroupByStatus(board.Project(snap.Tasks, crit))
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, RenderBoard(cols, snap.Members))
				fmt.Fprintln(out, mutedStyle.Render("Sorted by "+string(crit.SortBy)+", "+crit.Direction.Label(crit.SortBy)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&member, "member", "m", "", "Only tasks assigned to this member id")
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "timestamp", "Sort by timestamp or title")
	cmd.Flags().StringVarP(&direction, "direction", "d", "desc", "Sort direction, asc or desc")
	return cmd
}
