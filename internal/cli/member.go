package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"task-board/internal/app"
	"task-board/internal/board"
	"task-board/internal/models"
)

func newMemberCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"members"},
		Short:   "Manage team members",
	}
	cmd.AddCommand(newMemberAddCmd(opts), newMemberListCmd(opts))
	return cmd
}

func roleNames() string {
	names := make([]string, 0, len(models.Roles))
	for _, r := range models.Roles {
		names = append(names, fmt.Sprintf("%q", r))
	}
	return strings.Join(names, ", ")
}

func newMemberAddCmd(opts *rootOptions) *cobra.Command {
	var draft board.MemberDraft
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Name = args[0]
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Controller.AddMember(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&draft.Role, "role", "r", "", "One of "+roleNames())
	return cmd
}

func newMemberListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List team members by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBoard(cmd, func(ctx context.Context, a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), RenderMembers(a.Repo.Members()))
				return nil
			})
		},
	}
}
