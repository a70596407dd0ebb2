package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"task-board/internal/app"
	"task-board/internal/board"
	"task-board/internal/config"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string
	wait       time.Duration

	cfg *config.Config
}

// NewRootCmd builds the taskboard command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Team task board in the terminal",
		Long: `taskboard drives the same board as the HTTP server: add team members,
create tasks and move them through To Do, In Progress and Done.

Point it at the server's database (and Redis, if the server uses one) so
changes show up live in every open board.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Store.Path = opts.dbPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			} else if cfg.Log.Level == config.Default().Log.Level {
				// notices already report each outcome on stdout
				cfg.Log.Level = "warn"
			}
			if err := app.SetupLogging(cfg.Log); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default $TASKBOARD_CONFIG or taskboard.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.wait, "wait", 10*time.Second, "How long to wait for the board to load")

	root.AddCommand(newBoardCmd(opts))
	root.AddCommand(newTaskCmd(opts))
	root.AddCommand(newMemberCmd(opts))
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// withBoard opens the store, waits for the first task and member snapshots
// and runs fn.
// Controller notices are printed to the command's output.
func (o *rootOptions) withBoard(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	a := app.Open(ctx, o.cfg, app.Options{
		Logger: log.WithField("command", cmd.Name()),
		NoticeSink: func(n board.Notice) {
			fmt.Fprintln(out, RenderNotice(n))
		},
	})
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("close")
		}
	}()
	if a.StoreErr != nil {
		return fmt.Errorf("failed to open board: %w", a.StoreErr)
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.wait)
	defer cancel()
	if err := a.Repo.WaitLoaded(waitCtx); err != nil {
		return fmt.Errorf("board did not load: %w", err)
	}
	if err := a.Repo.WaitMembersLoaded(waitCtx); err != nil {
		return fmt.Errorf("team members did not load: %w", err)
	}
	if err := a.Repo.LastError(); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	return fn(ctx, a)
}

// resolveTaskID accepts a full id or a unique prefix of one, as printed by
// the board command.
func resolveTaskID(repo *board.Repository, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, ok := repo.Task(ref); ok {
		return ref, nil
	}
	var match string
	for _, t := range repo.Tasks() {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", board.ErrTaskNotFound, ref)
	}
	return match, nil
}
