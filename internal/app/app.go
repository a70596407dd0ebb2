// Package app assembles the board from configuration: logging, the SQLite
// document store, its change feed, the repository and the controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-board/internal/board"
	"task-board/internal/config"
	"task-board/internal/database"
	"task-board/internal/docstore"
	"task-board/internal/realtime"
)

// SetupLogging applies the log level and format to the standard logrus logger.
func SetupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Options tunes Open.
type Options struct {
	// Hub backs the in-process change feed. A new hub is created when nil.
	Hub *realtime.Hub
	// NoticeSink receives every controller outcome.
	NoticeSink func(board.Notice)
	Logger     *log.Entry
}

// App holds the wired components. Store is nil when the database could not
// be opened; StoreErr then says why, and the repository and controller
// report a ConfigurationError.
type App struct {
	Config     *config.Config
	Store      *docstore.GormStore
	StoreErr   error
	Repo       *board.Repository
	Controller *board.Controller

	db    *gorm.DB
	redis *redis.Client
	log   *log.Entry
}

// Open builds an App from cfg. Store failures do not fail Open.
func Open(ctx context.Context, cfg *config.Config, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	a := &App{Config: cfg, log: logger}

	var store docstore.Store
	if gs, err := a.openStore(ctx, opts.Hub); err != nil {
		a.StoreErr = err
		logger.WithError(err).Error("document store unavailable")
	} else {
		a.Store = gs
		store = gs
	}

	a.Repo = board.NewRepository(ctx, store, board.WithLogger(logger))
	a.Controller = board.NewController(store, a.Repo,
		board.WithControllerLogger(logger),
		board.WithAdapterTimeout(cfg.Store.AdapterTimeout),
		board.WithNoticeSink(opts.NoticeSink),
	)
	return a
}

func (a *App) openStore(ctx context.Context, hub *realtime.Hub) (*docstore.GormStore, error) {
	db, err := database.Open(a.Config.Store.Path, a.Config.Store.LogLevel)
	if err != nil {
		return nil, err
	}

	var feed docstore.ChangeFeed
	if addr := a.Config.Redis.Addr; addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr})
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			_ = database.Close(db)
			return nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		a.redis = rc
		feed = docstore.NewRedisFeed(rc, a.Config.Redis.ChannelPrefix, a.log)
		a.log.WithField("addr", addr).Info("using redis change feed")
	} else {
		if hub == nil {
			hub = realtime.NewHub()
		}
		feed = docstore.NewHubFeed(hub)
	}

	store, err := docstore.NewGormStore(db, feed, a.log)
	if err != nil {
		if a.redis != nil {
			_ = a.redis.Close()
			a.redis = nil
		}
		_ = database.Close(db)
		return nil, err
	}
	a.db = db
	return store, nil
}

// Close shuts everything down in reverse order of construction.
func (a *App) Close() error {
	a.Repo.Close()
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	return errors.Join(errs...)
}
