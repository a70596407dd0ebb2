package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"task-board/internal/app"
	"task-board/internal/config"
	"task-board/internal/handlers"
	"task-board/internal/realtime"
	"task-board/internal/routes"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := app.SetupLogging(cfg.Log); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.WithField("service", "task-board")

	// Board wiring: store changes reach the repository, repository changes
	// and controller notices reach every websocket client.
	hub := realtime.NewHub()
	feed := handlers.NewBoardFeed(hub, logger)
	a := app.Open(ctx, cfg, app.Options{Hub: hub, NoticeSink: feed.PublishNotice, Logger: logger})
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close board")
		}
	}()
	unsubscribe := a.Repo.OnChange(feed.PublishSnapshot)
	defer unsubscribe()

	h := handlers.New(a.Repo, a.Controller, feed, logger)
	ginRoutes := routes.SetupRoutes(h, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("Server starting on %s", cfg.Server.Addr)
	logger.Info("API endpoints:")
	for _, route := range ginRoutes.Routes() {
		logger.Infof("  %-6s %s", route.Method, route.Path)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Failed to start server")
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.CloseTopic(handlers.BoardTopic)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Server shutdown")
	}
}
