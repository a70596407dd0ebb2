package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"task-board/internal/board"
	"task-board/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "board.db")
	cfg.Store.LogLevel = "silent"
	return cfg
}

func waitLoaded(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Repo.WaitLoaded(ctx))
}

func TestOpen_InProcessFeed(t *testing.T) {
	a := Open(context.Background(), testConfig(t), Options{})
	defer a.Close()
	require.NoError(t, a.StoreErr)
	require.NotNil(t, a.Store)
	waitLoaded(t, a)

	id, err := a.Controller.AddMember(context.Background(), board.MemberDraft{Name: "Ada", Role: "QA engineer"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := a.Repo.Member(id)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOpen_SharedFileWithRedis(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()

	cfg := testConfig(t)
	cfg.Redis.Addr = m.Addr()

	server := Open(context.Background(), cfg, Options{})
	defer server.Close()
	require.NoError(t, server.StoreErr)
	waitLoaded(t, server)

	cli := Open(context.Background(), cfg, Options{})
	require.NoError(t, cli.StoreErr)
	waitLoaded(t, cli)
	id, err := cli.Controller.CreateTask(context.Background(), board.TaskDraft{Title: "t", Description: "d", Category: "UX"})
	require.NoError(t, err)
	require.NoError(t, cli.Close())

	require.Eventually(t, func() bool {
		_, ok := server.Repo.Task(id)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpen_StoreFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = ""

	a := Open(context.Background(), cfg, Options{})
	defer a.Close()
	require.Error(t, a.StoreErr)
	require.Nil(t, a.Store)
	require.ErrorIs(t, a.Repo.LastError(), board.ErrNotConfigured)

	_, err := a.Controller.CreateTask(context.Background(), board.TaskDraft{Title: "t", Description: "d", Category: "UX"})
	require.ErrorIs(t, err, board.ErrNotConfigured)
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	a := Open(context.Background(), cfg, Options{})
	defer a.Close()
	require.ErrorContains(t, a.StoreErr, "redis")
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, SetupLogging(config.LogConfig{Level: "debug", Format: "json"}))
	require.Error(t, SetupLogging(config.LogConfig{Level: "loud", Format: "text"}))
	require.NoError(t, SetupLogging(config.LogConfig{Level: "info", Format: "text"}))
}
