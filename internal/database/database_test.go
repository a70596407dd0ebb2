package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.db")
	db, err := Open(path, "silent")
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE probe (id INTEGER)").Error)
	require.NoError(t, Close(db))
	require.FileExists(t, path)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ", "silent")
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, ParseLogLevel("silent"))
	require.Equal(t, logger.Info, ParseLogLevel("INFO"))
	require.Equal(t, logger.Error, ParseLogLevel("error"))
	require.Equal(t, logger.Warn, ParseLogLevel("whatever"))
}
