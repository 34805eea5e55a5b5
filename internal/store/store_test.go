package store_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Houeta/market-map/internal/repository/sqlite"
	"github.com/stretchr/testify/require"
)

// newTestRepo opens a temporary SQLite storage that outlives the stores built on it,
// so a test can simulate a restart by building a second store on the same repo.
func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()

	repo, err := sqlite.NewRepository(context.Background(), discardLogger(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		if err = repo.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return repo
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
