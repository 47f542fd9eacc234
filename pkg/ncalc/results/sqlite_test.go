package results_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "results.db")
	session := uuid.New()
	when := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	store1, err := results.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = store1.Append(ctx, session, "d", when)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopen the database
	store2, err := results.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	rec, err := store2.Last(ctx, session)
	require.NoError(t, err)
	assert.True(t, when.Equal(rec.Value.(time.Time)))

	rec, err = store2.Append(ctx, session, "2", int32(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Sequence)
}

func TestSQLiteStore_CorruptCreatedAt(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "results.db")
	session := uuid.New()

	store, err := results.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = store.Append(ctx, session, "1", int32(1))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE results SET created_at = 'yesterday'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err = results.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Last(ctx, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")

	_, err = store.List(ctx, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := results.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := results.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store, err := results.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	const numGoroutines = 20
	const numOps = 10

	var wg sync.WaitGroup
	sessions := make([]uuid.UUID, numGoroutines)
	for i := range sessions {
		sessions[i] = uuid.New()
	}
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				_, err := store.Append(ctx, sessions[id], "x", int32(j))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	for _, s := range sessions {
		records, err := store.List(ctx, s)
		require.NoError(t, err)
		assert.Len(t, records, numOps)
		last, err := store.Last(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, int32(numOps-1), last.Value)
	}
}
