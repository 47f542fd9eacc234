package results_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) results.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	ctx := context.Background()

	t.Run(name+"/Append_and_Last", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		session := uuid.New()
		rec, err := store.Append(ctx, session, "1 + 2", int32(3))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Sequence)
		assert.Equal(t, session, rec.SessionID)

		last, err := store.Last(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, int32(3), last.Value)
		assert.Equal(t, "1 + 2", last.Expression)
		assert.False(t, last.CreatedAt.IsZero())
	})

	t.Run(name+"/Last_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Last(ctx, uuid.New())
		assert.ErrorIs(t, err, results.ErrNotFound)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		records, err := store.List(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run(name+"/List_Ordered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		session := uuid.New()
		values := []any{int32(1), "two", decimal.RequireFromString("3.5")}
		for _, v := range values {
			_, err := store.Append(ctx, session, "x", v)
			require.NoError(t, err)
		}

		records, err := store.List(ctx, session)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, rec := range records {
			assert.Equal(t, int64(i+1), rec.Sequence)
		}
		assert.Equal(t, "two", records[1].Value)
		assert.True(t, decimal.RequireFromString("3.5").Equal(records[2].Value.(decimal.Decimal)))
	})

	t.Run(name+"/Sessions_Isolated", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		a, b := uuid.New(), uuid.New()
		_, err := store.Append(ctx, a, "a", "first")
		require.NoError(t, err)
		rec, err := store.Append(ctx, b, "b", "second")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Sequence)

		last, err := store.Last(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, "first", last.Value)
	})

	t.Run(name+"/DeleteSession", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		session := uuid.New()
		_, err := store.Append(ctx, session, "1", int32(1))
		require.NoError(t, err)
		require.NoError(t, store.DeleteSession(ctx, session))

		_, err = store.Last(ctx, session)
		assert.ErrorIs(t, err, results.ErrNotFound)

		rec, err := store.Append(ctx, session, "2", int32(2))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Sequence)
	})

	t.Run(name+"/Append_Unsupported", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Append(ctx, uuid.New(), "x", struct{}{})
		assert.Error(t, err)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		session := uuid.New()
		_, err := store.Append(ctx, session, "1", int32(1))
		assert.ErrorIs(t, err, results.ErrStoreClosed)

		_, err = store.Last(ctx, session)
		assert.ErrorIs(t, err, results.ErrStoreClosed)

		_, err = store.List(ctx, session)
		assert.ErrorIs(t, err, results.ErrStoreClosed)

		err = store.DeleteSession(ctx, session)
		assert.ErrorIs(t, err, results.ErrStoreClosed)
	})
}

// TestMemoryStore runs contract tests against MemoryStore.
func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) results.Store {
		return results.NewMemoryStore()
	}
	storeContractTest(t, "MemoryStore", factory)
}

// TestSQLiteStore runs contract tests against SQLiteStore.
func TestSQLiteStore(t *testing.T) {
	factory := func(t *testing.T) results.Store {
		store, err := results.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	}
	storeContractTest(t, "SQLiteStore", factory)
}
