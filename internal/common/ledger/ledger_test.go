package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet([]string{"1", "2"})
	assert.True(t, s.Contains("1"))
	assert.False(t, s.Contains("3"))
	s.Add("3")
	assert.True(t, s.Contains("3"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, dedupe([]string{"1", "", "2", "1"}))
	assert.Empty(t, dedupe(nil))
}

func TestMemoryStore_LoadMissingIsEmpty(t *testing.T) {
	store := NewMemoryStore()
	ids, err := store.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStore_SaveIsAppendOnlyAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, "7", []string{"1", "2"}))
	require.NoError(t, store.Save(ctx, "7", []string{"2", "3"}))
	require.NoError(t, store.Save(ctx, "7", nil))

	ids, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)

	other, err := store.Load(ctx, "8")
	require.NoError(t, err)
	assert.Empty(t, other, "ledgers are scoped per user")
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "7", []string{"1"}))

	ids, _ := store.Load(ctx, "7")
	ids[0] = "mutated"

	again, _ := store.Load(ctx, "7")
	assert.Equal(t, []string{"1"}, again)
}

// Two writers that each loaded an empty ledger must not lose each other's ids.
func TestMemoryStore_ConcurrentWritersKeepEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = store.Save(ctx, "7", []string{fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	ids, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, ids, 200)
}
