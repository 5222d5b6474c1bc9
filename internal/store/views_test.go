package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordView_FirstViewCounts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	counted, err := s.RecordView(ctx, "bk-1", "u1")
	require.NoError(t, err)
	assert.True(t, counted)

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.Views)
	assert.Equal(t, 1, got.PopularityScore)
}

func TestRecordView_RepeatViewDoesNotCount(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		counted, err := s.RecordView(ctx, "bk-1", "u1")
		require.NoError(t, err)
		assert.Equal(t, i == 0, counted)
	}

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.Views)
}

func TestRecordView_DistinctUsersCount(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.EnsureBook(ctx, testBook("bk-1", 1))
	require.NoError(t, err)

	const readers = 6
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.RecordView(ctx, "bk-1", fmt.Sprintf("u%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetBook(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, readers, got.Stats.Views)
}

func TestRecordView_MissingBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	counted, err := s.RecordView(ctx, "missing", "u1")
	require.NoError(t, err)
	assert.True(t, counted)

	viewed, err := s.HasViewed(ctx, "missing", "u1")
	require.NoError(t, err)
	assert.True(t, viewed)
}
