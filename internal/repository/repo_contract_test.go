package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-sentiment/internal/models"
)

// runContractTests exercises the behaviour every ReviewRepo must share.
// newRepo must return an empty store.
func runContractTests(t *testing.T, newRepo func(t *testing.T, clock clockwork.Clock) ReviewRepo) {
	ctx := context.Background()

	t.Run("ids start at one and increase", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())

		for i := 1; i <= 3; i++ {
			review, err := repo.Insert(ctx, fmt.Sprintf("review %d", i), models.SentimentNeutral)
			require.NoError(t, err)
			assert.Equal(t, int64(i), review.ID)
		}
	})

	t.Run("insert then list returns verbatim text", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())
		texts := []string{"Очень хороший сервис!", "", "  spaced  ", "emoji 🎉\nnewline"}

		for _, text := range texts {
			_, err := repo.Insert(ctx, text, models.SentimentNeutral)
			require.NoError(t, err)
		}

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, len(texts))
		for i, text := range texts {
			assert.Equal(t, text, all[i].Text)
			assert.Equal(t, int64(i+1), all[i].ID)
		}
	})

	t.Run("empty store lists empty slice", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("filter keeps insertion order", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())
		labels := []models.Sentiment{
			models.SentimentPositive, models.SentimentNegative, models.SentimentPositive,
			models.SentimentNeutral, models.SentimentPositive,
		}
		for i, s := range labels {
			_, err := repo.Insert(ctx, fmt.Sprintf("r%d", i), s)
			require.NoError(t, err)
		}

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)

		for _, label := range models.Sentiments {
			filtered, err := repo.List(ctx, &label)
			require.NoError(t, err)

			var expected []models.Review
			for _, r := range all {
				if r.Sentiment == label {
					expected = append(expected, r)
				}
			}
			assert.Equal(t, len(expected), len(filtered), "label %s", label)
			for i := range expected {
				assert.Equal(t, expected[i], filtered[i])
			}
		}

		positive := models.SentimentPositive
		filtered, err := repo.List(ctx, &positive)
		require.NoError(t, err)
		require.Len(t, filtered, 3)
		assert.Equal(t, []int64{1, 3, 5}, []int64{filtered[0].ID, filtered[1].ID, filtered[2].ID})
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())
		_, err := repo.Insert(ctx, "a", models.SentimentPositive)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, "b", models.SentimentNegative)
		require.NoError(t, err)

		first, err := repo.List(ctx, nil)
		require.NoError(t, err)
		second, err := repo.List(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("returned slices are independent", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())
		_, err := repo.Insert(ctx, "original", models.SentimentNeutral)
		require.NoError(t, err)

		first, err := repo.List(ctx, nil)
		require.NoError(t, err)
		first[0].Text = "mutated"

		second, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "original", second[0].Text)
	})

	t.Run("created_at never goes backwards", func(t *testing.T) {
		start := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		clock := clockwork.NewFakeClockAt(start)
		repo := newRepo(t, clock)

		first, err := repo.Insert(ctx, "first", models.SentimentNeutral)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-16T12:00:00.000000", first.CreatedAt.String())

		clock.Advance(1500 * time.Microsecond)
		second, err := repo.Insert(ctx, "second", models.SentimentNeutral)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-16T12:00:00.001500", second.CreatedAt.String())

		// Wall clock stepped back: the timestamp is clamped to the previous one.
		backwards := clockwork.NewFakeClockAt(start.Add(-time.Hour))
		setClock(t, repo, backwards)
		third, err := repo.Insert(ctx, "third", models.SentimentNeutral)
		require.NoError(t, err)
		assert.Equal(t, second.CreatedAt, third.CreatedAt)

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt.Time))
		}
		assert.Equal(t, first.CreatedAt, all[0].CreatedAt)
	})

	t.Run("concurrent inserts get unique sequential ids", func(t *testing.T) {
		repo := newRepo(t, clockwork.NewRealClock())
		const n = 50

		var wg sync.WaitGroup
		ids := make(chan int64, n)
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				review, err := repo.Insert(ctx, fmt.Sprintf("concurrent %d", i), models.SentimentNeutral)
				if err != nil {
					errs <- err
					return
				}
				ids <- review.ID
			}()
		}
		wg.Wait()
		close(ids)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		seen := make(map[int64]bool, n)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		require.Len(t, seen, n)
		for i := int64(1); i <= n; i++ {
			assert.True(t, seen[i], "missing id %d", i)
		}

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, n)
		for i := 1; i < len(all); i++ {
			assert.Greater(t, all[i].ID, all[i-1].ID)
			assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt.Time))
		}
	})
}

// setClock swaps the time source of a repository under test.
func setClock(t *testing.T, repo ReviewRepo, clock clockwork.Clock) {
	t.Helper()
	switch r := repo.(type) {
	case *MemoryReviewRepo:
		r.mu.Lock()
		r.clock.clock = clock
		r.mu.Unlock()
	case *SQLiteReviewRepo:
		r.mu.Lock()
		r.clock.clock = clock
		r.mu.Unlock()
	case *MongoReviewRepo:
		r.mu.Lock()
		r.clock.clock = clock
		r.mu.Unlock()
	default:
		t.Fatalf("unsupported repo type %T", repo)
	}
}
