package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotewall/quotewall/internal/domain"
)

// fakeVoteReader serves tallies from a map.
type fakeVoteReader struct {
	tallies map[uuid.UUID][2]int
}

func (r *fakeVoteReader) Get(_ context.Context, _, _ uuid.UUID) (*domain.Vote, error) {
	return nil, nil
}

func (r *fakeVoteReader) Tally(_ context.Context, quoteID uuid.UUID) (int, int, error) {
	t := r.tallies[quoteID]
	return t[0], t[1], nil
}

func TestReconciler_RepairsDriftedCounters(t *testing.T) {
	repo := newFakeQuoteRepo()
	votes := &fakeVoteReader{tallies: make(map[uuid.UUID][2]int)}

	healthy := &domain.Quote{ID: uuid.New(), UpVoteCount: 2, DownVoteCount: 1}
	drifted := &domain.Quote{ID: uuid.New(), UpVoteCount: 9, DownVoteCount: 0}

	repo.quotes[healthy.ID] = healthy
	repo.quotes[drifted.ID] = drifted
	votes.tallies[healthy.ID] = [2]int{2, 1}
	votes.tallies[drifted.ID] = [2]int{3, 4}

	rec := NewReconciler(ReconcilerConfig{Quotes: repo, Votes: votes, Workers: 2})

	report, err := rec.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, 3, drifted.UpVoteCount)
	assert.Equal(t, 4, drifted.DownVoteCount)
	assert.Equal(t, 2, healthy.UpVoteCount)
}

func TestReconciler_EmptyLedger(t *testing.T) {
	rec := NewReconciler(ReconcilerConfig{
		Quotes: newFakeQuoteRepo(),
		Votes:  &fakeVoteReader{tallies: map[uuid.UUID][2]int{}},
	})

	report, err := rec.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, report)
}

func TestForEach_BoundsConcurrency(t *testing.T) {
	var (
		active  atomic.Int32
		maxSeen atomic.Int32
		mu      sync.Mutex
		seen    []int
	)

	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	err := ForEach(context.Background(), items, 2, func(_ context.Context, item int) error {
		current := active.Add(1)
		defer active.Add(-1)

		for {
			prev := maxSeen.Load()
			if current <= prev || maxSeen.CompareAndSwap(prev, current) {
				break
			}
		}

		mu.Lock()
		seen = append(seen, item)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
	assert.Len(t, seen, len(items))
}

func TestForEach_StopsOnError(t *testing.T) {
	boom := errors.New("boom")

	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, item int) error {
		if item == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
}
