package memdao

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcet/yourfest-api/internal/repository/dao"
)

func TestStore_NextSequence_Concurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	const workers = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.NextSequence(ctx)
			assert.NoError(t, err)

			mu.Lock()
			seen[seq] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for i := uint64(1); i <= workers; i++ {
		assert.Contains(t, seen, i)
	}
}

func TestStore_NextSequence_Failure(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	s.FailNextSequence = boom

	_, err := s.NextSequence(ctx)
	assert.ErrorIs(t, err, boom)

	seq, err := s.NextSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestStore_Registrations(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Insert(ctx, dao.Registration{ID: 2, TicketID: "YF26-00002", EventIDs: []string{"a"}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, dao.Registration{ID: 1, TicketID: "YF26-00001", EventIDs: []string{"b"}})
	require.NoError(t, err)

	_, err = s.Insert(ctx, dao.Registration{ID: 3, TicketID: "YF26-00001"})
	assert.ErrorIs(t, err, dao.ErrTicketIDExists)

	got, err := s.FindByTicketID(ctx, "YF26-00002")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.FindByTicketID(ctx, "YF26-99999")
	assert.ErrorIs(t, err, dao.ErrRegistrationNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint64(1), list[0].ID)
	assert.Equal(t, uint64(2), list[1].ID)

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// clearing registrations keeps the sequence position
	_, _ = s.NextSequence(ctx)
	_, _ = s.DeleteAll(ctx)
	seq, err := s.NextSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestStore_Catalog(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.ReplaceCatalog(ctx,
		[]dao.Event{{ID: "evt-2"}, {ID: "evt-1"}},
		[]dao.Stall{{ID: "stall-1"}},
	)
	require.NoError(t, err)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].ID)

	found, err := s.FindEventsByIDs(ctx, []string{"evt-2", "missing", "evt-2"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "evt-2", found[0].ID)

	_, err = s.FindStallByID(ctx, "stall-9")
	assert.ErrorIs(t, err, dao.ErrStallNotFound)

	require.NoError(t, s.ClearCatalog(ctx))
	count, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
