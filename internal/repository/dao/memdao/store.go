// Package memdao keeps catalog and registration data in process memory.
// It backs the "memory" storage driver and the HTTP tests.
package memdao

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/urcet/yourfest-api/internal/repository/dao"
)

type Store struct {
	mu sync.RWMutex

	events        map[string]dao.Event
	stalls        map[string]dao.Stall
	registrations map[uint64]dao.Registration
	byTicketID    map[string]uint64
	seq           uint64

	// FailNextSequence makes the next NextSequence call fail with the given
	// error. Tests use it to simulate an unavailable allocator.
	FailNextSequence error
}

func New() *Store {
	return &Store{
		events:        make(map[string]dao.Event),
		stalls:        make(map[string]dao.Stall),
		registrations: make(map[uint64]dao.Registration),
		byTicketID:    make(map[string]uint64),
	}
}

func (s *Store) ListEvents(_ context.Context) ([]dao.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]dao.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	return events, nil
}

func (s *Store) FindEventByID(_ context.Context, id string) (dao.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return dao.Event{}, dao.ErrEventNotFound
	}

	return e, nil
}

func (s *Store) FindEventsByIDs(_ context.Context, ids []string) ([]dao.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	events := make([]dao.Event, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if e, ok := s.events[id]; ok {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	return events, nil
}

func (s *Store) CountEvents(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.events)), nil
}

func (s *Store) ListStalls(_ context.Context) ([]dao.Stall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stalls := make([]dao.Stall, 0, len(s.stalls))
	for _, st := range s.stalls {
		stalls = append(stalls, st)
	}
	sort.Slice(stalls, func(i, j int) bool { return stalls[i].ID < stalls[j].ID })

	return stalls, nil
}

func (s *Store) FindStallByID(_ context.Context, id string) (dao.Stall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stalls[id]
	if !ok {
		return dao.Stall{}, dao.ErrStallNotFound
	}

	return st, nil
}

func (s *Store) ReplaceCatalog(_ context.Context, events []dao.Event, stalls []dao.Stall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.events = make(map[string]dao.Event, len(events))
	for _, e := range events {
		e.CreatedAt, e.UpdatedAt = now, now
		s.events[e.ID] = e
	}

	s.stalls = make(map[string]dao.Stall, len(stalls))
	for _, st := range stalls {
		st.CreatedAt, st.UpdatedAt = now, now
		s.stalls[st.ID] = st
	}

	return nil
}

func (s *Store) ClearCatalog(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]dao.Event)
	s.stalls = make(map[string]dao.Stall)

	return nil
}

func (s *Store) NextSequence(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailNextSequence; err != nil {
		s.FailNextSequence = nil
		return 0, err
	}

	s.seq++

	return s.seq, nil
}

func (s *Store) Insert(_ context.Context, registration dao.Registration) (dao.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTicketID[registration.TicketID]; ok {
		return dao.Registration{}, dao.ErrTicketIDExists
	}
	if _, ok := s.registrations[registration.ID]; ok {
		return dao.Registration{}, dao.ErrTicketIDExists
	}

	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = time.Now()
	}
	registration.EventIDs = append([]string(nil), registration.EventIDs...)

	s.registrations[registration.ID] = registration
	s.byTicketID[registration.TicketID] = registration.ID

	return registration, nil
}

func (s *Store) FindByTicketID(_ context.Context, ticketID string) (dao.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTicketID[ticketID]
	if !ok {
		return dao.Registration{}, dao.ErrRegistrationNotFound
	}

	return s.registrations[id], nil
}

func (s *Store) List(_ context.Context) ([]dao.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registrations := make([]dao.Registration, 0, len(s.registrations))
	for _, r := range s.registrations {
		registrations = append(registrations, r)
	}
	sort.Slice(registrations, func(i, j int) bool { return registrations[i].ID < registrations[j].ID })

	return registrations, nil
}

func (s *Store) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.registrations))
	s.registrations = make(map[uint64]dao.Registration)
	s.byTicketID = make(map[string]uint64)

	return n, nil
}
