package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/notification"
	"github.com/urcet/yourfest-api/internal/pkg/ticketqr"
	"github.com/urcet/yourfest-api/internal/repository"
	"github.com/urcet/yourfest-api/internal/repository/dao/memdao"
)

func testEvents() []domain.Event {
	events := make([]domain.Event, 0, 6)
	for i := 1; i <= 5; i++ {
		events = append(events, domain.Event{
			ID:              fmt.Sprintf("evt-%d", i),
			Title:           fmt.Sprintf("Event %d", i),
			Category:        domain.EventCategoryTech,
			Date:            "2026-01-23",
			RegistrationFee: domain.DefaultEventFee,
		})
	}
	events = append(events, domain.Event{
		ID:              "evt-cul",
		Title:           "Dance",
		Category:        domain.EventCategoryCultural,
		Date:            "2026-01-24",
		RegistrationFee: domain.DefaultEventFee,
	})

	return events
}

func testParticipant() domain.Participant {
	return domain.Participant{
		Name:           "Asha Rao",
		Email:          "asha@example.com",
		Phone:          "9876543210",
		RollNumber:     "21CS001",
		Branch:         "CSE",
		Year:           "3",
		EducationLevel: "UG",
		Institution:    "URCET",
	}
}

type fakeEncoder struct {
	err error
}

func (f fakeEncoder) Generate(ticketID string) (ticketqr.Artifact, error) {
	if f.err != nil {
		return ticketqr.Artifact{}, f.err
	}

	return ticketqr.Artifact{URL: "https://fest.example.edu/ticket/" + ticketID, PNG: []byte(ticketID)}, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Enqueue(notice notification.TicketNotice) (uuid.UUID, error) {
	args := m.Called(notice)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type failingCreateRepo struct {
	*repository.RegistrationRepository
}

func (failingCreateRepo) Create(context.Context, domain.Registration) (domain.Registration, error) {
	return domain.Registration{}, errors.New("disk full")
}

type fixture struct {
	store   *memdao.Store
	catalog *repository.CatalogRepository
	regs    *repository.RegistrationRepository
	svc     *RegistrationService
}

func newFixture(t *testing.T, encoder TicketEncoder, hooks IssueHooks) fixture {
	t.Helper()

	store := memdao.New()
	catalogRepo := repository.NewCatalogRepository(store)
	require.NoError(t, catalogRepo.ReplaceCatalog(context.Background(), testEvents(), nil))

	regs := repository.NewRegistrationRepository(store)

	return fixture{
		store:   store,
		catalog: catalogRepo,
		regs:    regs,
		svc:     NewRegistrationService(regs, catalogRepo, encoder, domain.DefaultTicketPrefix, hooks),
	}
}

func input(eventIDs ...string) domain.RegistrationInput {
	return domain.RegistrationInput{Participant: testParticipant(), EventIDs: eventIDs}
}

func TestRegistrationService_Register_Pricing(t *testing.T) {
	tests := []struct {
		name     string
		eventIDs []string
		want     domain.Pricing
	}{
		{
			name:     "two events",
			eventIDs: []string{"evt-1", "evt-2"},
			want:     domain.Pricing{TotalEvents: 2, FreeEvents: 0, OriginalAmount: 200, DiscountAmount: 0, FinalAmount: 200},
		},
		{
			name:     "three events",
			eventIDs: []string{"evt-1", "evt-2", "evt-3"},
			want:     domain.Pricing{TotalEvents: 3, FreeEvents: 1, OriginalAmount: 300, DiscountAmount: 100, FinalAmount: 200},
		},
		{
			name:     "five events",
			eventIDs: []string{"evt-1", "evt-2", "evt-3", "evt-4", "evt-5"},
			want:     domain.Pricing{TotalEvents: 5, FreeEvents: 1, OriginalAmount: 500, DiscountAmount: 100, FinalAmount: 400},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fakeEncoder{}, IssueHooks{})

			reg, err := f.svc.Register(context.Background(), input(tt.eventIDs...))
			require.NoError(t, err)

			assert.Equal(t, tt.want, reg.Pricing)
			assert.Equal(t, "YF26-00001", reg.TicketID)
			assert.Equal(t, uint64(1), reg.ID)
			assert.Equal(t, domain.RegistrationCategoryTech, reg.Category)
			assert.Contains(t, reg.QRCode, "data:image/png;base64,")
		})
	}
}

func TestRegistrationService_Register_UnknownEvent(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, input("evt-1", "evt-missing"))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "eventIds", verr.Field)

	list, err := f.regs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// validation failures must not consume ticket numbers
	reg, err := f.svc.Register(ctx, input("evt-1"))
	require.NoError(t, err)
	assert.Equal(t, "YF26-00001", reg.TicketID)
}

func TestRegistrationService_Register_Concurrent(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	const k = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, k)
	)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := f.svc.Register(ctx, input("evt-1", "evt-2", "evt-3"))
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			ids[reg.TicketID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, k)

	list, err := f.regs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, k)
}

func TestRegistrationService_Register_AllocationFailure(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()
	f.store.FailNextSequence = errors.New("connection refused")

	_, err := f.svc.Register(ctx, input("evt-1"))
	assert.ErrorIs(t, err, ErrAllocation)

	list, err := f.regs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegistrationService_Register_EncodingFailure(t *testing.T) {
	f := newFixture(t, fakeEncoder{err: ticketqr.ErrInvalidBaseURL}, IssueHooks{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, input("evt-1"))
	assert.ErrorIs(t, err, ErrEncoding)

	list, err := f.regs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the drawn number is burned
	seq, err := f.regs.NextSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestRegistrationService_Register_PersistenceFailure(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	notifier := &mockNotifier{}
	svc := NewRegistrationService(failingCreateRepo{f.regs}, f.catalog, fakeEncoder{}, domain.DefaultTicketPrefix, IssueHooks{Notifier: notifier})

	_, err := svc.Register(ctx, input("evt-1"))
	assert.ErrorIs(t, err, ErrPersistence)
	notifier.AssertNotCalled(t, "Enqueue", mock.Anything)

	reg, err := f.svc.Register(ctx, input("evt-1"))
	require.NoError(t, err)
	assert.Equal(t, "YF26-00002", reg.TicketID)
}

func TestRegistrationService_Register_NotifierDown(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Enqueue", mock.Anything).Return(uuid.Nil, notification.ErrQueueFull).Once()

	f := newFixture(t, fakeEncoder{}, IssueHooks{Notifier: notifier})

	reg, err := f.svc.Register(context.Background(), input("evt-1", "evt-cul"))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.TicketID)
	assert.NotEmpty(t, reg.QRCode)
	assert.Equal(t, domain.RegistrationCategoryBoth, reg.Category)

	notifier.AssertExpectations(t)
}

func TestRegistrationService_Register_Notice(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Enqueue", mock.MatchedBy(func(n notification.TicketNotice) bool {
		return n.TicketID == "YF26-00001" &&
			n.VerificationURL == "https://fest.example.edu/ticket/YF26-00001" &&
			len(n.Events) == 2 && n.Events[0].ID == "evt-2" &&
			n.Participant.Email == "asha@example.com"
	})).Return(uuid.New(), nil).Once()

	f := newFixture(t, fakeEncoder{}, IssueHooks{Notifier: notifier})

	_, err := f.svc.Register(context.Background(), input("evt-2", "evt-1"))
	require.NoError(t, err)

	notifier.AssertExpectations(t)
}

func TestRegistrationService_GetTicket(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	created, err := f.svc.Register(ctx, input("evt-3", "evt-1"))
	require.NoError(t, err)

	ticket, err := f.svc.GetTicket(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, created.TicketID, ticket.Registration.TicketID)
	require.Len(t, ticket.Events, 2)
	assert.Equal(t, "evt-3", ticket.Events[0].ID)

	// evt-3 leaves the catalog
	events := testEvents()
	require.NoError(t, f.catalog.ReplaceCatalog(ctx, events[:2], nil))

	ticket, err = f.svc.GetTicket(ctx, created.TicketID)
	require.NoError(t, err)
	require.Len(t, ticket.Events, 1)
	assert.Equal(t, "evt-1", ticket.Events[0].ID)

	_, err = f.svc.GetTicket(ctx, "YF26-99999")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

type countingLookupRepo struct {
	*repository.RegistrationRepository
	lookups int
}

func (r *countingLookupRepo) FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error) {
	r.lookups++
	return r.RegistrationRepository.FindByTicketID(ctx, ticketID)
}

func TestRegistrationService_GetTicket_MalformedID(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	repo := &countingLookupRepo{RegistrationRepository: f.regs}
	svc := NewRegistrationService(repo, f.catalog, fakeEncoder{}, domain.DefaultTicketPrefix, IssueHooks{})

	for _, id := range []string{"", "garbage", "YF25-00001", "YF26-1", "YF26-00000", "YF26-0001x"} {
		_, err := svc.GetTicket(context.Background(), id)
		assert.ErrorIs(t, err, ErrTicketNotFound, id)
	}
	assert.Zero(t, repo.lookups)

	_, err := svc.GetTicket(context.Background(), "YF26-00001")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Equal(t, 1, repo.lookups)
}

func TestRegistrationService_Quote(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	pricing, err := f.svc.Quote(ctx, []string{"evt-1", "evt-2", "evt-3"})
	require.NoError(t, err)
	assert.Equal(t, 200, pricing.FinalAmount)

	_, err = f.svc.Quote(ctx, []string{"nope"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Quote(ctx, nil)
	assert.ErrorAs(t, err, &verr)
}

func TestRegistrationService_Clear(t *testing.T) {
	f := newFixture(t, fakeEncoder{}, IssueHooks{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, input("evt-1"))
	require.NoError(t, err)

	n, err := f.svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reg, err := f.svc.Register(ctx, input("evt-1"))
	require.NoError(t, err)
	assert.Equal(t, "YF26-00002", reg.TicketID)

	events, err := f.catalog.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestCatalogService_Seed(t *testing.T) {
	store := memdao.New()
	svc := NewCatalogService(repository.NewCatalogRepository(store)).
		withSeedSource(func() ([]domain.Event, []domain.Stall, error) {
			return testEvents(), []domain.Stall{{ID: "stall-001", Name: "Food"}}, nil
		})
	ctx := context.Background()

	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 6)

	stall, err := svc.GetStall(ctx, "stall-001")
	require.NoError(t, err)
	assert.Equal(t, "Food", stall.Name)

	_, err = svc.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	require.NoError(t, svc.Clear(ctx))
	stalls, err := svc.ListStalls(ctx)
	require.NoError(t, err)
	assert.Empty(t, stalls)

	result, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Events: 6, Stalls: 1}, result)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := HashPassword("festadmin")
	require.NoError(t, err)

	svc := NewAuthService(&config.AdminConfig{Username: "admin", PasswordHash: hash})
	ctx := context.Background()

	admin, err := svc.Login(ctx, "admin", "festadmin")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrWrongCredentials)

	_, err = svc.Login(ctx, "root", "festadmin")
	assert.ErrorIs(t, err, ErrWrongCredentials)

	_, err = NewAuthService(&config.AdminConfig{Username: "admin"}).Login(ctx, "admin", "")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}
