package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/notification"
	"github.com/urcet/yourfest-api/internal/pkg/ticketqr"
	"github.com/urcet/yourfest-api/internal/repository"
)

var (
	ErrAllocation     = errors.New("ticket number allocation failed")
	ErrEncoding       = errors.New("ticket code generation failed")
	ErrPersistence    = errors.New("registration could not be saved")
	ErrTicketNotFound = repository.ErrRegistrationNotFound
)

type RegistrationRepository interface {
	NextSequence(ctx context.Context) (uint64, error)
	Create(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error)
	List(ctx context.Context) ([]domain.Registration, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type EventFinder interface {
	FindEventsByIDs(ctx context.Context, ids []string) ([]domain.Event, error)
}

type TicketEncoder interface {
	Generate(ticketID string) (ticketqr.Artifact, error)
}

type TicketNotifier interface {
	Enqueue(notice notification.TicketNotice) (uuid.UUID, error)
}

type TicketPublisher interface {
	PublishTicket(registration domain.Registration)
}

type TicketArchiver interface {
	PutTicketQR(ctx context.Context, ticketID string, png []byte) (string, error)
}

// IssueHooks are told about every ticket after it is stored. Any of them
// may be nil.
type IssueHooks struct {
	Notifier  TicketNotifier
	Publisher TicketPublisher
	Archiver  TicketArchiver
}

type RegistrationService struct {
	repo         RegistrationRepository
	events       EventFinder
	encoder      TicketEncoder
	ticketPrefix string
	hooks        IssueHooks
	now          func() time.Time
}

func NewRegistrationService(
	repo RegistrationRepository,
	events EventFinder,
	encoder TicketEncoder,
	ticketPrefix string,
	hooks IssueHooks,
) *RegistrationService {
	return &RegistrationService{
		repo:         repo,
		events:       events,
		encoder:      encoder,
		ticketPrefix: ticketPrefix,
		hooks:        hooks,
		now:          time.Now,
	}
}

// ResolveEvents loads the selected events and fails with a validation
// error on the eventIds field when any of them is unknown.
func (s *RegistrationService) ResolveEvents(ctx context.Context, ids []string) ([]domain.Event, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("eventIds", "Select at least one event")
	}

	found, err := s.events.FindEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindEventsByIDs -> %w", err)
	}

	byID := make(map[string]domain.Event, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	// keep the participant's selection order
	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, domain.NewValidationError("eventIds", fmt.Sprintf("Event %s does not exist", id))
		}
		events = append(events, e)
	}

	return events, nil
}

// Quote prices a selection without registering it.
func (s *RegistrationService) Quote(ctx context.Context, ids []string) (domain.Pricing, error) {
	events, err := s.ResolveEvents(ctx, ids)
	if err != nil {
		return domain.Pricing{}, err
	}

	return domain.PricingForEvents(events)
}

// Register issues a ticket for input. Nothing is stored unless a ticket
// number, price and code were all produced; a number drawn for a failed
// registration is never handed out again.
func (s *RegistrationService) Register(ctx context.Context, input domain.RegistrationInput) (domain.Registration, error) {
	events, err := s.ResolveEvents(ctx, input.EventIDs)
	if err != nil {
		return domain.Registration{}, err
	}

	category := input.Category
	if category == "" {
		category = domain.CategoryForEvents(events)
	}

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("%w: s.repo.NextSequence -> %v", ErrAllocation, err)
	}
	ticketID := domain.FormatTicketID(s.ticketPrefix, seq)

	pricing, err := domain.PricingForEvents(events)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("domain.PricingForEvents -> %w", err)
	}

	artifact, err := s.encoder.Generate(ticketID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("%w: s.encoder.Generate -> %v", ErrEncoding, err)
	}

	created, err := s.repo.Create(ctx, domain.Registration{
		ID:          seq,
		TicketID:    ticketID,
		EventIDs:    input.EventIDs,
		TeamName:    input.TeamName,
		Participant: input.Participant,
		Category:    category,
		Pricing:     pricing,
		QRCode:      artifact.DataURI(),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("%w: s.repo.Create -> %v", ErrPersistence, err)
	}

	s.afterIssue(created, events, artifact)

	return created, nil
}

// afterIssue runs the best-effort side effects of a stored ticket. None of
// them may block or fail the registration.
func (s *RegistrationService) afterIssue(reg domain.Registration, events []domain.Event, artifact ticketqr.Artifact) {
	log := zap.L().With(zap.String("ticket_id", reg.TicketID))

	if s.hooks.Notifier != nil {
		summaries := make([]domain.EventSummary, 0, len(events))
		for _, e := range events {
			summaries = append(summaries, e.Summary())
		}

		jobID, err := s.hooks.Notifier.Enqueue(notification.TicketNotice{
			TicketID:        reg.TicketID,
			Participant:     reg.Participant,
			TeamName:        reg.TeamName,
			Events:          summaries,
			Pricing:         reg.Pricing,
			VerificationURL: artifact.URL,
			QRPNG:           artifact.PNG,
		})
		if err != nil {
			log.Error("ticket email not queued", zap.Error(err))
		} else {
			log.Debug("ticket email queued", zap.String("job_id", jobID.String()))
		}
	}

	if s.hooks.Publisher != nil {
		s.hooks.Publisher.PublishTicket(reg)
	}

	if s.hooks.Archiver != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			url, err := s.hooks.Archiver.PutTicketQR(ctx, reg.TicketID, artifact.PNG)
			if err != nil {
				log.Warn("ticket code not archived", zap.Error(err))
				return
			}
			log.Debug("ticket code archived", zap.String("url", url))
		}()
	}
}

// GetTicket looks a ticket up for the verification view. Events that have
// since left the catalog are dropped from the result. IDs that this service
// could never have issued are reported as not found without a lookup.
func (s *RegistrationService) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if _, err := domain.ParseTicketID(s.ticketPrefix, ticketID); err != nil {
		return domain.Ticket{}, fmt.Errorf("domain.ParseTicketID -> %w: %v", ErrTicketNotFound, err)
	}

	reg, err := s.repo.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByTicketID -> %w", err)
	}

	found, err := s.events.FindEventsByIDs(ctx, reg.EventIDs)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.events.FindEventsByIDs -> %w", err)
	}

	byID := make(map[string]domain.Event, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	summaries := make([]domain.EventSummary, 0, len(reg.EventIDs))
	for _, id := range reg.EventIDs {
		if e, ok := byID[id]; ok {
			summaries = append(summaries, e.Summary())
		}
	}

	return domain.Ticket{Registration: reg, Events: summaries}, nil
}

func (s *RegistrationService) List(ctx context.Context) ([]domain.Registration, error) {
	registrations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return registrations, nil
}

// Clear deletes every registration. Ticket numbering continues where it
// left off.
func (s *RegistrationService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.repo.DeleteAll -> %w", err)
	}

	return n, nil
}
