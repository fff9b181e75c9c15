package repository

import (
	"context"
	"fmt"

	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrTicketIDExists       = dao.ErrTicketIDExists
)

type RegistrationDAO interface {
	NextSequence(ctx context.Context) (uint64, error)
	Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (dao.Registration, error)
	List(ctx context.Context) ([]dao.Registration, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) NextSequence(ctx context.Context) (uint64, error) {
	seq, err := r.dao.NextSequence(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.NextSequence -> %w", err)
	}

	return seq, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(registration))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error) {
	registration, err := r.dao.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByTicketID -> %w", err)
	}

	return r.daoToDomain(registration), nil
}

func (r *RegistrationRepository) List(ctx context.Context) ([]domain.Registration, error) {
	registrations, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	result := make([]domain.Registration, 0, len(registrations))
	for _, reg := range registrations {
		result = append(result, r.daoToDomain(reg))
	}

	return result, nil
}

func (r *RegistrationRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.dao.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.DeleteAll -> %w", err)
	}

	return n, nil
}

func (r *RegistrationRepository) domainToDao(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:              reg.ID,
		TicketID:        reg.TicketID,
		EventIDs:        reg.EventIDs,
		TeamName:        reg.TeamName,
		ParticipantName: reg.Name,
		Email:           reg.Email,
		Phone:           reg.Phone,
		RollNumber:      reg.RollNumber,
		Branch:          reg.Branch,
		Year:            reg.Year,
		EducationLevel:  reg.EducationLevel,
		Institution:     reg.Institution,
		Category:        string(reg.Category),
		TotalEvents:     reg.Pricing.TotalEvents,
		FreeEvents:      reg.Pricing.FreeEvents,
		OriginalAmount:  reg.Pricing.OriginalAmount,
		DiscountAmount:  reg.Pricing.DiscountAmount,
		FinalAmount:     reg.Pricing.FinalAmount,
		QRCode:          reg.QRCode,
		CreatedAt:       reg.CreatedAt,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:       reg.ID,
		TicketID: reg.TicketID,
		EventIDs: nonNil(reg.EventIDs),
		TeamName: reg.TeamName,
		Participant: domain.Participant{
			Name:           reg.ParticipantName,
			Email:          reg.Email,
			Phone:          reg.Phone,
			RollNumber:     reg.RollNumber,
			Branch:         reg.Branch,
			Year:           reg.Year,
			EducationLevel: reg.EducationLevel,
			Institution:    reg.Institution,
		},
		Category: domain.RegistrationCategory(reg.Category),
		Pricing: domain.Pricing{
			TotalEvents:    reg.TotalEvents,
			FreeEvents:     reg.FreeEvents,
			OriginalAmount: reg.OriginalAmount,
			DiscountAmount: reg.DiscountAmount,
			FinalAmount:    reg.FinalAmount,
		},
		QRCode:    reg.QRCode,
		CreatedAt: reg.CreatedAt,
	}
}
