package repository

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
	ErrStallNotFound = dao.ErrStallNotFound
)

type CatalogDAO interface {
	ListEvents(ctx context.Context) ([]dao.Event, error)
	FindEventByID(ctx context.Context, id string) (dao.Event, error)
	FindEventsByIDs(ctx context.Context, ids []string) ([]dao.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	ListStalls(ctx context.Context) ([]dao.Stall, error)
	FindStallByID(ctx context.Context, id string) (dao.Stall, error)
	ReplaceCatalog(ctx context.Context, events []dao.Event, stalls []dao.Stall) error
	ClearCatalog(ctx context.Context) error
}

type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func (r *CatalogRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := r.dao.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListEvents -> %w", err)
	}

	return r.eventsDaoToDomain(events), nil
}

func (r *CatalogRepository) FindEventByID(ctx context.Context, id string) (domain.Event, error) {
	event, err := r.dao.FindEventByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindEventByID -> %w", err)
	}

	return r.eventDaoToDomain(event), nil
}

func (r *CatalogRepository) FindEventsByIDs(ctx context.Context, ids []string) ([]domain.Event, error) {
	events, err := r.dao.FindEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindEventsByIDs -> %w", err)
	}

	return r.eventsDaoToDomain(events), nil
}

func (r *CatalogRepository) CountEvents(ctx context.Context) (int64, error) {
	count, err := r.dao.CountEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountEvents -> %w", err)
	}

	return count, nil
}

func (r *CatalogRepository) ListStalls(ctx context.Context) ([]domain.Stall, error) {
	stalls, err := r.dao.ListStalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListStalls -> %w", err)
	}

	result := make([]domain.Stall, 0, len(stalls))
	for _, s := range stalls {
		result = append(result, r.stallDaoToDomain(s))
	}

	return result, nil
}

func (r *CatalogRepository) FindStallByID(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := r.dao.FindStallByID(ctx, id)
	if err != nil {
		return domain.Stall{}, fmt.Errorf("r.dao.FindStallByID -> %w", err)
	}

	return r.stallDaoToDomain(stall), nil
}

func (r *CatalogRepository) ReplaceCatalog(ctx context.Context, events []domain.Event, stalls []domain.Stall) error {
	daoEvents := make([]dao.Event, 0, len(events))
	for _, e := range events {
		daoEvents = append(daoEvents, r.eventDomainToDao(e))
	}

	daoStalls := make([]dao.Stall, 0, len(stalls))
	for _, s := range stalls {
		daoStalls = append(daoStalls, r.stallDomainToDao(s))
	}

	if err := r.dao.ReplaceCatalog(ctx, daoEvents, daoStalls); err != nil {
		return fmt.Errorf("r.dao.ReplaceCatalog -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) ClearCatalog(ctx context.Context) error {
	if err := r.dao.ClearCatalog(ctx); err != nil {
		return fmt.Errorf("r.dao.ClearCatalog -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) eventsDaoToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, 0, len(events))
	for _, e := range events {
		result = append(result, r.eventDaoToDomain(e))
	}

	return result
}

func (r *CatalogRepository) eventDaoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                 e.ID,
		Title:              e.Title,
		Category:           domain.EventCategory(e.Category),
		Department:         e.Department,
		ShortDescription:   e.ShortDescription,
		FullDescription:    e.FullDescription,
		Date:               e.Date,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		Venue:              e.Venue,
		TeamSize:           e.TeamSize,
		RegistrationFee:    e.RegistrationFee,
		Prize:              e.Prize,
		Rules:              nonNil(e.Rules),
		Tags:               nonNil(e.Tags),
		Image:              e.Image,
		FacultyCoordinator: e.FacultyCoordinator,
		StudentCoordinator: e.StudentCoordinator,
	}
}

func (r *CatalogRepository) eventDomainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                 e.ID,
		Title:              e.Title,
		Category:           string(e.Category),
		Department:         e.Department,
		ShortDescription:   e.ShortDescription,
		FullDescription:    e.FullDescription,
		Date:               e.Date,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		Venue:              e.Venue,
		TeamSize:           e.TeamSize,
		RegistrationFee:    e.RegistrationFee,
		Prize:              e.Prize,
		Rules:              e.Rules,
		Tags:               e.Tags,
		Image:              e.Image,
		FacultyCoordinator: e.FacultyCoordinator,
		StudentCoordinator: e.StudentCoordinator,
	}
}

func (r *CatalogRepository) stallDaoToDomain(s dao.Stall) domain.Stall {
	hours := make([]domain.OpeningHours, 0, len(s.OpeningHours))
	for _, h := range s.OpeningHours {
		hours = append(hours, domain.OpeningHours{Day: h.Day, Open: h.Open, Close: h.Close})
	}
	contact := s.Contact.Data()

	return domain.Stall{
		ID:           s.ID,
		Name:         s.Name,
		Category:     s.Category,
		Description:  s.Description,
		Owner:        s.Owner,
		Booth:        s.Booth,
		Location:     s.Location,
		Items:        nonNil(s.Items),
		PriceRange:   s.PriceRange,
		OpeningHours: hours,
		Contact:      domain.StallContact{Phone: contact.Phone, Email: contact.Email},
		Image:        s.Image,
	}
}

func (r *CatalogRepository) stallDomainToDao(s domain.Stall) dao.Stall {
	hours := make([]dao.OpeningHours, 0, len(s.OpeningHours))
	for _, h := range s.OpeningHours {
		hours = append(hours, dao.OpeningHours{Day: h.Day, Open: h.Open, Close: h.Close})
	}

	return dao.Stall{
		ID:           s.ID,
		Name:         s.Name,
		Category:     s.Category,
		Description:  s.Description,
		Owner:        s.Owner,
		Booth:        s.Booth,
		Location:     s.Location,
		Items:        s.Items,
		PriceRange:   s.PriceRange,
		OpeningHours: datatypes.NewJSONSlice(hours),
		Contact:      datatypes.NewJSONType(dao.StallContact{Phone: s.Contact.Phone, Email: s.Contact.Email}),
		Image:        s.Image,
	}
}

// nonNil keeps JSON output as [] instead of null for empty lists.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
