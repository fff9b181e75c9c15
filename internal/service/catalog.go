package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/catalog"
	"github.com/urcet/yourfest-api/internal/domain"
	"github.com/urcet/yourfest-api/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound
	ErrStallNotFound = repository.ErrStallNotFound
)

type CatalogRepository interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	FindEventByID(ctx context.Context, id string) (domain.Event, error)
	FindEventsByIDs(ctx context.Context, ids []string) ([]domain.Event, error)
	CountEvents(ctx context.Context) (int64, error)
	ListStalls(ctx context.Context) ([]domain.Stall, error)
	FindStallByID(ctx context.Context, id string) (domain.Stall, error)
	ReplaceCatalog(ctx context.Context, events []domain.Event, stalls []domain.Stall) error
	ClearCatalog(ctx context.Context) error
}

// SeedSource yields the catalog written by Seed.
type SeedSource func() ([]domain.Event, []domain.Stall, error)

type CatalogService struct {
	repo CatalogRepository
	seed SeedSource
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
		seed: catalog.Default,
	}
}

func (s *CatalogService) withSeedSource(seed SeedSource) *CatalogService {
	s.seed = seed
	return s
}

func (s *CatalogService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListEvents -> %w", err)
	}

	return events, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindEventByID -> %w", err)
	}

	return event, nil
}

func (s *CatalogService) ListStalls(ctx context.Context) ([]domain.Stall, error) {
	stalls, err := s.repo.ListStalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListStalls -> %w", err)
	}

	return stalls, nil
}

func (s *CatalogService) GetStall(ctx context.Context, id string) (domain.Stall, error) {
	stall, err := s.repo.FindStallByID(ctx, id)
	if err != nil {
		return domain.Stall{}, fmt.Errorf("s.repo.FindStallByID -> %w", err)
	}

	return stall, nil
}

type SeedResult struct {
	Events int `json:"events"`
	Stalls int `json:"stalls"`
}

// Seed replaces the whole catalog with the seed data. Registrations are
// untouched.
func (s *CatalogService) Seed(ctx context.Context) (SeedResult, error) {
	events, stalls, err := s.seed()
	if err != nil {
		return SeedResult{}, fmt.Errorf("s.seed -> %w", err)
	}

	if err = s.repo.ReplaceCatalog(ctx, events, stalls); err != nil {
		return SeedResult{}, fmt.Errorf("s.repo.ReplaceCatalog -> %w", err)
	}

	return SeedResult{Events: len(events), Stalls: len(stalls)}, nil
}

// SeedIfEmpty seeds only a catalog without events, so restarts never wipe
// data an operator has edited.
func (s *CatalogService) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.repo.CountEvents(ctx)
	if err != nil {
		return false, fmt.Errorf("s.repo.CountEvents -> %w", err)
	}
	if count > 0 {
		return false, nil
	}

	result, err := s.Seed(ctx)
	if err != nil {
		return false, err
	}
	zap.L().Info("catalog seeded", zap.Int("events", result.Events), zap.Int("stalls", result.Stalls))

	return true, nil
}

// Clear removes events and stalls. Registrations are untouched.
func (s *CatalogService) Clear(ctx context.Context) error {
	if err := s.repo.ClearCatalog(ctx); err != nil {
		return fmt.Errorf("s.repo.ClearCatalog -> %w", err)
	}

	return nil
}
