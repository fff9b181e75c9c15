package dao

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrStallNotFound = errors.New("stall not found")
)

type Event struct {
	ID                 string `gorm:"primaryKey"`
	Title              string `gorm:"not null"`
	Category           string `gorm:"not null;index"` // "tech" or "cultural"
	Department         string `gorm:"not null"`
	ShortDescription   string
	FullDescription    string
	Date               string `gorm:"not null"`
	StartTime          string
	EndTime            string
	Venue              string
	TeamSize           int `gorm:"not null;default:1"`
	RegistrationFee    int `gorm:"not null"`
	Prize              string
	Rules              pq.StringArray `gorm:"type:text[]"`
	Tags               pq.StringArray `gorm:"type:text[]"`
	Image              string
	FacultyCoordinator string
	StudentCoordinator string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type OpeningHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type StallContact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Stall struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Category     string `gorm:"not null"`
	Description  string
	Owner        string
	Booth        string
	Location     string
	Items        pq.StringArray `gorm:"type:text[]"`
	PriceRange   string
	OpeningHours datatypes.JSONSlice[OpeningHours] `gorm:"type:jsonb"`
	Contact      datatypes.JSONType[StallContact]  `gorm:"type:jsonb"`
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := d.db.WithContext(ctx).Order("id").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (d *CatalogDAO) FindEventByID(ctx context.Context, id string) (Event, error) {
	var event Event
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Event{}, ErrEventNotFound
	}

	return event, err
}

// FindEventsByIDs returns the events that exist among ids, ordered by id.
// Unknown ids are silently skipped.
func (d *CatalogDAO) FindEventsByIDs(ctx context.Context, ids []string) ([]Event, error) {
	var events []Event
	if len(ids) == 0 {
		return events, nil
	}

	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (d *CatalogDAO) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&Event{}).Count(&count).Error

	return count, err
}

func (d *CatalogDAO) ListStalls(ctx context.Context) ([]Stall, error) {
	var stalls []Stall
	if err := d.db.WithContext(ctx).Order("id").Find(&stalls).Error; err != nil {
		return nil, err
	}

	return stalls, nil
}

func (d *CatalogDAO) FindStallByID(ctx context.Context, id string) (Stall, error) {
	var stall Stall
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&stall).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Stall{}, ErrStallNotFound
	}

	return stall, err
}

// ReplaceCatalog swaps the whole reference data set in one transaction.
func (d *CatalogDAO) ReplaceCatalog(ctx context.Context, events []Event, stalls []Stall) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearCatalog(tx); err != nil {
			return err
		}

		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}

		if len(stalls) > 0 {
			if err := tx.Create(&stalls).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *CatalogDAO) ClearCatalog(ctx context.Context) error {
	return d.db.WithContext(ctx).Transaction(clearCatalog)
}

func clearCatalog(tx *gorm.DB) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Event{}).Error; err != nil {
		return err
	}

	return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Stall{}).Error
}
