package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTicketIDExists       = errors.New("ticket id already issued")
)

type Registration struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement:false"`
	TicketID        string         `gorm:"uniqueIndex:uni_registrations_ticket_id;not null"`
	EventIDs        pq.StringArray `gorm:"type:text[];not null"`
	TeamName        string
	ParticipantName string `gorm:"not null"`
	Email           string `gorm:"not null;index"`
	Phone           string `gorm:"not null"`
	RollNumber      string `gorm:"not null"`
	Branch          string `gorm:"not null"`
	Year            string `gorm:"not null"`
	EducationLevel  string `gorm:"not null"`
	Institution     string `gorm:"not null"`
	Category        string `gorm:"not null"` // "tech", "cultural" or "both"
	TotalEvents     int    `gorm:"not null"`
	FreeEvents      int    `gorm:"not null"`
	OriginalAmount  int    `gorm:"not null"`
	DiscountAmount  int    `gorm:"not null"`
	FinalAmount     int    `gorm:"not null"`
	QRCode          string `gorm:"type:text;not null"`
	CreatedAt       time.Time
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// NextSequence draws the next ticket number. Concurrent callers always
// receive distinct values.
func (d *RegistrationDAO) NextSequence(ctx context.Context) (uint64, error) {
	var seq uint64
	if err := d.db.WithContext(ctx).Raw("SELECT nextval(?::regclass)", RegistrationSequence).Scan(&seq).Error; err != nil {
		return 0, err
	}

	return seq, nil
}

func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&registration)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Registration{}, ErrTicketIDExists
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByTicketID(ctx context.Context, ticketID string) (Registration, error) {
	var registration Registration
	err := d.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&registration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Registration{}, ErrRegistrationNotFound
	}

	return registration, err
}

func (d *RegistrationDAO) List(ctx context.Context) ([]Registration, error) {
	var registrations []Registration
	if err := d.db.WithContext(ctx).Order("id").Find(&registrations).Error; err != nil {
		return nil, err
	}

	return registrations, nil
}

// DeleteAll removes every registration. The sequence keeps its position.
func (d *RegistrationDAO) DeleteAll(ctx context.Context) (int64, error) {
	result := d.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Registration{})

	return result.RowsAffected, result.Error
}
