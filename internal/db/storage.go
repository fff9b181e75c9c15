package db

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/urcet/yourfest-api/internal/config"
	"github.com/urcet/yourfest-api/internal/repository"
	"github.com/urcet/yourfest-api/internal/repository/dao"
	"github.com/urcet/yourfest-api/internal/repository/dao/memdao"
)

// Storage is the pair of backends the repositories are built on.
type Storage struct {
	Catalog       repository.CatalogDAO
	Registrations repository.RegistrationDAO
	Close         func() error
}

// OpenStorage connects the configured driver. For postgres, DATABASE_URL
// takes precedence over the postgres section and the schema is migrated.
func OpenStorage(conf *config.AppConfig) (*Storage, error) {
	if conf.Storage.Driver == config.StorageDriverMemory {
		store := memdao.New()
		return &Storage{
			Catalog:       store,
			Registrations: store,
			Close:         func() error { return nil },
		}, nil
	}

	var (
		postgresDB *gorm.DB
		err        error
	)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		postgresDB, err = OpenPostgresWithURL(url)
	} else {
		postgresDB, err = OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return nil, err
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	sqlDB, err := postgresDB.DB()
	if err != nil {
		return nil, fmt.Errorf("postgresDB.DB -> %w", err)
	}

	return &Storage{
		Catalog:       dao.NewCatalogDAO(postgresDB),
		Registrations: dao.NewRegistrationDAO(postgresDB),
		Close:         sqlDB.Close,
	}, nil
}
