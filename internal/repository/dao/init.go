package dao

import (
	"fmt"

	"gorm.io/gorm"
)

// RegistrationSequence backs ticket number allocation. It is never reset,
// so numbers burned by failed registrations are not reissued.
const RegistrationSequence = "registration_seq"

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Event{},
		&Stall{},
		&Registration{},
	); err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS " + RegistrationSequence).Error; err != nil {
		return fmt.Errorf("create sequence -> %w", err)
	}

	return nil
}

// dropAllTables is used by the integration tests to start from an empty schema.
func dropAllTables(db *gorm.DB) error {
	var tableNames []string
	if err := db.Table("information_schema.tables").
		Where("table_schema = ?", "public").
		Pluck("table_name", &tableNames).Error; err != nil {
		return err
	}

	for _, tableName := range tableNames {
		if err := db.Exec("DROP TABLE IF EXISTS " + tableName + " CASCADE").Error; err != nil {
			return err
		}
	}

	return db.Exec("DROP SEQUENCE IF EXISTS " + RegistrationSequence).Error
}
