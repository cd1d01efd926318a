package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&site.Draft{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
