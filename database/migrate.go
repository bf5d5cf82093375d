package database

import (
	"fmt"

	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Restaurant{},
		&models.Hour{},
		&models.Product{},
		&models.Address{},
		&models.Favorite{},
		&models.Order{},
		&models.OrderItem{},
	}
}

// Migrate creates or updates the schema and installs the triggers.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := ExecuteTriggers(db); err != nil {
		return fmt.Errorf("triggers: %w", err)
	}
	return nil
}
