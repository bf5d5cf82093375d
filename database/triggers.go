package database

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/utils"
)

// Triggers back the model hooks at the database level, so raw SQL cannot
// rewrite an item snapshot or delete an order either.
var sqliteTriggers = []string{
	`CREATE TRIGGER IF NOT EXISTS order_items_immutable
	BEFORE UPDATE OF product_id, price, quantity ON order_items
	BEGIN
		SELECT RAISE(ABORT, 'order items are immutable');
	END`,
	`CREATE TRIGGER IF NOT EXISTS orders_no_delete
	BEFORE DELETE ON orders
	BEGIN
		SELECT RAISE(ABORT, 'orders cannot be deleted');
	END`,
}

var mysqlTriggers = []string{
	`DROP TRIGGER IF EXISTS order_items_immutable`,
	`CREATE TRIGGER order_items_immutable
	BEFORE UPDATE ON order_items FOR EACH ROW
	BEGIN
		IF NEW.product_id <> OLD.product_id OR NEW.price <> OLD.price OR NEW.quantity <> OLD.quantity THEN
			SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'order items are immutable';
		END IF;
	END`,
	`DROP TRIGGER IF EXISTS orders_no_delete`,
	`CREATE TRIGGER orders_no_delete
	BEFORE DELETE ON orders FOR EACH ROW
	BEGIN
		SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'orders cannot be deleted';
	END`,
}

func ExecuteTriggers(db *gorm.DB) error {
	statements := sqliteTriggers
	if db.Dialector.Name() == "mysql" {
		statements = mysqlTriggers
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
			return err
		}
	}

	names, err := InstalledTriggers(db)
	if err != nil {
		return err
	}
	for _, name := range names {
		utils.InfoLogger.Printf("Trigger verified: %s", name)
	}
	return nil
}

func InstalledTriggers(db *gorm.DB) ([]string, error) {
	var names []string
	var err error
	if db.Dialector.Name() == "mysql" {
		err = db.Raw(`SELECT TRIGGER_NAME FROM information_schema.triggers WHERE TRIGGER_SCHEMA = DATABASE() ORDER BY TRIGGER_NAME`).Scan(&names).Error
	} else {
		err = db.Raw(`SELECT name FROM sqlite_master WHERE type = 'trigger' ORDER BY name`).Scan(&names).Error
	}
	return names, err
}
