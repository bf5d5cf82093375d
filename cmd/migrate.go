package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeremiapane/food-delivery/database"
	"github.com/yeremiapane/food-delivery/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		triggers, err := database.InstalledTriggers(db)
		if err != nil {
			return err
		}
		utils.InfoLogger.Printf("Installed triggers: %v", triggers)
		return nil
	},
}
