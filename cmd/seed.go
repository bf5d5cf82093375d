package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yeremiapane/food-delivery/database"
)

var seedOpts database.SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo restaurants and clients",
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
		seedOpts.Progress = os.Stderr
		_, err = database.Seed(cmd.Context(), db, seedOpts)
		return err
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Restaurants, "restaurants", 10, "Number of restaurants")
	seedCmd.Flags().IntVar(&seedOpts.ProductsPerRestaurant, "products", 8, "Products per restaurant")
	seedCmd.Flags().IntVar(&seedOpts.Clients, "clients", 20, "Number of clients")
	seedCmd.Flags().StringVar(&seedOpts.Password, "password", "secret123", "Password for every seeded account")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 42, "Random seed")
}
