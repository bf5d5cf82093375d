package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/config"
	"github.com/yeremiapane/food-delivery/hours"
	"github.com/yeremiapane/food-delivery/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "delivery",
	Short: "Food delivery marketplace API",
	Long: `delivery runs the REST API of a food delivery marketplace: restaurants
publish menus and opening hours, clients place orders and follow them in real time.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	rootCmd.RunE = serveCmd.RunE
}

// bootstrap loads the configuration and sets up the process-wide pieces
// every command needs.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if err := hours.SetOffset(cfg.TZOffsetMinutes); err != nil {
		return nil, err
	}
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	gin.SetMode(cfg.GinMode)
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
