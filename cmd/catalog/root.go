package main

import (
	"ai-shopping-assistant-be/internal/bootstrap"
	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the shopping assistant product catalog",
	Long: `catalog migrates the database, seeds products, re-embeds products
whose vectors are missing and runs searches against the live catalog.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL statements")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(migrateCmd, seedCmd, reembedCmd, searchCmd)
}

// openDatabase returns nil when no DSN is configured.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, nil
	}
	return database.NewGormDBFromDSN(cfg.Database.Connection, verbose)
}

func openCatalog(cfg *config.Config) (*bootstrap.Catalog, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		warn("DB_CONNECTION_STRING is not set, working on an empty in-memory catalog")
	}
	return bootstrap.NewCatalog(db, cfg, logger.NewNopLogger())
}
