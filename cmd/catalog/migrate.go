package main

import (
	"errors"

	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/model"
	"ai-shopping-assistant-be/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create extensions, tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if db == nil {
			return errors.New("DB_CONNECTION_STRING is not set")
		}

		if err := database.Migrate(db, model.All()...); err != nil {
			failure("Migration failed: %v", err)
			return err
		}
		success("Migrated %d tables", len(model.All()))
		return nil
	},
}
