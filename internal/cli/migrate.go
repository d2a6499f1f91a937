package cli

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

//go:embed schema.sql
var schema string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the listings and messages tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		db, err := sqlx.ConnectContext(cmd.Context(), "postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()

		if err := applySchema(db); err != nil {
			return err
		}
		logger.Info("schema applied")
		return nil
	},
}

func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
