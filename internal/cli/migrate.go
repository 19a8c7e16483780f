package cli

import (
	"fmt"

	"github.com/collabtrack/server/internal/database"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("database migration failed: %w", err)
			}
			logger.Info("database_migrated", map[string]interface{}{
				"driver": a.cfg.DB.Driver,
				"tables": len(database.Models()),
			})
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}
}

func (a *app) openDB() (*gorm.DB, error) {
	db, err := database.Connect(a.cfg.DB)
	if err != nil {
		return nil, err
	}
	return db, nil
}
