package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the embedded sql migrations for the configured database driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Env, logger.WithFormat(cfg.Observability.Logging.Format), logger.WithLevel(cfg.Observability.Logging.Level))
	log := logger.LoggerWrapper()

	db, err := storage.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if migrateRollback {
		err = db.Rollback(ctx)
	} else {
		err = db.Migrate(ctx)
	}
	if err != nil {
		return err
	}

	version, err := db.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("migration finished", "driver", db.Dialect, "rollback", migrateRollback, "version", version)
	return nil
}
