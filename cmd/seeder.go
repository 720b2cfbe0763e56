package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/pkg/logger"

	"github.com/spf13/cobra"
)

var seedTeams = []string{"개발팀", "기획팀", "연구팀"}

const (
	seedAdminName  = "관리자"
	seedAdminEmail = "admin@jbuh.kr"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default teams and administrator",
	Long:  `Create the default teams and an administrator account with the configured default password. Existing rows are left alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Env, logger.WithFormat(cfg.Observability.Logging.Format), logger.WithLevel(cfg.Observability.Logging.Level))

		db, err := storage.Open(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}

		deps := NewDependencies(cfg, db, clock.New(cfg.Company.Timezone), logger.LoggerWrapper())
		if err := seed(ctx, deps); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	},
}

func seed(ctx context.Context, deps *Dependencies) error {
	for _, name := range seedTeams {
		if _, err := deps.Teams.Create(ctx, name); err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeConflict {
				fmt.Println("team already exists:", name)
				continue
			}
			return fmt.Errorf("seed team %s: %w", name, err)
		}
		fmt.Println("Seeded team:", name)
	}

	created, err := deps.Users.EnsureAdmin(ctx, seedAdminName, seedAdminEmail)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Println("Seeded admin user:", seedAdminEmail)
	} else {
		fmt.Println("admin user already exists:", seedAdminEmail)
	}
	return nil
}
