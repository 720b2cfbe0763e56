package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/internal/user"
	"github.com/frahmantamala/attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		for _, key := range []string{"APP_ENV", "DOCKER_ENV", "ENV_DATABASE_DRIVER"} {
			if old, ok := os.LookupEnv(key); ok {
				Expect(os.Unsetenv(key)).To(Succeed())
				DeferCleanup(os.Setenv, key, old)
			}
		}
	})

	writeConfig := func(body string) {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
	}

	It("falls back to defaults without a config file", func() {
		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Company.Timezone).To(Equal(clock.DefaultTimezone))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(12 * time.Hour))
	})

	It("overlays the file on the defaults", func() {
		writeConfig(`
env: staging
http_server:
  port: 9090
  read_header_timeout: 2s
company:
  radius_meters: 350
  default_in: "09:30"
`)
		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Env).To(Equal("staging"))
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Server.ReadHeaderTimeout).To(Equal(2 * time.Second))
		Expect(cfg.Company.RadiusMeters).To(Equal(350.0))
		Expect(cfg.Company.DefaultIn).To(Equal("09:30"))
		Expect(cfg.Company.DefaultOut).To(Equal("17:00"))
	})

	It("lets prefixed environment variables win", func() {
		DeferCleanup(os.Unsetenv, "ENV_DATABASE_DRIVER")
		Expect(os.Setenv("ENV_DATABASE_DRIVER", "postgres")).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("postgres"))
	})

	It("rejects an invalid configuration", func() {
		writeConfig(`
database:
  driver: mysql
company:
  timezone: Mars/Olympus
`)
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("Driver")))
		Expect(err).To(MatchError(ContainSubstring("timezone")))
	})
})

var _ = Describe("seed", func() {
	It("creates the default teams and administrator once", func() {
		ctx := context.Background()
		db, err := storage.OpenMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		cfg := internal.DefaultConfig()
		cfg.Security.BCryptCost = 4
		deps := NewDependencies(&cfg, db, clock.New(cfg.Company.Timezone), logger.Discard())

		Expect(seed(ctx, deps)).To(Succeed())
		Expect(seed(ctx, deps)).To(Succeed())

		teams, err := deps.Teams.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(teams).To(HaveLen(len(seedTeams)))

		employees, err := deps.Users.ListEmployees(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(employees).To(HaveLen(1))
		Expect(employees[0].Email).To(Equal(seedAdminEmail))
		Expect(employees[0].Role).To(Equal("admin"))
	})
})

var _ = Describe("prepare", func() {
	var (
		ctx  context.Context
		deps *Dependencies
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := storage.OpenSQLite(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		cfg := internal.DefaultConfig()
		cfg.Security.BCryptCost = 4
		deps = NewDependencies(&cfg, db, clock.New(cfg.Company.Timezone), logger.Discard())
	})

	It("migrates a fresh database and seeds the defaults", func() {
		Expect(prepare(ctx, deps, true, true)).To(Succeed())

		teams, err := deps.Teams.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(teams).To(HaveLen(len(seedTeams)))

		resp, err := deps.Users.Login(ctx, user.LoginRequest{Email: seedAdminEmail, Password: deps.Config.Security.DefaultPassword})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.User.Role).To(Equal("admin"))
	})

	It("keeps starting when seeding fails", func() {
		Expect(prepare(ctx, deps, false, true)).To(Succeed())
	})

	It("leaves the database empty when seeding is off", func() {
		Expect(prepare(ctx, deps, true, false)).To(Succeed())

		teams, err := deps.Teams.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(teams).To(BeEmpty())
	})
})
