package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/attendance/internal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Attendance tracker",
	Long:  `Geofenced clock-in/out, leave balances, schedules and team status over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	setDefaults(v, internal.DefaultConfig())
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override values
// that the config file leaves out.
func setDefaults(v *viper.Viper, d internal.Config) {
	v.SetDefault("env", d.Env)

	v.SetDefault("http_server.port", d.Server.Port)
	v.SetDefault("http_server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("http_server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.source", d.Database.Source)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime)

	v.SetDefault("security.jwt_secret", d.Security.JWTSecret)
	v.SetDefault("security.access_token_duration", d.Security.AccessTokenDuration)
	v.SetDefault("security.bcrypt_cost", d.Security.BCryptCost)
	v.SetDefault("security.default_password", d.Security.DefaultPassword)
	v.SetDefault("security.enforce_admin", d.Security.EnforceAdmin)

	v.SetDefault("company.timezone", d.Company.Timezone)
	v.SetDefault("company.latitude", d.Company.Latitude)
	v.SetDefault("company.longitude", d.Company.Longitude)
	v.SetDefault("company.radius_meters", d.Company.RadiusMeters)
	v.SetDefault("company.weekly_hours", d.Company.WeeklyHours)
	v.SetDefault("company.default_in", d.Company.DefaultIn)
	v.SetDefault("company.default_out", d.Company.DefaultOut)

	v.SetDefault("observability.logging.level", d.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", d.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-dir", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
