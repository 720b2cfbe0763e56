package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env           string              `mapstructure:"env" validate:"required"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Company       CompanyConfig       `mapstructure:"company"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Source          string        `mapstructure:"source" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"min=4,max=15"`
	DefaultPassword     string        `mapstructure:"default_password" validate:"required,min=4"`
	EnforceAdmin        bool          `mapstructure:"enforce_admin"`
}

// CompanyConfig seeds the mutable company settings at startup.
type CompanyConfig struct {
	Timezone     string  `mapstructure:"timezone" validate:"required"`
	Latitude     float64 `mapstructure:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `mapstructure:"longitude" validate:"gte=-180,lte=180"`
	RadiusMeters float64 `mapstructure:"radius_meters" validate:"gt=0"`
	WeeklyHours  float64 `mapstructure:"weekly_hours" validate:"gt=0,lte=168"`
	DefaultIn    string  `mapstructure:"default_in" validate:"required,len=5"`
	DefaultOut   string  `mapstructure:"default_out" validate:"required,len=5"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DefaultConfig returns a configuration that runs against a local SQLite file.
func DefaultConfig() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			Port:              8000,
			AllowedOrigins:    "*",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Source:          "flextime.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:           "change-me-in-production-please",
			AccessTokenDuration: 12 * time.Hour,
			BCryptCost:          10,
			DefaultPassword:     "123456",
		},
		Company: CompanyConfig{
			Timezone:     "Asia/Seoul",
			Latitude:     35.84706729510516,
			Longitude:    127.14263183020292,
			RadiusMeters: 200,
			WeeklyHours:  40,
			DefaultIn:    "08:00",
			DefaultOut:   "17:00",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "debug", Format: "text"},
		},
	}
}

// LoadConfigFromEnv builds the configuration from plain environment variables,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	// DATABASE_URL switches to the client-server database.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.Driver = "postgres"
		cfg.Database.Source = strings.Replace(dsn, "postgres://", "postgresql://", 1)
	} else {
		cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
		cfg.Database.Source = getEnv("DB_SOURCE", cfg.Database.Source)
	}
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.BCryptCost = getEnvAsInt("BCRYPT_COST", cfg.Security.BCryptCost)
	cfg.Security.DefaultPassword = getEnv("DEFAULT_PASSWORD", cfg.Security.DefaultPassword)
	cfg.Security.EnforceAdmin = getEnv("ENFORCE_ADMIN", "false") == "true"

	cfg.Company.Timezone = getEnv("COMPANY_TIMEZONE", cfg.Company.Timezone)
	cfg.Company.Latitude = getEnvAsFloat("COMPANY_LATITUDE", cfg.Company.Latitude)
	cfg.Company.Longitude = getEnvAsFloat("COMPANY_LONGITUDE", cfg.Company.Longitude)
	cfg.Company.RadiusMeters = getEnvAsFloat("COMPANY_RADIUS_METERS", cfg.Company.RadiusMeters)
	cfg.Company.WeeklyHours = getEnvAsFloat("COMPANY_WEEKLY_HOURS", cfg.Company.WeeklyHours)

	if cfg.Env == "production" {
		cfg.Observability.Logging = LoggingConfig{Level: "info", Format: "json"}
	}
	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return &cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Company.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("company config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *CompanyConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	for _, hm := range []string{c.DefaultIn, c.DefaultOut} {
		if _, err := time.Parse("15:04", hm); err != nil {
			return fmt.Errorf("default times must be HH:MM, got %q", hm)
		}
	}
	if c.DefaultOut < c.DefaultIn {
		return errors.New("default_out must not be earlier than default_in")
	}
	return nil
}
