// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	Port                          string `mapstructure:"PORT"`
	DBDriver                      string `mapstructure:"DB_DRIVER"`
	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBPath                        string `mapstructure:"DB_PATH"`
	DBReadHost                    string `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string `mapstructure:"DB_READ_PORT"`
	RedisURL                      string `mapstructure:"REDIS_URL"`
	AllowedOrigins                string `mapstructure:"ALLOWED_ORIGINS"`
	Env                           string `mapstructure:"APP_ENV"`
	TracingEnabled                bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter               string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint                  string `mapstructure:"OTLP_ENDPOINT"`
	AccessTokenTTL                int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTL               int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`

	// Development-only staff account bootstrap. Never honored outside the
	// development environment.
	DevBootstrapStaff    bool   `mapstructure:"DEV_BOOTSTRAP_STAFF"`
	DevStaffUsername     string `mapstructure:"DEV_STAFF_USERNAME"`
	DevStaffEmail        string `mapstructure:"DEV_STAFF_EMAIL"`
	DevStaffPassword     string `mapstructure:"DEV_STAFF_PASSWORD"`
	DevStaffForceRefresh bool   `mapstructure:"DEV_STAFF_FORCE_REFRESH"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err == nil {
			log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
		}
	}

	viper.SetDefault("PORT", "8490")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "ripple")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_PATH", "ripple.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 30)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24*7)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
