package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Unsupported driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Sqlite driver accepted", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"Production with default DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production fully configured", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        "development",
				Port:       "8490",
				DBDriver:   "postgres",
				DBPassword: "secure-password",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				RedisURL:   "localhost:6379",
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8490", c.Port)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, 30, c.AccessTokenTTL)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_DRIVER")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_DRIVER", "sqlite")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
}
