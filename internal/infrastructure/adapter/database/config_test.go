package database

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Driver:        "postgres",
		Host:          "localhost",
		Port:          5432,
		Username:      "auction",
		Password:      "secret",
		Database:      "donation_auction",
		SSLMode:       "disable",
		MaxOpenConns:  10,
		MaxIdleConns:  5,
		QueryTimeout:  5 * time.Second,
		LockTimeout:   2 * time.Second,
		RetryAttempts: 3,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "Memory driver is not a database", mutate: func(c *Config) { c.Driver = "memory" }, wantErr: "unsupported database driver"},
		{name: "Missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: "host is required"},
		{name: "Bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "invalid port"},
		{name: "Bad SSL mode", mutate: func(c *Config) { c.SSLMode = "sometimes" }, wantErr: "invalid SSL mode"},
		{name: "No lock timeout", mutate: func(c *Config) { c.LockTimeout = 0 }, wantErr: "lock timeout"},
		{name: "Negative retries", mutate: func(c *Config) { c.RetryAttempts = -1 }, wantErr: "retry attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	assert.Equal(t,
		"host=localhost port=5432 user=auction password=secret dbname=donation_auction sslmode=disable",
		validConfig().DSN())
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	for _, key := range []string{"DA_DB_HOST", "DA_DB_USERNAME", "DA_DB_PASSWORD", "DA_DB_NAME", "DA_DB_PORT"} {
		t.Setenv(key, "")
	}

	app := &config.Config{
		Database: config.DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.internal",
			Port:     "6543",
			Username: "auction",
			Password: "pw",
			Database: "auctions",
			SSLMode:  "require",
		},
		Auction: config.AuctionConfig{LockTimeoutMs: 750},
		Logger:  config.LoggerConfig{Level: "warn"},
	}

	c := CreateConfigFromAppConfig(app)

	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "require", c.SSLMode)
	assert.Equal(t, 750*time.Millisecond, c.LockTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestParsePort(t *testing.T) {
	assert.Equal(t, 5432, ParsePort("5432"))
	assert.Equal(t, 0, ParsePort("postgres"))
	assert.Equal(t, 0, ParsePort("99999"))
}
