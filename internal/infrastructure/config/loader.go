package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "DA"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Defaults plus environment overrides are enough to start
	}

	return decode(v, env)
}

// LoadFromViper decodes an already populated viper instance
func LoadFromViper(v *viper.Viper, env string) (*Config, error) {
	setDefaults(v)
	return decode(v, env)
}

func decode(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	processDurations(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.backend", "zap")

	v.SetDefault("auction.lockTimeoutMs", 2000)
	v.SetDefault("auction.duplicateBidWindowSeconds", 10)
	v.SetDefault("auction.listLimit", 20)

	v.SetDefault("rateLimit.bidsPerSecond", 5)
	v.SetDefault("rateLimit.burst", 10)

	v.SetDefault("cors.allowedOrigins", []string{"*"})
}

// getEnvironment determines the environment to use based on DA_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides makes sure secrets and deployment settings from the
// environment win over file values, including nested keys AutomaticEnv misses
func processEnvOverrides(v *viper.Viper) {
	stringOverrides := map[string]string{
		"DA_DB_DRIVER":      "database.driver",
		"DA_DB_HOST":        "database.host",
		"DA_DB_PORT":        "database.port",
		"DA_DB_USERNAME":    "database.username",
		"DA_DB_PASSWORD":    "database.password",
		"DA_DB_NAME":        "database.database",
		"DA_DB_SSL_MODE":    "database.sslMode",
		"DA_SERVER_HOST":    "server.host",
		"DA_LOGGER_LEVEL":   "logger.level",
		"DA_LOGGER_BACKEND": "logger.backend",
	}
	for env, key := range stringOverrides {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}

	intOverrides := map[string]string{
		"DA_SERVER_PORT":                   "server.port",
		"DA_DB_MAX_OPEN_CONNS":             "database.maxOpenConns",
		"DA_DB_MAX_IDLE_CONNS":             "database.maxIdleConns",
		"DA_DB_QUERY_TIMEOUT_SECONDS":      "database.queryTimeout",
		"DA_DB_RETRY_ATTEMPTS":             "database.retryAttempts",
		"DA_AUCTION_LOCK_TIMEOUT_MS":       "auction.lockTimeoutMs",
		"DA_AUCTION_DUPLICATE_WINDOW_SECS": "auction.duplicateBidWindowSeconds",
		"DA_RATE_LIMIT_BURST":              "rateLimit.burst",
	}
	for env, key := range intOverrides {
		if val, ok := getEnvInt(env); ok {
			v.Set(key, val)
		}
	}

	if rps := os.Getenv("DA_RATE_LIMIT_BIDS_PER_SECOND"); rps != "" {
		if f, err := strconv.ParseFloat(rps, 64); err == nil {
			v.Set("rateLimit.bidsPerSecond", f)
		}
	}
	if origins := os.Getenv("DA_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("cors.allowedOrigins", strings.Split(origins, ","))
	}
}

// getEnvInt reads an integer environment variable
func getEnvInt(name string) (int, bool) {
	valStr := os.Getenv(name)
	if valStr == "" {
		return 0, false
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, false
	}
	return val, true
}

// processDurations converts raw numeric values to durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auction.LockTimeoutMs <= 0 {
		return fmt.Errorf("auction lock timeout must be positive, got: %d", c.Auction.LockTimeoutMs)
	}
	if c.Auction.DuplicateBidWindowSeconds < 0 {
		return fmt.Errorf("duplicate bid window must be non-negative, got: %d", c.Auction.DuplicateBidWindowSeconds)
	}
	if c.RateLimit.BidsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must be non-negative")
	}
	return nil
}
