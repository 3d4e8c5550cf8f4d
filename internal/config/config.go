package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Env               string
	Port              string
	LogLevel          string
	PostgresDSN       string
	DBPath            string
	SeedDemo          bool
	AdminPasswordHash string
	CORSOrigins       []string
	Lambda            bool
}

// Load reads configuration from the environment. Outside Lambda, .env and
// .env.local are loaded first when present.
func Load(logger zerolog.Logger) (*Config, error) {
	lambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if !lambda {
		if err := godotenv.Load(".env", ".env.local"); err != nil {
			logger.Debug().Msg(".env file not found, using environment variables or defaults")
		}
	}

	cfg := &Config{
		Env:               strings.ToLower(getEnv("APP", EnvDev)),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		DBPath:            strings.TrimSpace(os.Getenv("DB_PATH")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		Lambda:            lambda,
	}

	seedDefault := cfg.Env == EnvDev && cfg.StoreKind() == "memory"
	seed, err := getBool("SEED_DEMO", seedDefault)
	if err != nil {
		return nil, err
	}
	cfg.SeedDemo = seed

	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	}

	logger.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreKind()).
		Str("log_level", cfg.LogLevel).
		Bool("seed_demo", cfg.SeedDemo).
		Bool("admin_guard", cfg.AdminPasswordHash != "").
		Bool("lambda", cfg.Lambda).
		Msg("configuration loaded")

	return cfg, nil
}

// StoreKind names the backend selected by the environment: postgres when a DSN
// is set, sqlite when a path is set, memory otherwise.
func (c *Config) StoreKind() string {
	switch {
	case c.PostgresDSN != "":
		return "postgres"
	case c.DBPath != "":
		return "sqlite"
	}
	return "memory"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
