package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Malformed lock policies
const (
	PolicyFail    = "fail"
	PolicyReclaim = "reclaim"
	PolicySkip    = "skip"
)

type Config struct {
	Server   ServerConfig
	Firebase FirebaseConfig
	Sweep    SweepConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type SweepConfig struct {
	GroupsCollection      string
	WhiteboardsCollection string
	LockField             string
	PageSize              int
	DryRun                bool
	MalformedPolicy       string
	DeleteRPS             int
	DeleteBurst           int
	Schedule              string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	HistoryTTL time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Sweep: SweepConfig{
			GroupsCollection:      getEnv("SWEEP_GROUPS_COLLECTION", "SharedGroups"),
			WhiteboardsCollection: getEnv("SWEEP_WHITEBOARDS_COLLECTION", "whiteboards"),
			LockField:             getEnv("SWEEP_LOCK_FIELD", "editLock"),
			PageSize:              getEnvAsInt("SWEEP_PAGE_SIZE", 200),
			DryRun:                getEnvAsBool("SWEEP_DRY_RUN", false),
			MalformedPolicy:       strings.ToLower(getEnv("MALFORMED_LOCK_POLICY", PolicyFail)),
			DeleteRPS:             getEnvAsInt("SWEEP_DELETE_RPS", 20),
			DeleteBurst:           getEnvAsInt("SWEEP_DELETE_BURST", 5),
			Schedule:              getEnv("SWEEP_SCHEDULE", "0 */5 * * * *"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			HistoryTTL: getEnvAsDuration("REPORT_HISTORY_TTL", 7*24*time.Hour),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Sweep.GroupsCollection == "" {
		return fmt.Errorf("SWEEP_GROUPS_COLLECTION is required")
	}
	if c.Sweep.WhiteboardsCollection == "" {
		return fmt.Errorf("SWEEP_WHITEBOARDS_COLLECTION is required")
	}
	if c.Sweep.LockField == "" {
		return fmt.Errorf("SWEEP_LOCK_FIELD is required")
	}
	if c.Sweep.PageSize < 1 {
		return fmt.Errorf("SWEEP_PAGE_SIZE must be positive, got %d", c.Sweep.PageSize)
	}
	if c.Sweep.DeleteRPS < 0 || c.Sweep.DeleteBurst < 0 {
		return fmt.Errorf("SWEEP_DELETE_RPS and SWEEP_DELETE_BURST must not be negative")
	}

	switch c.Sweep.MalformedPolicy {
	case PolicyFail, PolicyReclaim, PolicySkip:
	default:
		return fmt.Errorf("MALFORMED_LOCK_POLICY must be one of fail, reclaim, skip; got %q", c.Sweep.MalformedPolicy)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Sweep.Schedule); err != nil {
		return fmt.Errorf("SWEEP_SCHEDULE is invalid: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
