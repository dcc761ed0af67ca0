package config

import (
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Training      TrainingConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSOrigins        string
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	UserDBPath     string
}

type StorageConfig struct {
	DataDir     string
	UploadDir   string
	MemoryPath  string
	BundlePath  string
	ArchivePath string
	SeedCSVPath string
}

type TrainingConfig struct {
	DefaultEpochs   int
	DefaultClusters int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	CronEnabled    bool
	CronSpec       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "changeme"),
			AccessTokenTTL: time.Duration(getEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,
			UserDBPath:     getEnv("USER_DB_PATH", dataDir+"/users.db"),
		},
		Storage: StorageConfig{
			DataDir:     dataDir,
			UploadDir:   getEnv("UPLOAD_DIR", dataDir+"/uploads"),
			MemoryPath:  getEnv("MEMORY_PATH", dataDir+"/ai_memory.json"),
			BundlePath:  getEnv("BUNDLE_PATH", dataDir+"/model_bundle.json"),
			ArchivePath: getEnv("ARCHIVE_DB_PATH", dataDir+"/sales.db"),
			SeedCSVPath: getEnv("SEED_CSV_PATH", ""),
		},
		Training: TrainingConfig{
			DefaultEpochs:   getEnvAsInt("TRAINING_DEFAULT_EPOCHS", 30),
			DefaultClusters: getEnvAsInt("TRAINING_DEFAULT_CLUSTERS", 3),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			CronEnabled:    getEnvAsBool("CRON_ENABLED", true),
			CronSpec:       getEnv("CRON_SPEC", "0 3 * * *"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
