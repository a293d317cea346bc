package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service     ServiceConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Chain       ChainConfig
	ObjectStore ObjectStoreConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
	PprofPort   int
	EnablePprof bool
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds session and auth-provider settings
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ProviderURL   string
	RedirectAfter string
}

// StorageConfig holds encrypted-storage API settings
type StorageConfig struct {
	BaseURL string
	APIKey  string
	// Fixed decryption password for the public demo download path; empty disables it
	DemoPassword string
}

// ChainConfig holds chain RPC and contract settings
type ChainConfig struct {
	RPCURL    string
	PackageID string
	ListingID string
	GasBudget uint64
	// CEL expression evaluated before minting; see common/policy
	ListingPolicy string
}

// ObjectStoreConfig holds S3-compatible store settings for avatar uploads
type ObjectStoreConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
			EnablePprof: getEnvBool("ENABLE_PPROF", false),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "walruspass"),
			User:        getEnv("POSTGRES_USER", "walruspass"),
			Password:    getEnv("POSTGRES_PASSWORD", "walruspass"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 50),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 10),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
			ProviderURL:   getEnv("AUTH_PROVIDER_URL", ""),
			RedirectAfter: getEnv("AUTH_REDIRECT_AFTER", "/"),
		},
		Storage: StorageConfig{
			BaseURL:      getEnv("STORAGE_API_URL", "https://api.tusky.io"),
			APIKey:       getEnv("STORAGE_API_KEY", ""),
			DemoPassword: getEnv("STORAGE_DEMO_PASSWORD", ""),
		},
		Chain: ChainConfig{
			RPCURL:    getEnv("CHAIN_RPC_URL", "https://fullnode.testnet.sui.io:443"),
			PackageID: getEnv("CHAIN_PACKAGE_ID", ""),
			ListingID: getEnv("CHAIN_LISTING_ID", ""),
			GasBudget: getEnvUint64("CHAIN_GAS_BUDGET", 100_000_000),
			// 0.1 SUI floor in MIST
			ListingPolicy: getEnv("CHAIN_LISTING_POLICY", "price >= 100000000u"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Bucket:        getEnv("S3_BUCKET", "avatars"),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	if c.Chain.GasBudget == 0 {
		return fmt.Errorf("gas budget must be positive")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
