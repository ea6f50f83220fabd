// internal/config/config.go
package config

import (
	"fmt"
	"sync"

	"github.com/andresuchdata/stockline/internal/inventory"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Engine    EngineConfig
	LogLevel  string
	LogFormat string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConcurrentTx int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket receiving exported reports
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// EngineConfig carries the tunable constants of the policy and forecast formulas
type EngineConfig struct {
	SmoothingAlpha      float64
	ServiceLevelZ       float64
	DemandVariability   float64
	DaysPerYear         float64
	ForecastHorizonDays int
	DemandWindowDays    int
}

// Parameters converts the engine settings into formula parameters. Out-of-range values
// are rejected rather than replaced, so a misconfigured constant never goes unnoticed.
func (e EngineConfig) Parameters() (inventory.Parameters, error) {
	switch {
	case e.SmoothingAlpha <= 0 || e.SmoothingAlpha > 1:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_SMOOTHING_ALPHA must be in (0, 1], got %v", e.SmoothingAlpha)
	case e.ServiceLevelZ <= 0:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_SERVICE_LEVEL_Z must be greater than zero, got %v", e.ServiceLevelZ)
	case e.DemandVariability <= 0:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_DEMAND_VARIABILITY must be greater than zero, got %v", e.DemandVariability)
	case e.DaysPerYear <= 0:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_DAYS_PER_YEAR must be greater than zero, got %v", e.DaysPerYear)
	case e.ForecastHorizonDays <= 0:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_FORECAST_HORIZON_DAYS must be greater than zero, got %d", e.ForecastHorizonDays)
	case e.DemandWindowDays <= 0:
		return inventory.Parameters{}, fmt.Errorf("ENGINE_DEMAND_WINDOW_DAYS must be greater than zero, got %d", e.DemandWindowDays)
	}

	return inventory.Parameters{
		SmoothingAlpha:      e.SmoothingAlpha,
		ServiceLevelZ:       e.ServiceLevelZ,
		DemandVariability:   e.DemandVariability,
		DaysPerYear:         e.DaysPerYear,
		ForecastHorizonDays: e.ForecastHorizonDays,
		DemandWindowDays:    e.DemandWindowDays,
	}, nil
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults(viper.GetViper())

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "stockline")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)

	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "reports/")

	v.SetDefault("ENGINE_SMOOTHING_ALPHA", 0.3)
	v.SetDefault("ENGINE_SERVICE_LEVEL_Z", 1.64)
	v.SetDefault("ENGINE_DEMAND_VARIABILITY", 0.20)
	v.SetDefault("ENGINE_DAYS_PER_YEAR", 360)
	v.SetDefault("ENGINE_FORECAST_HORIZON_DAYS", 30)
	v.SetDefault("ENGINE_DEMAND_WINDOW_DAYS", 30)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConcurrentTx: v.GetInt("DB_MAX_CONCURRENT_TX"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			ForecastTTLSeconds: v.GetInt("CACHE_FORECAST_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Engine: EngineConfig{
			SmoothingAlpha:      v.GetFloat64("ENGINE_SMOOTHING_ALPHA"),
			ServiceLevelZ:       v.GetFloat64("ENGINE_SERVICE_LEVEL_Z"),
			DemandVariability:   v.GetFloat64("ENGINE_DEMAND_VARIABILITY"),
			DaysPerYear:         v.GetFloat64("ENGINE_DAYS_PER_YEAR"),
			ForecastHorizonDays: v.GetInt("ENGINE_FORECAST_HORIZON_DAYS"),
			DemandWindowDays:    v.GetInt("ENGINE_DEMAND_WINDOW_DAYS"),
		},
	}
}
