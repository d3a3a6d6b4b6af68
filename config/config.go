package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	IPEcho  IPEchoConfig
	Geo     GeoConfig
	Recent  RecentConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port        string
	MetricsPort string
}

type StoreConfig struct {
	LogFile string
}

type IPEchoConfig struct {
	URL     string
	Timeout time.Duration
}

type GeoConfig struct {
	Provider string
	URL      string
	MMDBPath string
	Timeout  time.Duration
}

type RecentConfig struct {
	Limit int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("error while loading .env file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:        cast.ToString(coalesce("SERVER_PORT", ":8080")),
			MetricsPort: cast.ToString(coalesce("METRICS_PORT", ":8081")),
		},
		Store: StoreConfig{
			LogFile: cast.ToString(coalesce("VISITOR_LOG_FILE", "visitors.json")),
		},
		IPEcho: IPEchoConfig{
			URL:     cast.ToString(coalesce("IP_ECHO_URL", "https://api.ipify.org")),
			Timeout: parseDuration("IP_ECHO_TIMEOUT", 3*time.Second),
		},
		Geo: GeoConfig{
			Provider: cast.ToString(coalesce("GEO_PROVIDER", "http")),
			URL:      cast.ToString(coalesce("GEO_URL", "http://ip-api.com/json")),
			MMDBPath: cast.ToString(coalesce("GEO_MMDB_PATH", "GeoLite2-City.mmdb")),
			Timeout:  parseDuration("GEO_TIMEOUT", 3*time.Second),
		},
		Recent: RecentConfig{
			Limit: cast.ToInt(coalesce("RECENT_LIMIT", 15)),
		},
		Logging: LoggingConfig{
			Level:  cast.ToString(coalesce("LOG_LEVEL", "info")),
			Format: cast.ToString(coalesce("LOG_FORMAT", "json")),
		},
	}
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(cast.ToString(coalesce(key, fallback.String())))
	if err != nil {
		log.Printf("invalid %s, using default %s: %v", key, fallback, err)
		return fallback
	}
	return d
}

func coalesce(key string, value interface{}) interface{} {
	val, exist := os.LookupEnv(key)
	if exist {
		return val
	}
	return value
}
