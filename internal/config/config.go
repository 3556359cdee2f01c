package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	StoreDriver string // memory | sqlite
	StoreDSN    string

	SeedFile           string
	SeedDemo           bool
	DefaultMarketplace string

	SuggestThreshold float64
	SuggestLimit     int
}

// Load reads the environment, after applying a .env file if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Host:               getenv("HOST", "127.0.0.1"),
		Port:               atoi(getenv("PORT", "8082"), 8082),
		AllowOrigins:       splitList(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFile:            getenv("LOG_FILE", "logs/msku-service.log"),
		MaxUploadMB:        atoi(getenv("MAX_UPLOAD_MB", "64"), 64),
		StoreDriver:        strings.ToLower(getenv("STORE_DRIVER", "memory")),
		StoreDSN:           getenv("STORE_DSN", "data/msku.db"),
		SeedFile:           getenv("SEED_FILE", ""),
		SeedDemo:           toBool(getenv("SEED_DEMO", "false")),
		DefaultMarketplace: getenv("DEFAULT_MARKETPLACE", "Unknown"),
		SuggestThreshold:   toFloat(getenv("SUGGEST_THRESHOLD", "0.6"), 0.6),
		SuggestLimit:       atoi(getenv("SUGGEST_LIMIT", "5"), 5),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func toFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

func toBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
