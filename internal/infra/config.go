package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	GeminiAPIKey     string
	GeminiImageModel string
	GeminiChatModel  string
	VeoModel         string

	GeoIPDBPath string

	AllowedOrigins []string
	DefaultLocale  string

	SessionTTL        time.Duration
	VideoPollInterval time.Duration
	VideoPollCeiling  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The server's Gemini key is the only hard
// requirement; the Veo key is supplied per workspace at runtime.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiChatModel:   getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		VeoModel:          getEnv("VEO_MODEL", "veo-3.1-fast-generate-preview"),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
		SessionTTL:        time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		VideoPollInterval: time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		VideoPollCeiling:  time.Second * time.Duration(getEnvInt("VIDEO_POLL_CEILING_SECONDS", 300)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 360)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	// Video generation holds its response open for up to the poll ceiling,
	// so the write timeout must clear it.
	if cfg.HTTPWriteTimeout <= cfg.VideoPollCeiling {
		return nil, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS must exceed VIDEO_POLL_CEILING_SECONDS")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
