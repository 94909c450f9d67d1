package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// GeminiAPIKey は空でもエラーにしない。生成時に ConfigurationError として扱う。
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string

	LogLevel  string
	LogFormat string

	PreferIPv4  bool
	HTTPTimeout time.Duration

	WebAddr         string
	ImageCacheTTL   time.Duration
	ImageCacheMaxMB int
	MaxUploadBytes  int64
}

// Load は .env (存在する場合) と環境変数から設定を読み込みます。
// 既に設定されている環境変数は .env で上書きしません。
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		GeminiBaseURL:    strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		GeminiAPIVersion: strings.TrimSpace(os.Getenv("GEMINI_API_VERSION")),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "json")),
		PreferIPv4:       getEnvBool("PREFER_IPV4", true),
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		WebAddr:          getEnv("WEB_ADDR", ":8080"),
		ImageCacheTTL:    time.Duration(getEnvInt("IMAGE_CACHE_TTL_MINUTES", 30)) * time.Minute,
		ImageCacheMaxMB:  getEnvInt("IMAGE_CACHE_MAX_MB", 256),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 25)) << 20,
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.ImageCacheTTL <= 0 {
		cfg.ImageCacheTTL = 30 * time.Minute
	}
	if cfg.ImageCacheMaxMB < 1 {
		cfg.ImageCacheMaxMB = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 25 << 20
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
