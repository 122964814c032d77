package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBPath          string
	SettingsPath    string
	MigrationsDir   string
	TickInterval    time.Duration
	AlertCommand    string
	CompleteCommand string
	Bell            bool
	HistoryLimit    int
	CueTimeout      time.Duration
}

func Load() Config {
	return Config{
		DBPath:          getEnv("ZENPOMO_DB_PATH", "./data/zenpomo.db"),
		SettingsPath:    getEnv("ZENPOMO_SETTINGS", "./data/settings.yaml"),
		MigrationsDir:   getEnv("ZENPOMO_MIGRATIONS_DIR", ""),
		TickInterval:    getEnvDuration("ZENPOMO_TICK_INTERVAL", time.Second),
		AlertCommand:    getEnv("ZENPOMO_ALERT_CMD", ""),
		CompleteCommand: getEnv("ZENPOMO_COMPLETE_CMD", ""),
		Bell:            getEnvBool("ZENPOMO_BELL", true),
		HistoryLimit:    getEnvInt("ZENPOMO_HISTORY_LIMIT", 50),
		CueTimeout:      getEnvDuration("ZENPOMO_CUE_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
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
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go duration strings ("1s", "500ms") or a bare
// number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
