package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/joho/godotenv"
)

// Store backends selectable for save slots.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds the CLI settings resolved from the environment.
type Config struct {
	ContentDir string
	LogLevel   slog.Level
	LogFormat  logging.Format
	Store      string
	RedisAddr  string
	SQLitePath string
	SaveDir    string

	// SaveKey, when set, enables AES-GCM encryption of saved snapshots.
	SaveKey  string
	HTTPAddr string
}

// Load reads DIALECTIC_* variables, first merging any of the given dotenv
// files that exist. Variables already set in the process win over dotenv files.
func Load(dotenv ...string) (*Config, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		ContentDir: getEnv("DIALECTIC_CONTENT_DIR", "content"),
		LogLevel:   logging.ParseLevel(getEnv("DIALECTIC_LOG_LEVEL", "info")),
		LogFormat:  parseFormat(getEnv("DIALECTIC_LOG_FORMAT", "text")),
		Store:      strings.ToLower(getEnv("DIALECTIC_STORE", StoreMemory)),
		RedisAddr:  getEnv("DIALECTIC_REDIS_ADDR", "localhost:6379"),
		SQLitePath: getEnv("DIALECTIC_SQLITE_PATH", "dialectic.db"),
		SaveDir:    getEnv("DIALECTIC_SAVE_DIR", ".dialectic/saves"),
		SaveKey:    os.Getenv("DIALECTIC_SAVE_KEY"),
		HTTPAddr:   getEnv("DIALECTIC_HTTP_ADDR", ":8080"),
	}, nil
}

func parseFormat(s string) logging.Format {
	if strings.EqualFold(strings.TrimSpace(s), string(logging.FormatJSON)) {
		return logging.FormatJSON
	}
	return logging.FormatText
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
