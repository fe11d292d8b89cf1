package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"
)

type Config struct {
	Port string

	// Auth
	TreeflatAPIKey string

	// Archive connection
	ArchiveURL     string
	ArchiveAPIKey  string
	ArchiveEnabled bool

	// Conversion
	VocabularyFile     string
	LevelMarker        rune
	MaxConcurrentTrees int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		TreeflatAPIKey: os.Getenv("TREEFLAT_API_KEY"),

		ArchiveURL:     envOr("ARCHIVE_URL", "http://localhost:8080"),
		ArchiveAPIKey:  os.Getenv("ARCHIVE_API_KEY"),
		ArchiveEnabled: envBool("ARCHIVE_ENABLED", false),

		VocabularyFile:     os.Getenv("VOCABULARY_FILE"),
		LevelMarker:        envRune("LEVEL_MARKER", '|'),
		MaxConcurrentTrees: envInt("MAX_CONCURRENT_TREES", 4),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentTrees <= 0 {
		cfg.MaxConcurrentTrees = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.TreeflatAPIKey == "" {
		return fmt.Errorf("TREEFLAT_API_KEY is required")
	}
	if c.ArchiveEnabled && c.ArchiveAPIKey == "" {
		return fmt.Errorf("ARCHIVE_API_KEY is required when ARCHIVE_ENABLED is set")
	}
	if c.LevelMarker == ':' || c.LevelMarker == ' ' {
		return fmt.Errorf("LEVEL_MARKER %q collides with the edge grammar", c.LevelMarker)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envRune accepts a single character.
func envRune(key string, fallback rune) rune {
	v := os.Getenv(key)
	if utf8.RuneCountInString(v) != 1 {
		return fallback
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r
}
