package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/sketchfmt/internal/parser"
	"github.com/dgallion1/sketchfmt/internal/sketch"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentParse int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Decode latency window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Keywords that group the following elements, e.g. "Pencil" -> pencil.
	Groups    map[string]sketch.ElementKind
	groupsErr error
}

const defaultGroupKeywords = "Pencil=pencil,Brush=brush"

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("SKETCHFMT_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentParse: envInt("MAX_CONCURRENT_PARSE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.Groups, cfg.groupsErr = ParseGroups(envSet("GROUP_KEYWORDS", defaultGroupKeywords))

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentParse <= 0 {
		cfg.MaxConcurrentParse = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SKETCHFMT_API_KEY is required")
	}
	if c.groupsErr != nil {
		return fmt.Errorf("GROUP_KEYWORDS: %w", c.groupsErr)
	}
	for name := range c.Groups {
		if _, ok := parser.DefaultGrammar.Lookup(name); !ok {
			return fmt.Errorf("GROUP_KEYWORDS: %q is not an element name", name)
		}
	}
	return nil
}

// ParseGroups reads a comma-separated list of Name=kind pairs. An empty
// string yields an empty table, which disables grouping.
func ParseGroups(s string) (map[string]sketch.ElementKind, error) {
	groups := make(map[string]sketch.ElementKind)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, kindName, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		kind, err := sketch.ParseKind(strings.TrimSpace(kindName))
		if err != nil {
			return nil, err
		}
		if kind == sketch.KindNone {
			return nil, errors.New("group kind cannot be none")
		}
		groups[name] = kind
	}
	return groups, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envSet is envOr for variables where an explicit empty value is meaningful.
func envSet(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
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
