package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where studysense stores its own data
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of server
	Version string

	// AI configuration
	AIAPIKey     string // STUDYSENSE_AI_API_KEY
	AIBaseURL    string // STUDYSENSE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel      string // STUDYSENSE_AI_MODEL (default: gpt-4o-mini)
	AIMaxRetries int    // STUDYSENSE_AI_MAX_RETRIES (default: 3)
	AITimeout    time.Duration

	// Text extraction configuration
	TikaServerURL      string        // STUDYSENSE_TIKA_URL (default: http://localhost:9998)
	TextExtractTimeout time.Duration // STUDYSENSE_TEXTEXTRACT_TIMEOUT (default: 30s)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a generation API key or a custom base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != "" || p.AIBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from STUDYSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.AIAPIKey = os.Getenv("STUDYSENSE_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("STUDYSENSE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("STUDYSENSE_AI_MODEL", "gpt-4o-mini")
	if retries := os.Getenv("STUDYSENSE_AI_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil && n > 0 {
			p.AIMaxRetries = n
		}
	}
	if p.AIMaxRetries == 0 {
		p.AIMaxRetries = 3
	}
	if timeout := os.Getenv("STUDYSENSE_AI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			p.AITimeout = d
		}
	}
	if p.AITimeout == 0 {
		p.AITimeout = 60 * time.Second
	}

	p.TikaServerURL = getEnvOrDefault("STUDYSENSE_TIKA_URL", "http://localhost:9998")
	if timeout := os.Getenv("STUDYSENSE_TEXTEXTRACT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			p.TextExtractTimeout = d
		}
	}
	if p.TextExtractTimeout == 0 {
		p.TextExtractTimeout = 30 * time.Second
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "studysense")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/studysense"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("studysense_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	p.FromEnv()
	return nil
}
