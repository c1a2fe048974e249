// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Backend  BackendConfig
	Taxonomy TaxonomyConfig
	Analysis AnalysisConfig
	Drafts   DraftsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 120s, analysis calls are slow)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins (default: *)
}

// BackendConfig describes the catalog backend the service talks to.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// Outbound request budget per endpoint.
	RequestsPerSecond float64
	Burst             int
}

// TaxonomyConfig controls where the product taxonomy comes from.
type TaxonomyConfig struct {
	// Path to a YAML taxonomy file. Empty means the built-in tree.
	Path string
	// Watch reloads the file when it changes on disk.
	Watch bool
}

// AnalysisConfig bounds image analysis uploads.
type AnalysisConfig struct {
	MaxImages     int
	MaxImageBytes int64
	// Inbound uploads allowed per client per minute.
	UploadsPerMinute int
}

// DraftsConfig controls the in-memory draft registry.
type DraftsConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")

	backendURL := fs.String("backend-url", "", "Catalog backend base URL")
	backendTimeout := fs.String("backend-timeout", "", "Catalog backend request timeout (default: 90s)")
	backendRPS := fs.String("backend-rps", "", "Outbound requests per second per endpoint (default: 2)")
	backendBurst := fs.String("backend-burst", "", "Outbound burst per endpoint (default: 4)")

	taxonomyPath := fs.String("taxonomy-path", "", "Path to a YAML taxonomy file")
	taxonomyWatch := fs.String("taxonomy-watch", "", "Reload the taxonomy file on change (default: false)")

	maxImages := fs.String("max-images", "", "Maximum images per analysis (default: 10)")
	maxImageBytes := fs.String("max-image-bytes", "", "Maximum bytes per image (default: 10485760)")
	uploadsPerMinute := fs.String("uploads-per-minute", "", "Analysis uploads per client per minute (default: 20)")

	draftTTL := fs.String("draft-ttl", "", "Idle time before a draft is dropped (default: 2h)")
	draftSweep := fs.String("draft-sweep", "", "Draft sweep interval (default: 5m)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("parse flags: %w", err)
		}
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getConfigValue(*backendURL, "BACKEND_URL", "http://localhost:3000"), "/"),
			Burst:   getIntConfigValue(*backendBurst, "BACKEND_BURST", 4),
		},
		Taxonomy: TaxonomyConfig{
			Path:  getConfigValue(*taxonomyPath, "TAXONOMY_PATH", ""),
			Watch: getBoolConfigValue(*taxonomyWatch, "TAXONOMY_WATCH", false),
		},
		Analysis: AnalysisConfig{
			MaxImages:        getIntConfigValue(*maxImages, "ANALYSIS_MAX_IMAGES", 10),
			MaxImageBytes:    int64(getIntConfigValue(*maxImageBytes, "ANALYSIS_MAX_IMAGE_BYTES", 10<<20)),
			UploadsPerMinute: getIntConfigValue(*uploadsPerMinute, "ANALYSIS_UPLOADS_PER_MINUTE", 20),
		},
	}

	rpsStr := getConfigValue(*backendRPS, "BACKEND_RPS", "2")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid backend rps %q: %w", rpsStr, err)
	}
	cfg.Backend.RequestsPerSecond = rps

	durations := []struct {
		name   string
		flag   string
		envKey string
		def    string
		dst    *time.Duration
	}{
		{"read timeout", *readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"write timeout", *writeTimeout, "SERVER_WRITE_TIMEOUT", "120s", &cfg.Server.WriteTimeout},
		{"idle timeout", *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"backend timeout", *backendTimeout, "BACKEND_TIMEOUT", "90s", &cfg.Backend.Timeout},
		{"draft ttl", *draftTTL, "DRAFT_TTL", "2h", &cfg.Drafts.IdleTTL},
		{"draft sweep interval", *draftSweep, "DRAFT_SWEEP_INTERVAL", "5m", &cfg.Drafts.SweepInterval},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = parsed
	}

	if cfg.Taxonomy.Path != "" {
		expanded, err := expandPath(cfg.Taxonomy.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid taxonomy path: %w", err)
		}
		cfg.Taxonomy.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url: %q", c.Backend.BaseURL)
	}

	if c.Backend.RequestsPerSecond <= 0 || c.Backend.Burst < 1 {
		return errors.New("backend rate limit must allow at least one request")
	}

	if c.Analysis.MaxImages < 1 {
		return errors.New("analysis max images must be at least 1")
	}
	if c.Analysis.MaxImageBytes < 1 {
		return errors.New("analysis max image bytes must be positive")
	}

	if c.Taxonomy.Watch && c.Taxonomy.Path == "" {
		return errors.New("taxonomy watch requires a taxonomy path")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
