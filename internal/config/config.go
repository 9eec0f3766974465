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
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Remote RemoteConfig
	Feed   FeedConfig
	Auth   AuthConfig
	Bot    BotConfig
	Cache  CacheConfig
	Events EventsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration (history database, cache, session key).
type DataConfig struct {
	BasePath string
	// HistoryRetention is how long load, bot and upload history is kept (default: 90 days, 0 keeps everything).
	HistoryRetention time.Duration
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s, exports can be slow)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed browser origins (default: *)
}

// RemoteConfig describes the participant API this server fronts.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls (default: 5).
	RequestsPerSecond int
}

// FeedConfig holds the local leaderboard CSV feed settings.
type FeedConfig struct {
	// CSVPath is optional; the public leaderboard is empty without it.
	CSVPath string
	// Watch reloads the feed when the file changes (default: true).
	Watch bool
}

// AuthConfig holds admin session configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for session tokens (32 bytes)
	SessionKey      []byte
	SessionDuration time.Duration // e.g., 12h
	// LoginRPM limits login attempts per client IP (default: 10).
	LoginRPM int
}

// BotConfig holds scraper bot settings.
type BotConfig struct {
	// APIKey is used when a trigger request carries no X-API-Key header.
	APIKey          string
	PollInterval    time.Duration // default: 3s
	MaxPollDuration time.Duration // default: 5m
}

// CacheConfig holds the participant detail cache settings.
type CacheConfig struct {
	TTL time.Duration
}

// EventsConfig holds the event catalog settings.
type EventsConfig struct {
	// File overrides the built-in catalog when set.
	File string
	// ImageDir is where heading images are looked up for BlurHash placeholders.
	ImageDir string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for local data")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma separated allowed origins (default: *)")

	// Remote API flags
	remoteURL := flag.String("remote-api-url", "", "Base URL of the participant API")
	remoteTimeout := flag.String("remote-timeout", "", "Remote API request timeout (default: 30s)")
	remoteRPS := flag.String("remote-rps", "", "Remote API requests per second (default: 5)")

	// Feed flags
	feedPath := flag.String("feed-csv", "", "Path to the leaderboard CSV feed")
	feedWatch := flag.String("feed-watch", "", "Reload the CSV feed on change (default: true)")

	// Auth and bot flags
	sessionDuration := flag.String("session-duration", "", "Admin session lifetime (default: 12h)")
	botPollInterval := flag.String("bot-poll-interval", "", "Bot status poll interval (default: 3s)")
	botPollTimeout := flag.String("bot-poll-timeout", "", "Maximum bot status polling time (default: 5m)")

	historyRetention := flag.String("history-retention", "", "How long to keep activity history (default: 2160h)")
	cacheTTL := flag.String("cache-ttl", "", "Participant detail cache TTL (default: 2m)")
	eventsFile := flag.String("events-file", "", "Path to an event catalog JSON file")
	eventsImageDir := flag.String("events-image-dir", "", "Directory holding event heading images")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Remote: RemoteConfig{
			BaseURL:           strings.TrimRight(getConfigValue(*remoteURL, "REMOTE_API_URL", "http://localhost:8000"), "/"),
			RequestsPerSecond: getIntConfigValue(*remoteRPS, "REMOTE_RPS", 5),
		},
		Feed: FeedConfig{
			CSVPath: getConfigValue(*feedPath, "FEED_CSV_PATH", ""),
			Watch:   getBoolConfigValue(*feedWatch, "FEED_WATCH", true),
		},
		Auth: AuthConfig{
			SessionKey: nil, // Set by auth.LoadOrGenerateKey during bootstrap
			LoginRPM:   getIntConfigValue("", "LOGIN_RPM", 10),
		},
		Bot: BotConfig{
			APIKey: getConfigValue("", "BOT_API_KEY", ""),
		},
		Events: EventsConfig{
			File:     getConfigValue(*eventsFile, "EVENTS_FILE", ""),
			ImageDir: getConfigValue(*eventsImageDir, "EVENTS_IMAGE_DIR", ""),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Remote.Timeout, *remoteTimeout, "REMOTE_TIMEOUT", "30s"},
		{&cfg.Auth.SessionDuration, *sessionDuration, "SESSION_DURATION", "12h"},
		{&cfg.Bot.PollInterval, *botPollInterval, "BOT_POLL_INTERVAL", "3s"},
		{&cfg.Bot.MaxPollDuration, *botPollTimeout, "BOT_POLL_TIMEOUT", "5m"},
		{&cfg.Cache.TTL, *cacheTTL, "CACHE_TTL", "2m"},
		{&cfg.Data.HistoryRetention, *historyRetention, "HISTORY_RETENTION", "2160h"},
	}
	for _, d := range durations {
		v, err := getDurationConfigValue(d.flag, d.envKey, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
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

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid remote API url: %q", c.Remote.BaseURL)
	}

	if c.Remote.RequestsPerSecond <= 0 {
		return fmt.Errorf("remote requests per second must be positive, got %d", c.Remote.RequestsPerSecond)
	}

	if c.Data.HistoryRetention < 0 {
		return fmt.Errorf("history retention cannot be negative, got %s", c.Data.HistoryRetention)
	}

	if c.Bot.PollInterval <= 0 || c.Bot.MaxPollDuration < c.Bot.PollInterval {
		return fmt.Errorf("bot poll interval %s must be positive and not exceed poll timeout %s",
			c.Bot.PollInterval, c.Bot.MaxPollDuration)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPaths resolves ~ and relative paths for every filesystem setting.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataPath, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "StudyJam", "data"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Data.BasePath = dataPath

	for _, p := range []*string{&c.Feed.CSVPath, &c.Events.File, &c.Events.ImageDir} {
		expanded, err := expandPath(*p, "")
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

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
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
