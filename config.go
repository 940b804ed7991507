package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "LINKSHELF"

type Config struct {
	DBPath          string `envconfig:"DB_PATH"`
	FeedPath        string `envconfig:"FEED_PATH"`
	FeedTitle       string `envconfig:"FEED_TITLE"`
	RemoteURL       string `envconfig:"REMOTE_URL"`
	PageSizes       []int  `envconfig:"PAGE_SIZES"`
	DefaultPageSize int    `envconfig:"DEFAULT_PAGE_SIZE"`
	LocatorBatch    int    `envconfig:"LOCATOR_BATCH"`
	LogPath         string `envconfig:"LOG_PATH"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	ServeAddr       string `envconfig:"SERVE_ADDR"`
}

var (
	userConfigDir = os.UserConfigDir
	userHomeDir   = os.UserHomeDir
)

func DefaultConfig() Config {
	return Config{
		DBPath:          filepath.Join(dataDir(), "links.db"),
		FeedPath:        "mylinks",
		FeedTitle:       "My Links",
		PageSizes:       []int{10, 25, 50},
		DefaultPageSize: 10,
		LocatorBatch:    defaultLocatorBatch,
		LogPath:         filepath.Join(dataDir(), "linkshelf.log"),
		LogLevel:        "info",
		ServeAddr:       ":8080",
	}
}

// LoadConfig reads config.toml (writing defaults on first run) and then
// applies LINKSHELF_* environment overrides.
func LoadConfig() (Config, error) {
	path := configPath()
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := SaveConfig(cfg); err != nil {
			return Config{}, err
		}
	case err != nil:
		return Config{}, err
	default:
		if err := parseConfig(string(data), &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.FeedPath) == "" {
		return fmt.Errorf("feed_path must not be empty")
	}
	if len(c.PageSizes) == 0 {
		return fmt.Errorf("page_sizes must not be empty")
	}
	for _, size := range c.PageSizes {
		if size <= 0 {
			return fmt.Errorf("invalid page size %d", size)
		}
	}
	if !slices.Contains(c.PageSizes, c.DefaultPageSize) {
		return fmt.Errorf("default_page_size %d is not one of %v", c.DefaultPageSize, c.PageSizes)
	}
	if c.LocatorBatch <= 0 {
		return fmt.Errorf("invalid locator_batch %d", c.LocatorBatch)
	}
	return nil
}

func SaveConfig(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(renderConfig(cfg)), 0o600)
}

func configPath() string {
	dir, err := userConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "linkshelf", "config.toml")
}

func dataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := userHomeDir()
		if err != nil {
			return "."
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "linkshelf")
}

func parseConfig(raw string, cfg *Config) error {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line: %q", line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		switch key {
		case "db_path":
			cfg.DBPath = trimQuotes(value)
		case "feed_path":
			cfg.FeedPath = trimQuotes(value)
		case "feed_title":
			cfg.FeedTitle = trimQuotes(value)
		case "remote_url":
			cfg.RemoteURL = trimQuotes(value)
		case "log_path":
			cfg.LogPath = trimQuotes(value)
		case "log_level":
			cfg.LogLevel = trimQuotes(value)
		case "serve_addr":
			cfg.ServeAddr = trimQuotes(value)
		case "default_page_size":
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid default_page_size: %w", err)
			}
			cfg.DefaultPageSize = parsed
		case "locator_batch":
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid locator_batch: %w", err)
			}
			cfg.LocatorBatch = parsed
		case "page_sizes":
			sizes, err := parseIntArray(value)
			if err != nil {
				return err
			}
			cfg.PageSizes = sizes
		default:
			// ignore unknown keys for forward compatibility
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	unquoted, err := strconv.Unquote(value)
	if err == nil {
		return unquoted
	}
	return strings.Trim(value, "\"")
}

func parseIntArray(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return nil, fmt.Errorf("invalid array value: %q", value)
	}
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(value, "["), "]"))
	if inner == "" {
		return []int{}, nil
	}
	parts := strings.Split(inner, ",")
	items := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid array item %q: %w", part, err)
		}
		items = append(items, n)
	}
	return items, nil
}

func renderConfig(cfg Config) string {
	lines := []string{
		"db_path = " + strconv.Quote(cfg.DBPath),
		"feed_path = " + strconv.Quote(cfg.FeedPath),
		"feed_title = " + strconv.Quote(cfg.FeedTitle),
		"page_sizes = " + renderIntArray(cfg.PageSizes),
		"default_page_size = " + strconv.Itoa(cfg.DefaultPageSize),
		"locator_batch = " + strconv.Itoa(cfg.LocatorBatch),
		"log_path = " + strconv.Quote(cfg.LogPath),
		"log_level = " + strconv.Quote(cfg.LogLevel),
		"serve_addr = " + strconv.Quote(cfg.ServeAddr),
	}
	if cfg.RemoteURL != "" {
		lines = append(lines, "remote_url = "+strconv.Quote(cfg.RemoteURL))
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderIntArray(items []int) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = strconv.Itoa(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
