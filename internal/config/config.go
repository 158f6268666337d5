package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"NiftyRSI/internal/model"
	"NiftyRSI/internal/zone"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port           string        `yaml:"port"`
		Mode           string        `yaml:"mode"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimit      float64       `yaml:"rate_limit"` // requests per second per client IP
		RateBurst      int           `yaml:"rate_burst"`
	} `yaml:"server"`
	DataSource struct {
		Provider    string `yaml:"provider"` // yahoo, rest or mock
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"data_source"`
	Indices  []model.Index `yaml:"indices"`
	Defaults struct {
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
		Window int    `yaml:"window"`
	} `yaml:"defaults"`
	Zones zone.Thresholds `yaml:"zones"`
	Watch struct {
		Cron         string   `yaml:"cron"`
		LookbackDays int      `yaml:"lookback_days"`
		Indices      []string `yaml:"indices"`
	} `yaml:"watch"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env and the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("DATA_SOURCE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RSI_WINDOW"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RSI_WINDOW value: %w", err)
		}
		cfg.Defaults.Window = w
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 5
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 20
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "rest"
		}
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 1
	}
	if len(c.Indices) == 0 {
		c.Indices = append([]model.Index(nil), model.DefaultIndices...)
	}
	if c.Defaults.Start == "" {
		c.Defaults.Start = "2022-01-01"
	}
	if c.Defaults.End == "" {
		c.Defaults.End = "2025-01-01"
	}
	if c.Defaults.Window == 0 {
		c.Defaults.Window = 14
	}
	if c.Zones == (zone.Thresholds{}) {
		c.Zones = zone.DefaultThresholds
	}
	if c.Watch.LookbackDays == 0 {
		c.Watch.LookbackDays = 90
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Defaults.Window <= 0 {
		return errors.New("defaults.window must be positive")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}
	if c.DataSource.Concurrency < 1 {
		return errors.New("data_source.concurrency must be at least 1")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return errors.New("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if len(c.Indices) == 0 {
		return errors.New("at least one index is required")
	}
	seen := make(map[string]bool, len(c.Indices))
	for _, idx := range c.Indices {
		if idx.Name == "" || idx.Symbol == "" {
			return fmt.Errorf("index %q: name and symbol are required", idx.Name)
		}
		if seen[idx.Name] {
			return fmt.Errorf("duplicate index name %q", idx.Name)
		}
		seen[idx.Name] = true
	}
	for _, n := range c.Watch.Indices {
		if !seen[n] {
			return fmt.Errorf("watch.indices: unknown index %q", n)
		}
	}
	start, end, err := c.DefaultRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return errors.New("defaults.start must be before defaults.end")
	}
	if c.Zones.Oversold >= c.Zones.Overbought {
		return errors.New("zones.oversold must be below zones.overbought")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Watch.LookbackDays <= 0 {
		return errors.New("watch.lookback_days must be positive")
	}
	return nil
}

// DefaultRange parses the default start and end dates.
func (c *Config) DefaultRange() (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, c.Defaults.Start)
	if err != nil {
		return start, end, fmt.Errorf("defaults.start: %w", err)
	}
	end, err = time.Parse(time.DateOnly, c.Defaults.End)
	if err != nil {
		return start, end, fmt.Errorf("defaults.end: %w", err)
	}
	return start, end, nil
}

// WatchIndices returns the indices the watch task evaluates. An empty
// watch list means every configured index.
func (c *Config) WatchIndices() []model.Index {
	if len(c.Watch.Indices) == 0 {
		return c.Indices
	}
	want := make(map[string]bool, len(c.Watch.Indices))
	for _, n := range c.Watch.Indices {
		want[n] = true
	}
	var out []model.Index
	for _, idx := range c.Indices {
		if want[idx.Name] {
			out = append(out, idx)
		}
	}
	return out
}
