package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort       string
	DatabaseURL      string
	CacheTTLMinutes  string
	LogLevel         string
	LogFormat        string
	FavoritesPath    string
	EngineConfigPath string
	RefreshCron      string

	Engine EngineConfig
}

// EngineConfig holds the market clock settings used by the derivation engine.
// It can be overridden from a YAML file referenced by ENGINE_CONFIG_PATH.
type EngineConfig struct {
	Market MarketConfig `yaml:"market" json:"market"`
}

// MarketConfig describes the exchange trading window.
type MarketConfig struct {
	Timezone   string `yaml:"timezone" json:"timezone"`
	ApplyOpen  string `yaml:"apply_open" json:"apply_open"`
	ApplyClose string `yaml:"apply_close" json:"apply_close"`
}

// DefaultEngineConfig returns the NSE/BSE trading window in IST
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Market: MarketConfig{
			Timezone:   "Asia/Kolkata",
			ApplyOpen:  "10:00",
			ApplyClose: "16:00",
		},
	}
}

// SimplifiedCacheConfig holds simplified cache configuration
type SimplifiedCacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
	MaxSize    int           `json:"max_size"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *SimplifiedCacheConfig {
	return &SimplifiedCacheConfig{
		DefaultTTL: 1 * time.Minute, // Status can flip at midnight and at the 10:00/16:00 cutoffs
		MaxSize:    500,
	}
}

// GetCacheTTL returns the cache TTL from environment or default
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTLMinutes == "" {
		return DefaultCacheConfig().DefaultTTL
	}

	minutes, err := strconv.Atoi(c.CacheTTLMinutes)
	if err != nil || minutes <= 0 {
		logrus.Warnf("Invalid CACHE_TTL_MINUTES value: %s, using default", c.CacheTTLMinutes)
		return DefaultCacheConfig().DefaultTTL
	}

	return time.Duration(minutes) * time.Minute
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CacheTTLMinutes:  getEnv("CACHE_TTL_MINUTES", "1"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		FavoritesPath:    getEnv("FAVORITES_PATH", ""),
		EngineConfigPath: getEnv("ENGINE_CONFIG_PATH", "engine.yaml"),
		RefreshCron:      getEnv("REFRESH_CRON", "0 */5 * * * *"),
		Engine:           DefaultEngineConfig(),
	}

	engine, err := LoadEngineConfig(cfg.EngineConfigPath)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load engine config, using defaults")
	} else {
		cfg.Engine = *engine
	}

	if v := os.Getenv("MARKET_TIMEZONE"); v != "" {
		cfg.Engine.Market.Timezone = v
	}

	return cfg
}

// LoadEngineConfig reads engine settings from a YAML file. A missing file is
// not an error; defaults are returned instead.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read engine config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse engine config: %w", err)
		}
	}

	cfg.ValidateAndApplyDefaults()
	return &cfg, nil
}

// ValidateAndApplyDefaults fills blank or unparsable settings with defaults
func (c *EngineConfig) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "EngineConfig")
	defaults := DefaultEngineConfig()

	if c.Market.Timezone == "" {
		c.Market.Timezone = defaults.Market.Timezone
		logger.Debug("Applied default Market.Timezone")
	}

	if _, _, err := ParseClock(c.Market.ApplyOpen); err != nil {
		c.Market.ApplyOpen = defaults.Market.ApplyOpen
		logger.Debug("Applied default Market.ApplyOpen")
	}

	if _, _, err := ParseClock(c.Market.ApplyClose); err != nil {
		c.Market.ApplyClose = defaults.Market.ApplyClose
		logger.Debug("Applied default Market.ApplyClose")
	}
}

// ParseClock parses a "15:04" wall-clock value.
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
