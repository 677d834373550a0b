package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aquamarinepk/aqm"
)

const (
	DefaultAPIURL        = "http://localhost:3000/api"
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheSweep    = time.Minute
	DefaultPollInterval  = 8 * time.Second
	DefaultHintsTopic    = "kitchen.tickets"
	DefaultOrderTopic    = "orders.items"
	DefaultLogLevel      = "info"
	DefaultStockExpiring = 72 * time.Hour
)

// Settings is the typed view of the terminal configuration.
type Settings struct {
	APIURL        string
	APITimeout    time.Duration
	APIToken      string
	CacheTTL      time.Duration
	CacheSweep    time.Duration
	PollInterval  time.Duration
	HintsURL      string
	HintsTopic    string
	OrderTopic    string
	PrefsPath     string
	TokenPath     string
	StockExpiring time.Duration
	LogLevel      string
}

// Load reads Settings from cfg, falling back to defaults for absent or
// malformed values.
func Load(cfg *aqm.Config, logger aqm.Logger) Settings {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	s := Settings{
		APIURL:        DefaultAPIURL,
		APITimeout:    15 * time.Second,
		CacheTTL:      DefaultCacheTTL,
		CacheSweep:    DefaultCacheSweep,
		PollInterval:  DefaultPollInterval,
		HintsTopic:    DefaultHintsTopic,
		OrderTopic:    DefaultOrderTopic,
		PrefsPath:     defaultPath("prefs.yaml"),
		TokenPath:     defaultPath("token"),
		StockExpiring: DefaultStockExpiring,
		LogLevel:      DefaultLogLevel,
	}
	if cfg == nil {
		return s
	}

	if v, ok := cfg.GetString("api.url"); ok && v != "" {
		s.APIURL = v
	}
	if v, ok := cfg.GetString("api.token"); ok {
		s.APIToken = v
	}
	if v, ok := cfg.GetString("kitchen.hints.url"); ok {
		s.HintsURL = v
	}
	if v, ok := cfg.GetString("kitchen.hints.topic"); ok && v != "" {
		s.HintsTopic = v
	}
	if v, ok := cfg.GetString("kitchen.hints.order_topic"); ok && v != "" {
		s.OrderTopic = v
	}
	if v, ok := cfg.GetString("prefs.path"); ok && v != "" {
		s.PrefsPath = v
	}
	if v, ok := cfg.GetString("auth.token_path"); ok && v != "" {
		s.TokenPath = v
	}
	if v, ok := cfg.GetString("log.level"); ok && v != "" {
		s.LogLevel = v
	}

	s.APITimeout = duration(cfg, logger, "api.timeout", s.APITimeout)
	s.CacheTTL = duration(cfg, logger, "api.cache_ttl", s.CacheTTL)
	s.CacheSweep = duration(cfg, logger, "api.cache_sweep", s.CacheSweep)
	s.PollInterval = duration(cfg, logger, "kitchen.poll_interval", s.PollInterval)
	s.StockExpiring = duration(cfg, logger, "stock.expiring_window", s.StockExpiring)

	return s
}

func duration(cfg *aqm.Config, logger aqm.Logger, key string, def time.Duration) time.Duration {
	raw, ok := cfg.GetString(key)
	if !ok || raw == "" {
		return def
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		logger.Info("invalid duration, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return parsed
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".appetite-pos", name)
	}
	return filepath.Join(home, ".appetite-pos", name)
}
