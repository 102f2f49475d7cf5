package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the application-level configuration
type AppConfig struct {
	Port     int    `mapstructure:"port"`
	WorkRoot string `mapstructure:"work_root"`
	Debug    bool   `mapstructure:"debug"`
	Workers  int    `mapstructure:"workers"`

	PDF      PDFConfig      `mapstructure:"pdf"`
	Diff     DiffConfig     `mapstructure:"diff"`
	Signals  SignalsConfig  `mapstructure:"signals"`
	Annotate AnnotateConfig `mapstructure:"annotate"`
	Session  SessionConfig  `mapstructure:"session"`
}

type PDFConfig struct {
	// Reader is "rsc" or "ledongthuc".
	Reader string `mapstructure:"reader"`
}

type DiffConfig struct {
	FuzzyThreshold int `mapstructure:"fuzzy_threshold"`
}

type SignalsConfig struct {
	RemarksWindow int `mapstructure:"remarks_window"`
}

type AnnotateConfig struct {
	RemarksDisplayLimit int  `mapstructure:"remarks_display_limit"`
	MarkDeletions       bool `mapstructure:"mark_deletions"`
}

type SessionConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	IndexPath string        `mapstructure:"index_path"`
	Bundle    bool          `mapstructure:"bundle"`
	// SweepInterval is how often expired session directories are removed.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

var Config *AppConfig

// LoadConfig reads config.yaml from path, overlays PDFDIFF_* environment
// variables and falls back to defaults for anything unset.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("PDFDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("work_root", "/tmp/aip-pdf-compare")
	v.SetDefault("debug", false)
	v.SetDefault("workers", 1)
	v.SetDefault("pdf.reader", "rsc")
	v.SetDefault("diff.fuzzy_threshold", 85)
	v.SetDefault("signals.remarks_window", 400)
	v.SetDefault("annotate.remarks_display_limit", 240)
	v.SetDefault("annotate.mark_deletions", false)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.index_path", "")
	v.SetDefault("session.bundle", true)
	v.SetDefault("session.sweep_interval", "10m")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("⚠️ Could not read config file, using defaults: %v", err)
	}

	var appConfig AppConfig
	if err := v.Unmarshal(&appConfig); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if appConfig.Session.IndexPath == "" {
		appConfig.Session.IndexPath = filepath.Join(appConfig.WorkRoot, ".index")
	}

	Config = &appConfig
	return &appConfig, nil
}
