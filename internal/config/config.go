package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/spf13/viper"
)

var (
	ErrInvalidPollInterval   = errors.New("poll interval must be greater than 0")
	ErrInvalidRenderInterval = errors.New("render interval must not be shorter than the poll interval")
	ErrInvalidSpeed          = errors.New("estimated upload speeds must be greater than 0")
	ErrInvalidDecayFloor     = errors.New("speed decay floor must be within (0, 1]")
	ErrInvalidPercentCap     = errors.New("percent cap must be within (0, 100)")
	ErrNoExtensions          = errors.New("at least one artifact extension must be configured")
	ErrInvalidMaxNotes       = errors.New("max notes must be greater than 0")
	ErrInvalidLogLevel       = errors.New("unknown log level")
)

// EnvPrefix is the prefix of environment variables overriding config keys
const EnvPrefix = "ROMRELEASE"

// Config holds all application configuration
type Config struct {
	GH       GHConfig       `mapstructure:"gh"`
	Release  ReleaseConfig  `mapstructure:"release"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Estimate EstimateConfig `mapstructure:"estimate"`
	Log      LogConfig      `mapstructure:"log"`
}

// GHConfig holds settings for the GitHub CLI
type GHConfig struct {
	Path string `mapstructure:"path"` // gh executable
	Repo string `mapstructure:"repo"` // optional OWNER/REPO passed as --repo
}

// ReleaseConfig holds release planning defaults
type ReleaseConfig struct {
	Dir          string   `mapstructure:"dir"`
	ArchiveExt   string   `mapstructure:"archive_ext"`
	ImageExt     string   `mapstructure:"image_ext"`
	DefaultNotes string   `mapstructure:"default_notes"`
	MaxNotes     int      `mapstructure:"max_notes"`
	Checksums    bool     `mapstructure:"checksums"`
	ExtraExts    []string `mapstructure:"extra_exts"`
}

// UploadConfig holds upload loop timings
type UploadConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RenderInterval time.Duration `mapstructure:"render_interval"`
}

// EstimateConfig holds the throughput model parameters
type EstimateConfig struct {
	BaseSpeed          float64       `mapstructure:"base_speed"`
	LargeFileSpeed     float64       `mapstructure:"large_file_speed"`
	LargeFileThreshold uint64        `mapstructure:"large_file_threshold"`
	DecayWindow        time.Duration `mapstructure:"decay_window"`
	DecayFloor         float64       `mapstructure:"decay_floor"`
	PercentCap         float64       `mapstructure:"percent_cap"`
	ETAMargin          float64       `mapstructure:"eta_margin"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		GH: GHConfig{
			Path: "gh",
		},
		Release: ReleaseConfig{
			Dir:          ".",
			ArchiveExt:   "zip",
			ImageExt:     "img",
			DefaultNotes: "- Auto-generated release",
			MaxNotes:     5,
		},
		Upload: UploadConfig{
			PollInterval:   100 * time.Millisecond,
			RenderInterval: time.Second,
		},
		Estimate: EstimateConfig{
			BaseSpeed:          3 * 1024 * 1024, // 3 MB/s
			LargeFileSpeed:     2 * 1024 * 1024, // 2 MB/s
			LargeFileThreshold: 1024 * 1024 * 1024,
			DecayWindow:        60 * time.Second,
			DecayFloor:         0.5,
			PercentCap:         99.9,
			ETAMargin:          1.1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default with v so env variables and config
// files can override individual keys
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("gh.path", d.GH.Path)
	v.SetDefault("gh.repo", d.GH.Repo)

	v.SetDefault("release.dir", d.Release.Dir)
	v.SetDefault("release.archive_ext", d.Release.ArchiveExt)
	v.SetDefault("release.image_ext", d.Release.ImageExt)
	v.SetDefault("release.default_notes", d.Release.DefaultNotes)
	v.SetDefault("release.max_notes", d.Release.MaxNotes)
	v.SetDefault("release.checksums", d.Release.Checksums)
	v.SetDefault("release.extra_exts", d.Release.ExtraExts)

	v.SetDefault("upload.poll_interval", d.Upload.PollInterval)
	v.SetDefault("upload.render_interval", d.Upload.RenderInterval)

	v.SetDefault("estimate.base_speed", d.Estimate.BaseSpeed)
	v.SetDefault("estimate.large_file_speed", d.Estimate.LargeFileSpeed)
	v.SetDefault("estimate.large_file_threshold", d.Estimate.LargeFileThreshold)
	v.SetDefault("estimate.decay_window", d.Estimate.DecayWindow)
	v.SetDefault("estimate.decay_floor", d.Estimate.DecayFloor)
	v.SetDefault("estimate.percent_cap", d.Estimate.PercentCap)
	v.SetDefault("estimate.eta_margin", d.Estimate.ETAMargin)

	v.SetDefault("log.level", d.Log.Level)
}

// Load builds a Config from v, falling back to defaults for unset keys
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.Upload.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.Upload.RenderInterval < c.Upload.PollInterval {
		return ErrInvalidRenderInterval
	}
	if c.Estimate.BaseSpeed <= 0 || c.Estimate.LargeFileSpeed <= 0 {
		return ErrInvalidSpeed
	}
	if c.Estimate.DecayFloor <= 0 || c.Estimate.DecayFloor > 1 {
		return ErrInvalidDecayFloor
	}
	if c.Estimate.PercentCap <= 0 || c.Estimate.PercentCap >= 100 {
		return ErrInvalidPercentCap
	}
	if c.Release.ArchiveExt == "" && c.Release.ImageExt == "" {
		return ErrNoExtensions
	}
	if c.Release.MaxNotes <= 0 {
		return ErrInvalidMaxNotes
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}

// Extensions returns every artifact extension to discover, archives first.
// An extension listed more than once is kept at its first position.
func (c *Config) Extensions() []string {
	var exts []string
	for _, ext := range append([]string{c.Release.ArchiveExt, c.Release.ImageExt}, c.Release.ExtraExts...) {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return slice.Unique(exts)
}
