// Package config loads the voxsteer configuration from YAML, layered
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/steerlab/voxsteer/internal/model"
)

// Config holds the full runtime configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// Audio pipeline settings
	Audio AudioConfig `yaml:"audio"`

	// Voice activity gate settings
	VAD VADConfig `yaml:"vad"`

	// Decision smoothing settings
	Decision DecisionConfig `yaml:"decision"`

	// Classifier settings
	Model model.Options `yaml:"model"`

	// DataDir is where the sample library and model store live.
	DataDir string `yaml:"data_dir"`
}

// ServerConfig holds the HTTP/websocket listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AudioConfig holds capture and windowing settings.
type AudioConfig struct {
	SampleRate    int `yaml:"sample_rate"`    // Hz
	WindowMs      int `yaml:"window_ms"`      // classification window length
	TickMs        int `yaml:"tick_ms"`        // classification interval
	BufferSeconds int `yaml:"buffer_seconds"` // rolling capture bound
}

// VADConfig holds the energy gate thresholds.
type VADConfig struct {
	Enabled        bool    `yaml:"enabled"`
	EnterThreshold float64 `yaml:"enter_threshold"`
	ExitThreshold  float64 `yaml:"exit_threshold"`
}

// DecisionConfig holds the majority-vote smoothing settings.
type DecisionConfig struct {
	HistorySize         int      `yaml:"history_size"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	Labels              []string `yaml:"labels"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8470",
		},
		Audio: AudioConfig{
			SampleRate:    16000,
			WindowMs:      800,
			TickMs:        250,
			BufferSeconds: 5,
		},
		VAD: VADConfig{
			Enabled:        true,
			EnterThreshold: 0.03,
			ExitThreshold:  0.015,
		},
		Decision: DecisionConfig{
			HistorySize:         5,
			ConfidenceThreshold: 0.6,
			Labels:              []string{"left", "right"},
		},
		Model:   model.DefaultOptions(),
		DataDir: DefaultDataDir(),
	}
}

// DefaultDataDir returns the default data directory (~/.voxsteer).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".voxsteer"
	}
	return filepath.Join(home, ".voxsteer")
}

// Load reads the config at path over the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.WindowMs <= 0 || c.Audio.TickMs <= 0 {
		return fmt.Errorf("audio.window_ms and audio.tick_ms must be positive")
	}
	if c.Audio.BufferSeconds*1000 < c.Audio.WindowMs {
		return fmt.Errorf("audio.buffer_seconds (%ds) is shorter than the %dms window", c.Audio.BufferSeconds, c.Audio.WindowMs)
	}
	if len(c.Decision.Labels) < 2 {
		return fmt.Errorf("decision.labels needs at least two entries, got %d", len(c.Decision.Labels))
	}
	if c.Decision.HistorySize < 1 {
		return fmt.Errorf("decision.history_size must be at least 1")
	}
	if c.Decision.ConfidenceThreshold < 0 || c.Decision.ConfidenceThreshold > 1 {
		return fmt.Errorf("decision.confidence_threshold must be in [0,1]")
	}
	return nil
}

// ModelDir is where the badger model store lives.
func (c *Config) ModelDir() string {
	return filepath.Join(c.DataDir, "model")
}

// SamplesPath is the sample library database file.
func (c *Config) SamplesPath() string {
	return filepath.Join(c.DataDir, "samples.db")
}
