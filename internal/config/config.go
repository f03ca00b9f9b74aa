// Package config loads cubesculpt settings from config/cubesculpt.yaml, filling anything
// the file leaves out from Default and applying environment overrides last.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file, relative to the process working directory.
const ConfigPath = "config/cubesculpt.yaml"

// Runtime kinds.
const (
	RuntimeDesktop = "desktop"
	RuntimeReplay  = "replay"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig   = "CUBESCULPT_CONFIG"
	EnvRuntime  = "CUBESCULPT_RUNTIME"
	EnvScript   = "CUBESCULPT_SCRIPT"
	EnvLogLevel = "CUBESCULPT_LOG_LEVEL"
	EnvLogFile  = "CUBESCULPT_LOG_FILE"
	EnvAttempts = "CUBESCULPT_MAX_ATTEMPTS"
)

// Config is the whole settings file.
type Config struct {
	Runtime    string     `yaml:"runtime"`
	Session    Session    `yaml:"session"`
	Supervisor Supervisor `yaml:"supervisor"`
	Replay     Replay     `yaml:"replay"`
	Desktop    Desktop    `yaml:"desktop"`
	Log        Log        `yaml:"log"`
}

// Session holds the clip planes. Far <= Near selects an infinite far plane.
type Session struct {
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

// Supervisor controls how a failed session is restarted.
type Supervisor struct {
	Backoff time.Duration `yaml:"backoff"`
	// MaxAttempts stops after that many sessions; 0 retries forever.
	MaxAttempts int `yaml:"max_attempts"`
}

// Replay configures the headless scripted runtime.
type Replay struct {
	Script   string  `yaml:"script"`
	Hz       float64 `yaml:"hz"`
	Realtime bool    `yaml:"realtime"`
}

// Desktop configures the windowed simulator.
type Desktop struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FPS       int     `yaml:"fps"`
	EyeWidth  int     `yaml:"eye_width"`
	EyeHeight int     `yaml:"eye_height"`
	IPD       float32 `yaml:"ipd"`
	ShowFPS   bool    `yaml:"show_fps"`
	ShowLog   bool    `yaml:"show_log"`
}

// Log selects the log file and level.
type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Runtime: RuntimeDesktop,
		Session: Session{Near: 0.1, Far: 100},
		Supervisor: Supervisor{
			Backoff: 5 * time.Second,
		},
		Replay: Replay{Hz: 90},
		Desktop: Desktop{
			Width:     1280,
			Height:    720,
			FPS:       90,
			EyeWidth:  640,
			EyeHeight: 640,
			IPD:       0.064,
			ShowFPS:   true,
			ShowLog:   true,
		},
		Log: Log{File: "logs/cubesculpt.log", Level: "info"},
	}
}

// Load reads path over Default: keys the file leaves out keep their default, keys it sets
// win even when zero. A missing file is not an error; a file that does not parse or
// validate is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides settings from the CUBESCULPT_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRuntime); ok && v != "" {
		c.Runtime = v
	}
	if v, ok := lookup(EnvScript); ok && v != "" {
		c.Replay.Script = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookup(EnvAttempts); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAttempts, err)
		}
		c.Supervisor.MaxAttempts = n
	}
	return c.Validate()
}

// Validate reports settings no runtime can work with.
func (c *Config) Validate() error {
	switch c.Runtime {
	case RuntimeDesktop, RuntimeReplay:
	default:
		return fmt.Errorf("unknown runtime %q (want %s or %s)", c.Runtime, RuntimeDesktop, RuntimeReplay)
	}
	if c.Session.Near <= 0 {
		return fmt.Errorf("near plane %v must be positive", c.Session.Near)
	}
	if c.Supervisor.Backoff < 0 || c.Supervisor.MaxAttempts < 0 {
		return fmt.Errorf("supervisor backoff and max_attempts must not be negative")
	}
	if c.Desktop.EyeWidth <= 0 || c.Desktop.EyeHeight <= 0 {
		return fmt.Errorf("eye size %dx%d must be positive", c.Desktop.EyeWidth, c.Desktop.EyeHeight)
	}
	return nil
}
