// Package config loads yuletide settings from defaults, an optional TOML
// file and YULETIDE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "YULETIDE_"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig       `toml:"server" envPrefix:"SERVER_"`
	Camera   CameraConfig       `toml:"camera" envPrefix:"CAMERA_"`
	Detector detector.Config    `toml:"detector" envPrefix:"DETECTOR_"`
	Render   RenderConfig       `toml:"render" envPrefix:"RENDER_"`
	Gesture  gesture.Thresholds `toml:"gesture" envPrefix:"GESTURE_"`
	Scene    layout.Dimensions  `toml:"scene" envPrefix:"SCENE_"`
	Hooks    HookConfig         `toml:"hooks" envPrefix:"HOOKS_"`
}

// ServerConfig configures the HTTP API and the data directory.
type ServerConfig struct {
	Addr    string `toml:"addr" env:"ADDR"`
	WebDir  string `toml:"web_dir" env:"WEB_DIR"`
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
}

// CameraConfig configures capture and motion gating.
type CameraConfig struct {
	ID              int           `toml:"id" env:"ID"`
	MotionThreshold float64       `toml:"motion_threshold" env:"MOTION_THRESHOLD"`
	IdleFPS         int           `toml:"idle_fps" env:"IDLE_FPS"`
	ActiveFPS       int           `toml:"active_fps" env:"ACTIVE_FPS"`
	IdleTimeout     time.Duration `toml:"idle_timeout" env:"IDLE_TIMEOUT"`
}

// RenderConfig configures the render loop and the population.
type RenderConfig struct {
	FPS       int     `toml:"fps" env:"FPS"`
	Ornaments int     `toml:"ornaments" env:"ORNAMENTS"`
	Seed      uint64  `toml:"seed" env:"SEED"`
	CameraZ   float64 `toml:"camera_z" env:"CAMERA_Z"`
}

// HookConfig configures external hooks.
type HookConfig struct {
	Dir     string        `toml:"dir" env:"DIR"`
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT"`
}

// DataDir returns ~/.yuletide, or .yuletide when there is no home.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yuletide"
	}
	return filepath.Join(home, ".yuletide")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Default returns the built-in configuration.
func Default() Config {
	data := DataDir()
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			DataDir: data,
		},
		Camera: CameraConfig{
			MotionThreshold: 1.0,
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleTimeout:     2 * time.Second,
		},
		Detector: detector.DefaultConfig(),
		Render: RenderConfig{
			FPS:       60,
			Ornaments: 400,
			Seed:      2024,
			CameraZ:   25,
		},
		Gesture: gesture.DefaultThresholds(),
		Scene:   layout.DefaultDimensions(),
		Hooks: HookConfig{
			Dir:     filepath.Join(data, "hooks"),
			Timeout: 5 * time.Second,
		},
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultPath is used when present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.DataDir == "" {
		return errors.New("config: server.data_dir is required")
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return fmt.Errorf("config: camera fps must be positive (idle %d, active %d)", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	}
	if c.Camera.MotionThreshold < 0 {
		return fmt.Errorf("config: camera.motion_threshold must not be negative: %v", c.Camera.MotionThreshold)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("config: render.fps must be positive: %d", c.Render.FPS)
	}
	if c.Render.Ornaments < 0 {
		return fmt.Errorf("config: render.ornaments must not be negative: %d", c.Render.Ornaments)
	}
	if c.Hooks.Timeout <= 0 {
		return fmt.Errorf("config: hooks.timeout must be positive: %v", c.Hooks.Timeout)
	}
	if err := c.Gesture.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Scene.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DBPath is the sqlite database location.
func (c Config) DBPath() string {
	return filepath.Join(c.Server.DataDir, "yuletide.db")
}
