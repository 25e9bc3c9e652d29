// Package config provides YAML-based configuration loading with
// environment overrides for Duality.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-duality/internal/input"
)

// Config is the complete application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Storage StorageConfig `yaml:"storage"`
	Levels  LevelsConfig  `yaml:"levels"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

// InputConfig defines input rate limits and key bindings.
type InputConfig struct {
	MoveCooldownMS   int               `yaml:"move_cooldown_ms" env:"DUALITY_MOVE_COOLDOWN_MS"`
	SwitchCooldownMS int               `yaml:"switch_cooldown_ms" env:"DUALITY_SWITCH_COOLDOWN_MS"`
	AxisThreshold    float64           `yaml:"axis_threshold" env:"DUALITY_AXIS_THRESHOLD"`
	DoubleTapMS      int               `yaml:"double_tap_ms" env:"DUALITY_DOUBLE_TAP_MS"`
	SwipeMin         float64           `yaml:"swipe_min"`
	Keys             map[string]string `yaml:"keys"` // key name -> command name
}

// StorageConfig defines where runs and custom levels are kept.
type StorageConfig struct {
	DB string `yaml:"db" env:"DUALITY_DB"`
}

// LevelsConfig defines extra level sources.
type LevelsConfig struct {
	Dir string `yaml:"dir" env:"DUALITY_LEVELS_DIR"` // directory of .yaml/.json levels, optional
}

// ServerConfig defines the network front ends.
type ServerConfig struct {
	SSHAddr     string        `yaml:"ssh_addr" env:"DUALITY_SSH_ADDR"`
	HostKeyPath string        `yaml:"host_key_path" env:"DUALITY_HOST_KEY"`
	HTTPAddr    string        `yaml:"http_addr" env:"DUALITY_HTTP_ADDR"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"DUALITY_IDLE_TIMEOUT"`
	MaxRooms    int           `yaml:"max_rooms" env:"DUALITY_MAX_ROOMS"`
	RoomTTL     time.Duration `yaml:"room_ttl" env:"DUALITY_ROOM_TTL"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level" env:"DUALITY_LOG_LEVEL"` // debug, info, warn, error
}

// UIConfig defines terminal presentation.
type UIConfig struct {
	Lang string `yaml:"lang" env:"DUALITY_LANG"` // en or zh
	FPS  int    `yaml:"fps" env:"DUALITY_FPS"`
	Bell bool   `yaml:"bell" env:"DUALITY_BELL"` // ring the terminal bell on win and error cues
}

// Timing converts the input section to adapter timing.
func (c InputConfig) Timing() input.Timing {
	return input.Timing{
		MoveCooldown:   time.Duration(c.MoveCooldownMS) * time.Millisecond,
		SwitchCooldown: time.Duration(c.SwitchCooldownMS) * time.Millisecond,
		AxisThreshold:  c.AxisThreshold,
		DoubleTap:      time.Duration(c.DoubleTapMS) * time.Millisecond,
		SwipeMin:       c.SwipeMin,
	}
}

// Bindings validates and returns the key table.
func (c InputConfig) Bindings() (input.Bindings, error) {
	return input.NewBindings(c.Keys)
}

// Validate checks the configuration for values the program cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Input.MoveCooldownMS <= 0:
		return fmt.Errorf("config: input.move_cooldown_ms must be positive, got %d", c.Input.MoveCooldownMS)
	case c.Input.SwitchCooldownMS <= 0:
		return fmt.Errorf("config: input.switch_cooldown_ms must be positive, got %d", c.Input.SwitchCooldownMS)
	case c.Input.AxisThreshold <= 0 || c.Input.AxisThreshold >= 1:
		return fmt.Errorf("config: input.axis_threshold must be in (0,1), got %g", c.Input.AxisThreshold)
	case c.UI.FPS <= 0:
		return fmt.Errorf("config: ui.fps must be positive, got %d", c.UI.FPS)
	}
	if _, err := c.Input.Bindings(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}
