package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/tui-duality/internal/input"
)

//go:embed defaults/duality.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	keys := make(map[string]string, len(input.DefaultKeys))
	for k, v := range input.DefaultKeys {
		keys[k] = v
	}
	return Config{
		Input: InputConfig{
			MoveCooldownMS:   280,
			SwitchCooldownMS: 200,
			AxisThreshold:    0.5,
			DoubleTapMS:      300,
			SwipeMin:         1,
			Keys:             keys,
		},
		Storage: StorageConfig{DB: "~/.duality/duality.db"},
		Server: ServerConfig{
			SSHAddr:     ":2323",
			HostKeyPath: ".ssh/duality_ed25519",
			HTTPAddr:    ":8080",
			IdleTimeout: 10 * time.Minute,
			MaxRooms:    64,
			RoomTTL:     30 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
		UI:  UIConfig{Lang: "en", FPS: 30, Bell: true},
	}
}
