package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game    GameConfig    `toml:"game"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// GameConfig maps startup overrides for game preferences.
type GameConfig struct {
	Mode       *string `toml:"mode"`
	Boxes      *int    `toml:"boxes"`
	Sounds     *bool   `toml:"sounds"`
	ClearDelay *string `toml:"clear-delay"`
}

// StorageConfig selects and locates the storage backend.
type StorageConfig struct {
	Backend     *string `toml:"backend"`
	Path        *string `toml:"path"`
	RedisAddr   *string `toml:"redis-addr"`
	RedisPrefix *string `toml:"redis-prefix"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("%w: unknown key %s", ErrInvalidConfig, undecoded[0])
	}
	return cfg, nil
}

// Template is written by the config command when no file exists yet.
const Template = `# fillbox configuration

[game]
# mode = "words"        # words, numbers or letters
# boxes = 6
# sounds = true
# clear-delay = "3s"

[storage]
# backend = "sqlite"    # sqlite, redis or memory
# path = ""             # defaults to $XDG_DATA_HOME/fillbox/fillbox.db
# redis-addr = "localhost:6379"
# redis-prefix = "fillbox:"

[log]
# level = "info"
# file = ""             # defaults to $XDG_STATE_HOME/fillbox/fillbox.log
`
