package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/fillbox/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Game.Mode != nil || cfg.Storage.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := writeConfig(t, `
[game]
mode = "numbers"
boxes = 4
sounds = false
clear-delay = "500ms"

[storage]
backend = "memory"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	s, err := Resolve(cfg, EnvConfig{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Mode != model.ModeNumber || s.Boxes != 4 || s.Sounds == nil || *s.Sounds {
		t.Fatalf("unexpected game settings: %+v", s)
	}
	if s.ClearDelay != 500*time.Millisecond || s.Backend != BackendMemory || s.LogLevel != "debug" {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[game]\nbox = 3\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	s, err := Resolve(FileConfig{}, EnvConfig{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Backend != BackendSQLite || s.DBPath != filepath.Join("/data", "fillbox", "fillbox.db") {
		t.Fatalf("unexpected storage defaults: %+v", s)
	}
	if s.LogFile != filepath.Join("/state", "fillbox", "fillbox.log") || s.ClearDelay != 3*time.Second {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.Mode != "" || s.Boxes != 0 || s.Sounds != nil {
		t.Fatalf("game overrides should be unset: %+v", s)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("FILLBOX_MODE", "letters")
	t.Setenv("FILLBOX_BOXES", "8")
	t.Setenv("FILLBOX_STORAGE", "Redis")
	t.Setenv("FILLBOX_CLEAR_DELAY", "1s")
	envCfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	mode, boxes, backend := "words", 3, "memory"
	s, err := Resolve(FileConfig{
		Game:    GameConfig{Mode: &mode, Boxes: &boxes},
		Storage: StorageConfig{Backend: &backend},
	}, envCfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Mode != model.ModeLetter || s.Boxes != 8 || s.Backend != BackendRedis || s.ClearDelay != time.Second {
		t.Fatalf("env did not win: %+v", s)
	}
}

func TestResolveRejectsInvalidValues(t *testing.T) {
	bad := "floppy"
	if _, err := Resolve(FileConfig{Storage: StorageConfig{Backend: &bad}}, EnvConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid backend, got %v", err)
	}
	if _, err := Resolve(FileConfig{}, EnvConfig{Mode: "colors"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	if _, err := Resolve(FileConfig{}, EnvConfig{Boxes: 99}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid boxes, got %v", err)
	}
}

func TestApplyOverlaysOnlySetFields(t *testing.T) {
	off := false
	cfg := Settings{Boxes: 2, Sounds: &off}.Apply(model.DefaultConfig())
	if cfg.Mode != model.ModeWord || cfg.BoxesPerRound != 2 || cfg.SoundsEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(model.DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg := model.DefaultConfig()
	cfg.BoxesPerRound = 0
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid boxes, got %v", err)
	}
	cfg = model.DefaultConfig()
	cfg.Palette.Accent = "orange"
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid color, got %v", err)
	}
	cfg = model.DefaultConfig()
	cfg.ParentButtonPosition = "middle"
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid position, got %v", err)
	}
}
