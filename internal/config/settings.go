package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/fillbox/internal/model"
)

var ErrInvalidConfig = errors.New("invalid config")

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const (
	MinBoxes          = 1
	MaxBoxes          = 24
	defaultClearDelay = 3 * time.Second
	defaultRedisAddr  = "localhost:6379"
	defaultLogLevel   = "info"
)

// Settings is the resolved startup configuration.
type Settings struct {
	Mode       model.Mode
	Boxes      int
	Sounds     *bool
	ClearDelay time.Duration

	Backend     string
	DBPath      string
	RedisAddr   string
	RedisPrefix string

	LogLevel string
	LogFile  string
}

// Resolve layers defaults, the file and the environment, in that order.
func Resolve(file FileConfig, envCfg EnvConfig) (Settings, error) {
	s := Settings{
		ClearDelay: defaultClearDelay,
		Backend:    BackendSQLite,
		DBPath:     DefaultDBPath(),
		RedisAddr:  defaultRedisAddr,
		LogLevel:   defaultLogLevel,
		LogFile:    DefaultLogPath(),
	}

	if file.Game.Mode != nil {
		if err := s.setMode(*file.Game.Mode); err != nil {
			return Settings{}, err
		}
	}
	if file.Game.Boxes != nil {
		s.Boxes = *file.Game.Boxes
	}
	if file.Game.Sounds != nil {
		sounds := *file.Game.Sounds
		s.Sounds = &sounds
	}
	if file.Game.ClearDelay != nil {
		d, err := time.ParseDuration(*file.Game.ClearDelay)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: clear-delay: %v", ErrInvalidConfig, err)
		}
		s.ClearDelay = d
	}
	setString(&s.Backend, file.Storage.Backend)
	setString(&s.DBPath, file.Storage.Path)
	setString(&s.RedisAddr, file.Storage.RedisAddr)
	setString(&s.RedisPrefix, file.Storage.RedisPrefix)
	setString(&s.LogLevel, file.Log.Level)
	setString(&s.LogFile, file.Log.File)

	if envCfg.Mode != "" {
		if err := s.setMode(envCfg.Mode); err != nil {
			return Settings{}, err
		}
	}
	if envCfg.Boxes != 0 {
		s.Boxes = envCfg.Boxes
	}
	if envCfg.ClearDelay != 0 {
		s.ClearDelay = envCfg.ClearDelay
	}
	setNonEmpty(&s.Backend, envCfg.Backend)
	setNonEmpty(&s.DBPath, envCfg.DBPath)
	setNonEmpty(&s.RedisAddr, envCfg.RedisAddr)
	setNonEmpty(&s.RedisPrefix, envCfg.RedisPrefix)
	setNonEmpty(&s.LogLevel, envCfg.LogLevel)
	setNonEmpty(&s.LogFile, envCfg.LogFile)

	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) setMode(raw string) error {
	mode, ok := model.ParseMode(raw)
	if !ok {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, raw)
	}
	s.Mode = mode
	return nil
}

func (s Settings) validate() error {
	switch s.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, s.Backend)
	}
	if s.Boxes != 0 && (s.Boxes < MinBoxes || s.Boxes > MaxBoxes) {
		return fmt.Errorf("%w: boxes must be between %d and %d", ErrInvalidConfig, MinBoxes, MaxBoxes)
	}
	if s.ClearDelay <= 0 {
		return fmt.Errorf("%w: clear-delay must be positive", ErrInvalidConfig)
	}
	return nil
}

// Apply overlays the startup overrides on a persisted AppConfig.
func (s Settings) Apply(cfg model.AppConfig) model.AppConfig {
	if s.Mode != "" {
		cfg.Mode = s.Mode
	}
	if s.Boxes != 0 {
		cfg.BoxesPerRound = s.Boxes
	}
	if s.Sounds != nil {
		cfg.SoundsEnabled = *s.Sounds
	}
	return cfg
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var buttonPositions = map[string]bool{
	"top-left":     true,
	"top-right":    true,
	"bottom-left":  true,
	"bottom-right": true,
}

// Validate checks game preferences before they are persisted.
func Validate(cfg model.AppConfig) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}
	if cfg.BoxesPerRound < MinBoxes || cfg.BoxesPerRound > MaxBoxes {
		return fmt.Errorf("%w: boxes per round must be between %d and %d", ErrInvalidConfig, MinBoxes, MaxBoxes)
	}
	for name, c := range map[string]string{
		"bg":        cfg.Palette.Bg,
		"primary":   cfg.Palette.Primary,
		"accent":    cfg.Palette.Accent,
		"boxBg":     cfg.Palette.BoxBg,
		"boxBorder": cfg.Palette.BoxBorder,
	} {
		if c != "" && !hexColor.MatchString(c) {
			return fmt.Errorf("%w: palette %s %q is not a #RRGGBB color", ErrInvalidConfig, name, c)
		}
	}
	if cfg.ParentButtonPosition != "" && !buttonPositions[cfg.ParentButtonPosition] {
		return fmt.Errorf("%w: unknown button position %q", ErrInvalidConfig, cfg.ParentButtonPosition)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setNonEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
