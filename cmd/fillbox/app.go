package main

import (
	"context"
	"fmt"

	"github.com/verte-zerg/fillbox/internal/catalog"
	"github.com/verte-zerg/fillbox/internal/config"
	"github.com/verte-zerg/fillbox/internal/kv"
	"github.com/verte-zerg/fillbox/internal/logger"
	"github.com/verte-zerg/fillbox/internal/session"
	"github.com/verte-zerg/fillbox/internal/store"
)

type app struct {
	settings config.Settings
	log      *logger.Logger
	store    *store.Store
	sess     *session.Session
}

func loadSettings() (config.Settings, error) {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.Settings{}, err
	}
	path := config.DefaultConfigPath()
	if envCfg.ConfigPath != "" {
		path = envCfg.ConfigPath
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return config.Resolve(fileCfg, envCfg)
}

func openApp(ctx context.Context) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(settings.LogLevel, settings.LogFile)
	if err != nil {
		return nil, err
	}

	backend, degraded := openBackend(ctx, settings, log)
	st := store.New(backend)
	seeds, err := catalog.BuiltIn()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	sess := session.New(session.Options{
		Store:      st,
		ClearDelay: settings.ClearDelay,
		Logger:     log.With("component", "session"),
		Seeds:      seeds,
		Degraded:   degraded,
	})
	if err := sess.Init(ctx); err != nil {
		sess.Close()
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return &app{settings: settings, log: log, store: st, sess: sess}, nil
}

// openBackend falls back to memory when durable storage cannot be used.
func openBackend(ctx context.Context, s config.Settings, log *logger.Logger) (kv.Store, bool) {
	var (
		backend kv.Store
		err     error
	)
	switch s.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), false
	case config.BackendRedis:
		backend, err = openRedis(ctx, s)
	default:
		backend, err = openSQLite(s)
	}
	if err == nil {
		if err = kv.Probe(ctx, backend); err != nil {
			_ = backend.Close()
		}
	}
	if err != nil {
		log.Warn("durable storage unavailable, keeping state in memory", "backend", s.Backend, "error", err)
		logErrf("warning: storage unavailable (%v); progress will not be saved\n", err)
		return kv.NewMemory(), true
	}
	log.Debug("storage ready", "backend", s.Backend)
	return backend, false
}

func openRedis(ctx context.Context, s config.Settings) (kv.Store, error) {
	r, err := kv.OpenRedis(ctx, s.RedisAddr, s.RedisPrefix)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func openSQLite(s config.Settings) (kv.Store, error) {
	db, err := kv.OpenSQLite(s.DBPath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (a *app) Close() {
	a.sess.Close()
	if err := a.store.Close(); err != nil {
		logErrf("failed to close storage: %v\n", err)
	}
	a.log.Sync()
}
