// Package store is the typed persistence port over a key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/fillbox/internal/kv"
	"github.com/verte-zerg/fillbox/internal/model"
)

// Logical keys, one value each.
const (
	KeyConfig       = "app_config"
	KeyLists        = "content_lists"
	KeyRound        = "round_state"
	KeyAchievements = "achievements"
	KeySelectedList = "selected_list"
)

// PersistenceError reports a failed durable read or write.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Store wraps a kv.Store with typed accessors.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// New returns a Store over backend.
func New(backend kv.Store) *Store {
	return &Store{kv: backend, now: time.Now}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return &PersistenceError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// LoadConfig returns the stored config layered over the defaults.
func (s *Store) LoadConfig(ctx context.Context) (model.AppConfig, error) {
	cfg := model.DefaultConfig()
	if _, err := s.getJSON(ctx, KeyConfig, &cfg); err != nil {
		return model.DefaultConfig(), err
	}
	return cfg, nil
}

// SaveConfig persists cfg.
func (s *Store) SaveConfig(ctx context.Context, cfg model.AppConfig) error {
	return s.setJSON(ctx, KeyConfig, cfg)
}

// LoadLists returns every stored content list.
func (s *Store) LoadLists(ctx context.Context) ([]model.ContentList, error) {
	var lists []model.ContentList
	if _, err := s.getJSON(ctx, KeyLists, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// SaveLists replaces the stored list collection.
func (s *Store) SaveLists(ctx context.Context, lists []model.ContentList) error {
	if lists == nil {
		lists = []model.ContentList{}
	}
	return s.setJSON(ctx, KeyLists, lists)
}

// LoadRound returns the persisted round, or nil when none is stored.
func (s *Store) LoadRound(ctx context.Context) (*model.RoundState, error) {
	var round model.RoundState
	found, err := s.getJSON(ctx, KeyRound, &round)
	if err != nil || !found {
		return nil, err
	}
	return &round, nil
}

// SaveRound persists the active round.
func (s *Store) SaveRound(ctx context.Context, round model.RoundState) error {
	return s.setJSON(ctx, KeyRound, round)
}

// DeleteRound removes the active round.
func (s *Store) DeleteRound(ctx context.Context) error {
	return s.delete(ctx, KeyRound)
}

// LoadAchievements returns the earned badge set.
func (s *Store) LoadAchievements(ctx context.Context) (model.AchievementSet, error) {
	var set model.AchievementSet
	if _, err := s.getJSON(ctx, KeyAchievements, &set); err != nil {
		return model.AchievementSet{}, err
	}
	return set, nil
}

// SaveAchievements replaces the earned badge set.
func (s *Store) SaveAchievements(ctx context.Context, set model.AchievementSet) error {
	if set.Badges == nil {
		set.Badges = []model.Achievement{}
	}
	return s.setJSON(ctx, KeyAchievements, set)
}

// LoadSelectedListID returns the selected list id, or "" when none.
func (s *Store) LoadSelectedListID(ctx context.Context) (string, error) {
	var id string
	if _, err := s.getJSON(ctx, KeySelectedList, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveSelectedListID persists id. An empty id clears the selection.
func (s *Store) SaveSelectedListID(ctx context.Context, id string) error {
	if id == "" {
		return s.delete(ctx, KeySelectedList)
	}
	return s.setJSON(ctx, KeySelectedList, id)
}

// Export reads config, lists and achievements into a snapshot.
func (s *Store) Export(ctx context.Context) (model.Snapshot, error) {
	var (
		cfg          model.AppConfig
		lists        []model.ContentList
		achievements model.AchievementSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = s.LoadConfig(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		lists, err = s.LoadLists(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		achievements, err = s.LoadAchievements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to export data: %w", err)
	}
	if lists == nil {
		lists = []model.ContentList{}
	}
	if achievements.Badges == nil {
		achievements.Badges = []model.Achievement{}
	}
	return model.Snapshot{
		Config:       &cfg,
		Lists:        lists,
		Achievements: &achievements,
		ExportedAt:   s.now().UTC(),
	}, nil
}

// Import writes each field present in snap; absent fields are left untouched.
// The active round is never touched.
func (s *Store) Import(ctx context.Context, snap model.Snapshot) error {
	if snap.Config != nil {
		if err := s.SaveConfig(ctx, *snap.Config); err != nil {
			return fmt.Errorf("failed to import data: %w", err)
		}
	}
	if snap.Lists != nil {
		if err := s.SaveLists(ctx, snap.Lists); err != nil {
			return fmt.Errorf("failed to import data: %w", err)
		}
	}
	if snap.Achievements != nil {
		if err := s.SaveAchievements(ctx, *snap.Achievements); err != nil {
			return fmt.Errorf("failed to import data: %w", err)
		}
	}
	return nil
}
