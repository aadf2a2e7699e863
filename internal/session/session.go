// Package session coordinates configuration, list selection and the round
// engine behind one serialized API for the presentation layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/fillbox/internal/achievement"
	"github.com/verte-zerg/fillbox/internal/catalog"
	"github.com/verte-zerg/fillbox/internal/config"
	"github.com/verte-zerg/fillbox/internal/game"
	"github.com/verte-zerg/fillbox/internal/generator"
	"github.com/verte-zerg/fillbox/internal/lists"
	"github.com/verte-zerg/fillbox/internal/logger"
	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/store"
)

// Options configures a Session. Store is required.
type Options struct {
	Store      *store.Store
	Generator  *generator.Generator
	ClearDelay time.Duration
	Logger     *logger.Logger
	// Seeds are inserted at Init when their ids are not stored yet.
	Seeds []model.ContentList
	// Degraded marks a session running without durable storage.
	Degraded bool
}

// Session is safe for concurrent use. Operations are serialized.
type Session struct {
	mu       sync.Mutex
	store    *store.Store
	lists    *lists.Repository
	awards   *achievement.Tracker
	engine   *game.Engine
	log      *logger.Logger
	seeds    []model.ContentList
	degraded bool

	cfg      model.AppConfig
	selected string

	evMu   sync.Mutex
	events chan Event
	closed bool
}

// New wires a session over st. Call Init before use.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	s := &Session{
		store:    opts.Store,
		lists:    lists.NewRepository(opts.Store),
		awards:   achievement.NewTracker(opts.Store),
		log:      log,
		seeds:    opts.Seeds,
		degraded: opts.Degraded,
		cfg:      model.DefaultConfig(),
		events:   make(chan Event, eventBuffer),
	}
	s.engine = game.NewEngine(game.Options{
		Store:      opts.Store,
		Awards:     s.awards,
		Generator:  opts.Generator,
		ClearDelay: opts.ClearDelay,
		Logger:     log.With("component", "engine"),
		OnChange:   func(c game.Change) { s.publish(fromChange(c)) },
	})
	return s
}

// Init seeds the catalog, loads persisted state and restores the round.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.seeds) > 0 {
		added, err := s.lists.Seed(ctx, s.seeds)
		if err != nil {
			return fmt.Errorf("failed to seed content lists: %w", err)
		}
		if added > 0 {
			s.log.Info("seeded content lists", "count", added)
		}
	}

	var (
		cfg        model.AppConfig
		selected   string
		listCount  int
		badgeCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.store.LoadConfig(gctx)
		if err != nil {
			s.log.Warn("using default config", "error", err)
			loaded = model.DefaultConfig()
		}
		if err := config.Validate(loaded); err != nil {
			s.log.Warn("stored config is invalid, using defaults", "error", err)
			loaded = model.DefaultConfig()
		}
		cfg = loaded
		return nil
	})
	g.Go(func() error {
		id, err := s.store.LoadSelectedListID(gctx)
		if err != nil {
			s.log.Warn("dropping unreadable list selection", "error", err)
			id = ""
		}
		selected = id
		return nil
	})
	g.Go(func() error {
		all, err := s.lists.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load content lists: %w", err)
		}
		listCount = len(all)
		return nil
	})
	g.Go(func() error {
		earned, err := s.awards.List(gctx)
		if err != nil {
			s.log.Warn("achievements unreadable", "error", err)
		}
		badgeCount = len(earned)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.cfg = cfg
	s.selected = selected

	if s.selected != "" {
		if _, err := s.lists.Get(ctx, s.selected); errors.Is(err, lists.ErrListNotFound) {
			s.log.Info("selected list no longer exists", "list_id", s.selected)
			s.selected = ""
			if err := s.store.SaveSelectedListID(ctx, ""); err != nil {
				return err
			}
		}
	}
	if s.selected == "" {
		if err := s.selectDefaultLocked(ctx); err != nil {
			return err
		}
	}

	if _, err := s.engine.Restore(ctx); err != nil {
		s.log.Warn("failed to restore round", "error", err)
	}
	s.log.Info("session ready", "mode", string(s.cfg.Mode), "list_id", s.selected,
		"lists", listCount, "achievements", badgeCount, "degraded", s.degraded)
	return nil
}

// Degraded reports whether state is kept only in memory.
func (s *Session) Degraded() bool {
	return s.degraded
}

// Config returns the current game preferences.
func (s *Session) Config() model.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// UpdateConfig validates and persists cfg. A mode change that makes the
// selected list unusable clears the round and the selection first.
func (s *Session) UpdateConfig(ctx context.Context, cfg model.AppConfig) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail(s.updateConfigLocked(ctx, cfg))
}

func (s *Session) updateConfigLocked(ctx context.Context, cfg model.AppConfig) error {
	if cur := s.engine.Current(); cur != nil && cfg.Mode != s.cfg.Mode && cur.Mode != cfg.Mode {
		if err := s.engine.ClearRound(ctx); err != nil {
			return err
		}
	}
	if cfg.Mode != s.cfg.Mode && s.selected != "" {
		list, err := s.lists.Get(ctx, s.selected)
		switch {
		case errors.Is(err, lists.ErrListNotFound):
			if err := s.deselectLocked(ctx); err != nil {
				return err
			}
		case err != nil:
			return err
		case list.Mode != cfg.Mode:
			if err := s.engine.ClearRound(ctx); err != nil {
				return err
			}
			if err := s.deselectLocked(ctx); err != nil {
				return err
			}
		}
	}
	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		return err
	}
	s.cfg = cfg
	s.publish(Event{Kind: ConfigChanged})
	return nil
}

// SetMode switches the practice mode and, when nothing usable is selected,
// selects the built-in default list for that mode.
func (s *Session) SetMode(ctx context.Context, mode model.Mode) error {
	cfg := s.Config()
	cfg.Mode = mode
	if err := config.Validate(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateConfigLocked(ctx, cfg); err != nil {
		return s.fail(err)
	}
	if s.selected == "" {
		return s.fail(s.selectDefaultLocked(ctx))
	}
	return nil
}

// Selected returns the selected list id, or "".
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectList selects the list with id. Selecting a different list clears
// the active round; a list of another mode switches the configured mode.
// An empty id clears the selection.
func (s *Session) SelectList(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		return s.fail(s.deselectLocked(ctx))
	}
	list, err := s.lists.Get(ctx, id)
	if err != nil {
		return err
	}
	if id == s.selected {
		return nil
	}
	if err := s.engine.ClearRound(ctx); err != nil {
		return s.fail(err)
	}
	prev := s.cfg
	if list.Mode != prev.Mode {
		cfg := prev
		cfg.Mode = list.Mode
		if err := s.store.SaveConfig(ctx, cfg); err != nil {
			return s.fail(err)
		}
		s.cfg = cfg
	}
	if err := s.store.SaveSelectedListID(ctx, id); err != nil {
		if s.cfg.Mode != prev.Mode {
			// Selection and mode must move together.
			if rerr := s.store.SaveConfig(ctx, prev); rerr != nil {
				s.log.Error("failed to restore config after selection failure", "error", rerr)
			}
			s.cfg = prev
		}
		return s.fail(err)
	}
	s.selected = id
	if s.cfg.Mode != prev.Mode {
		s.publish(Event{Kind: ConfigChanged})
	}
	s.publish(Event{Kind: SelectionChanged})
	return nil
}

func (s *Session) deselectLocked(ctx context.Context) error {
	if s.selected == "" {
		return nil
	}
	if err := s.store.SaveSelectedListID(ctx, ""); err != nil {
		return err
	}
	s.selected = ""
	s.publish(Event{Kind: SelectionChanged})
	return nil
}

func (s *Session) selectDefaultLocked(ctx context.Context) error {
	id := catalog.DefaultListID(s.cfg.Mode)
	if id == "" {
		return nil
	}
	if _, err := s.lists.Get(ctx, id); err != nil {
		if errors.Is(err, lists.ErrListNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.SaveSelectedListID(ctx, id); err != nil {
		return err
	}
	s.selected = id
	s.publish(Event{Kind: SelectionChanged})
	return nil
}

// StartRound starts a fresh round from the selected list, replacing any
// active one.
func (s *Session) StartRound(ctx context.Context) (*model.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return nil, game.ErrNoListSelected
	}
	list, err := s.lists.Get(ctx, s.selected)
	if errors.Is(err, lists.ErrListNotFound) {
		return nil, game.ErrNoListSelected
	}
	if err != nil {
		return nil, s.fail(err)
	}
	round, err := s.engine.StartRound(ctx, &list, s.cfg)
	if err != nil {
		return nil, s.fail(err)
	}
	return round, nil
}

// NewRound discards the active round and starts another.
func (s *Session) NewRound(ctx context.Context) (*model.RoundState, error) {
	return s.StartRound(ctx)
}

// UpdateEntry forwards raw input for a box to the engine.
func (s *Session) UpdateEntry(ctx context.Context, boxID, raw string) (*model.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, err := s.engine.UpdateEntry(ctx, boxID, raw)
	return round, s.fail(err)
}

// ValidateBox checks a box and reports whether it matched.
func (s *Session) ValidateBox(ctx context.Context, boxID string) (bool, *model.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, round, err := s.engine.ValidateBox(ctx, boxID)
	return ok, round, s.fail(err)
}

// ClearRound abandons or dismisses the active round.
func (s *Session) ClearRound(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail(s.engine.ClearRound(ctx))
}

// Round returns a copy of the active round, or nil.
func (s *Session) Round() *model.RoundState {
	return s.engine.Current()
}

// Lists returns every content list.
func (s *Session) Lists(ctx context.Context) ([]model.ContentList, error) {
	return s.lists.List(ctx)
}

// List returns one content list.
func (s *Session) List(ctx context.Context, id string) (model.ContentList, error) {
	return s.lists.Get(ctx, id)
}

// CreateList inserts an empty list.
func (s *Session) CreateList(ctx context.Context, title string, mode model.Mode) (model.ContentList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.lists.Create(ctx, title, mode)
	if err != nil {
		return model.ContentList{}, s.fail(err)
	}
	s.publish(Event{Kind: ListsChanged})
	return list, nil
}

// SaveList inserts or replaces a list. The active round keeps its boxes.
func (s *Session) SaveList(ctx context.Context, list model.ContentList) (model.ContentList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved, err := s.lists.Put(ctx, list)
	if err != nil {
		return model.ContentList{}, s.fail(err)
	}
	s.publish(Event{Kind: ListsChanged})
	return saved, nil
}

// DeleteList removes a list. Deleting the selected list clears the
// selection; the active round is kept.
func (s *Session) DeleteList(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lists.Delete(ctx, id); err != nil {
		return s.fail(err)
	}
	s.publish(Event{Kind: ListsChanged})
	if id == s.selected {
		return s.fail(s.deselectLocked(ctx))
	}
	return nil
}

// Achievements returns the earned badges.
func (s *Session) Achievements(ctx context.Context) ([]model.Achievement, error) {
	return s.awards.List(ctx)
}

// Export snapshots config, lists and achievements.
func (s *Session) Export(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Export(ctx)
}

// Import applies the fields present in snap and reloads config. The active
// round is never touched.
func (s *Session) Import(ctx context.Context, snap model.Snapshot) error {
	if snap.Config != nil {
		if err := config.Validate(*snap.Config); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(snap.Lists))
	for _, list := range snap.Lists {
		if err := lists.Validate(list); err != nil {
			return fmt.Errorf("failed to import list %q: %w", list.ID, err)
		}
		if _, dup := seen[list.ID]; dup {
			return fmt.Errorf("failed to import: %w: duplicate list id %q", lists.ErrInvalidList, list.ID)
		}
		seen[list.ID] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Import(ctx, snap); err != nil {
		return s.fail(err)
	}
	if snap.Config != nil {
		s.cfg = *snap.Config
		s.publish(Event{Kind: ConfigChanged})
	}
	if snap.Lists != nil {
		s.publish(Event{Kind: ListsChanged})
		if s.selected != "" {
			if _, err := s.lists.Get(ctx, s.selected); errors.Is(err, lists.ErrListNotFound) {
				return s.fail(s.deselectLocked(ctx))
			}
		}
	}
	if snap.Achievements != nil {
		s.publish(Event{Kind: AchievementEarned})
	}
	s.log.Info("snapshot imported", "config", snap.Config != nil, "lists", len(snap.Lists), "achievements", snap.Achievements != nil)
	return nil
}

// Close stops the pending clear and closes the event channel.
func (s *Session) Close() {
	s.engine.Close()
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// fail publishes persistence failures for observers and returns err.
func (s *Session) fail(err error) error {
	if err != nil && store.IsPersistence(err) {
		s.log.Error("storage operation failed", "error", err)
		s.publish(Event{Kind: Error, Err: err})
	}
	return err
}
