// Package game runs the single active round: generation, per-box entry and
// validation, completion detection and the deferred clear.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/fillbox/internal/achievement"
	"github.com/verte-zerg/fillbox/internal/generator"
	"github.com/verte-zerg/fillbox/internal/logger"
	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/store"
)

var (
	ErrNoListSelected = errors.New("no content list selected")
	ErrEmptyList      = errors.New("content list has no items")
)

// DefaultClearDelay is how long a completed round stays visible.
const DefaultClearDelay = 3 * time.Second

// RoundStore persists the round slot.
type RoundStore interface {
	LoadRound(ctx context.Context) (*model.RoundState, error)
	SaveRound(ctx context.Context, round model.RoundState) error
	DeleteRound(ctx context.Context) error
}

// Awarder records achievements idempotently.
type Awarder interface {
	Award(ctx context.Context, id string) (bool, error)
}

// ChangeKind identifies what an engine Change reports.
type ChangeKind int

const (
	RoundStarted ChangeKind = iota + 1
	RoundUpdated
	RoundCompleted
	RoundCleared
	AchievementEarned
	Failed
)

func (k ChangeKind) String() string {
	switch k {
	case RoundStarted:
		return "started"
	case RoundUpdated:
		return "updated"
	case RoundCompleted:
		return "completed"
	case RoundCleared:
		return "cleared"
	case AchievementEarned:
		return "achievement"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change is published after every state transition that reached storage.
type Change struct {
	Kind          ChangeKind
	RoundID       string
	AchievementID string
	Err           error
}

// Options configures an Engine. Store and Awards are required.
type Options struct {
	Store      RoundStore
	Awards     Awarder
	Generator  *generator.Generator
	ClearDelay time.Duration
	Logger     *logger.Logger
	// OnChange runs with the engine lock held and must not call back into the engine.
	OnChange func(Change)
	Now      func() time.Time
	NewID    func() string
}

type pendingClear struct {
	roundID      string
	timer        *time.Timer
	awardPending bool
}

// Engine owns the round slot. All methods are safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	store      RoundStore
	awards     Awarder
	gen        *generator.Generator
	clearDelay time.Duration
	log        *logger.Logger
	onChange   func(Change)
	now        func() time.Time
	newID      func() string

	round   *model.RoundState
	pending *pendingClear
}

// NewEngine returns an engine with an empty round slot.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		store:      opts.Store,
		awards:     opts.Awards,
		gen:        opts.Generator,
		clearDelay: opts.ClearDelay,
		log:        opts.Logger,
		onChange:   opts.OnChange,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if e.gen == nil {
		e.gen = generator.New()
	}
	if e.clearDelay <= 0 {
		e.clearDelay = DefaultClearDelay
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// StartRound replaces the current round with a fresh one drawn from list.
func (e *Engine) StartRound(ctx context.Context, list *model.ContentList, cfg model.AppConfig) (*model.RoundState, error) {
	if list == nil {
		return nil, ErrNoListSelected
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyList, list.ID)
	}
	count := cfg.BoxesPerRound
	if count < 1 {
		count = 1
	}
	mode := list.Mode
	if !mode.Valid() {
		mode = cfg.Mode
	}

	picked := e.gen.SampleIndexes(len(list.Items), count)
	ids := make([]string, 0, len(picked))
	boxes := make(map[string]model.BoxState, len(picked))
	for _, idx := range picked {
		item := list.Items[idx]
		id := e.newID()
		ids = append(ids, id)
		boxes[id] = model.BoxState{Target: item.Key, Decoration: item.Decoration}
	}
	round := model.RoundState{
		RoundID:   e.newID(),
		ListID:    list.ID,
		Mode:      mode,
		BoxOrder:  e.gen.Shuffle(ids),
		BoxStates: boxes,
		StartedAt: e.now().UTC(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SaveRound(ctx, round); err != nil {
		return nil, err
	}
	if e.round != nil && !e.round.Completed {
		e.log.Info("round abandoned", "round_id", e.round.RoundID)
	}
	e.cancelPendingLocked()
	e.round = &round
	e.log.Info("round started", "round_id", round.RoundID, "list_id", round.ListID, "boxes", len(ids))
	e.emit(Change{Kind: RoundStarted, RoundID: round.RoundID})
	return e.currentLocked(), nil
}

// UpdateEntry stores the normalized raw input for a box. It is a silent no-op
// when there is no round, the round is complete, the box is unknown or locked.
func (e *Engine) UpdateEntry(ctx context.Context, boxID, raw string) (*model.RoundState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil || e.round.Completed {
		return e.currentLocked(), nil
	}
	box, ok := e.round.BoxStates[boxID]
	if !ok || box.Locked {
		return e.currentLocked(), nil
	}
	entered := Normalize(e.round.Mode, raw)
	if entered == box.Entered {
		return e.currentLocked(), nil
	}

	next := e.round.Clone()
	box.Entered = entered
	next.BoxStates[boxID] = box
	if err := e.store.SaveRound(ctx, next); err != nil {
		return e.currentLocked(), err
	}
	e.round = &next
	e.emit(Change{Kind: RoundUpdated, RoundID: next.RoundID})
	return e.currentLocked(), nil
}

// ValidateBox locks the box when its entry matches the target exactly. It
// reports false without changing anything otherwise.
func (e *Engine) ValidateBox(ctx context.Context, boxID string) (bool, *model.RoundState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil || e.round.Completed {
		return false, e.currentLocked(), nil
	}
	box, ok := e.round.BoxStates[boxID]
	if !ok || box.Locked {
		// A completion write may have failed after the last lock.
		if err := e.completeLocked(ctx); err != nil {
			return false, e.currentLocked(), err
		}
		return false, e.currentLocked(), nil
	}
	if box.Entered == "" || box.Entered != box.Target {
		return false, e.currentLocked(), nil
	}

	next := e.round.Clone()
	box.Locked = true
	box.Correct = true
	next.BoxStates[boxID] = box
	if err := e.store.SaveRound(ctx, next); err != nil {
		return false, e.currentLocked(), err
	}
	e.round = &next
	e.emit(Change{Kind: RoundUpdated, RoundID: next.RoundID})
	if err := e.completeLocked(ctx); err != nil {
		return true, e.currentLocked(), err
	}
	return true, e.currentLocked(), nil
}

// ClearRound removes the round from storage and memory. Clearing an
// incomplete round abandons it.
func (e *Engine) ClearRound(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.DeleteRound(ctx); err != nil {
		return err
	}
	e.cancelPendingLocked()
	if e.round == nil {
		return nil
	}
	id := e.round.RoundID
	e.round = nil
	e.log.Info("round cleared", "round_id", id)
	e.emit(Change{Kind: RoundCleared, RoundID: id})
	return nil
}

// Restore loads the persisted round into the slot. A round whose box order
// does not match its boxes is discarded.
func (e *Engine) Restore(ctx context.Context) (*model.RoundState, error) {
	round, err := e.store.LoadRound(ctx)
	if err != nil {
		var pe *store.PersistenceError
		if !errors.As(err, &pe) || pe.Op != "decode" {
			return nil, err
		}
		e.log.Warn("discarding unreadable round", "error", err)
		return nil, e.discard(ctx)
	}
	if round == nil {
		return nil, nil
	}
	if len(round.BoxStates) == 0 || !round.OrderIsPermutation() {
		e.log.Warn("discarding inconsistent round", "round_id", round.RoundID)
		return nil, e.discard(ctx)
	}
	if !round.Mode.Valid() {
		round.Mode = model.ModeWord
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
	e.round = round
	e.log.Info("round restored", "round_id", round.RoundID, "completed", round.Completed)
	e.emit(Change{Kind: RoundUpdated, RoundID: round.RoundID})
	switch {
	case round.Completed:
		e.scheduleClearLocked(round.RoundID)
		e.pending.awardPending = e.awardLocked(ctx, round.RoundID) != nil
	case round.AllCorrect():
		if err := e.completeLocked(ctx); err != nil {
			e.log.Warn("failed to complete restored round", "round_id", round.RoundID, "error", err)
		}
	}
	return e.currentLocked(), nil
}

// Current returns a copy of the round, or nil when the slot is empty.
func (e *Engine) Current() *model.RoundState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

// Close cancels any pending clear.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
}

func (e *Engine) discard(ctx context.Context) error {
	return e.store.DeleteRound(ctx)
}

func (e *Engine) currentLocked() *model.RoundState {
	if e.round == nil {
		return nil
	}
	out := e.round.Clone()
	return &out
}

func (e *Engine) completeLocked(ctx context.Context) error {
	if e.round == nil || e.round.Completed || !e.round.AllCorrect() {
		return nil
	}
	next := e.round.Clone()
	at := e.now().UTC()
	next.Completed = true
	next.CompletedAt = &at
	if err := e.store.SaveRound(ctx, next); err != nil {
		e.log.Warn("failed to persist completion", "round_id", next.RoundID, "error", err)
		return err
	}
	e.round = &next
	e.log.Info("round completed", "round_id", next.RoundID)
	e.emit(Change{Kind: RoundCompleted, RoundID: next.RoundID})

	err := e.awardLocked(ctx, next.RoundID)
	e.scheduleClearLocked(next.RoundID)
	e.pending.awardPending = err != nil
	return err
}

func (e *Engine) awardLocked(ctx context.Context, roundID string) error {
	newly, err := e.awards.Award(ctx, achievement.RoundComplete)
	if err != nil {
		e.log.Warn("failed to record achievement", "round_id", roundID, "error", err)
		return err
	}
	if newly {
		e.log.Info("achievement earned", "achievement", achievement.RoundComplete)
		e.emit(Change{Kind: AchievementEarned, RoundID: roundID, AchievementID: achievement.RoundComplete})
	}
	return nil
}

func (e *Engine) scheduleClearLocked(roundID string) {
	e.cancelPendingLocked()
	p := &pendingClear{roundID: roundID}
	p.timer = time.AfterFunc(e.clearDelay, func() { e.expire(p) })
	e.pending = p
}

func (e *Engine) cancelPendingLocked() {
	if e.pending == nil {
		return
	}
	e.pending.timer.Stop()
	e.pending = nil
}

func (e *Engine) expire(p *pendingClear) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != p {
		return
	}
	e.pending = nil
	if e.round == nil || e.round.RoundID != p.roundID || !e.round.Completed {
		return
	}
	ctx := context.Background()
	if p.awardPending {
		// Best-effort; the round is complete either way.
		_ = e.awardLocked(ctx, p.roundID)
	}
	if err := e.store.DeleteRound(ctx); err != nil {
		e.log.Error("failed to clear completed round", "round_id", p.roundID, "error", err)
		e.emit(Change{Kind: Failed, RoundID: p.roundID, Err: err})
		return
	}
	e.round = nil
	e.log.Info("round cleared", "round_id", p.roundID)
	e.emit(Change{Kind: RoundCleared, RoundID: p.roundID})
}

func (e *Engine) emit(c Change) {
	if e.onChange != nil {
		e.onChange(c)
	}
}
