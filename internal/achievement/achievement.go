// Package achievement tracks earned badges.
package achievement

import (
	"context"
	"sync"
	"time"

	"github.com/verte-zerg/fillbox/internal/model"
)

// RoundComplete is earned the first time a round is completed.
const RoundComplete = "round-complete"

// Store persists the badge set.
type Store interface {
	LoadAchievements(ctx context.Context) (model.AchievementSet, error)
	SaveAchievements(ctx context.Context, set model.AchievementSet) error
}

// Tracker is an append-only, idempotent badge set.
type Tracker struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// NewTracker returns a tracker over st.
func NewTracker(st Store) *Tracker {
	return &Tracker{store: st, now: time.Now}
}

// Award records id if it has not been earned yet and reports whether it was
// newly earned.
func (t *Tracker) Award(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, err := t.store.LoadAchievements(ctx)
	if err != nil {
		return false, err
	}
	if set.Has(id) {
		return false, nil
	}
	set.Badges = append(set.Badges, model.Achievement{ID: id, EarnedAt: t.now().UTC()})
	if err := t.store.SaveAchievements(ctx, set); err != nil {
		return false, err
	}
	return true, nil
}

// List returns every earned badge in earn order.
func (t *Tracker) List(ctx context.Context) ([]model.Achievement, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, err := t.store.LoadAchievements(ctx)
	if err != nil {
		return nil, err
	}
	return append([]model.Achievement(nil), set.Badges...), nil
}

// Has reports whether id was earned.
func (t *Tracker) Has(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, err := t.store.LoadAchievements(ctx)
	if err != nil {
		return false, err
	}
	return set.Has(id), nil
}

// Title returns the display name of a known badge.
func Title(id string) string {
	switch id {
	case RoundComplete:
		return "Round Master!"
	default:
		return id
	}
}
