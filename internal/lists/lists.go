// Package lists is the content list repository.
package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/fillbox/internal/game"
	"github.com/verte-zerg/fillbox/internal/model"
)

var (
	// ErrListNotFound is returned when no list has the requested id.
	ErrListNotFound = errors.New("content list not found")
	// ErrInvalidList is returned when a list fails validation.
	ErrInvalidList = errors.New("invalid content list")
)

// Store persists the list collection.
type Store interface {
	LoadLists(ctx context.Context) ([]model.ContentList, error)
	SaveLists(ctx context.Context, lists []model.ContentList) error
}

// Repository is keyed CRUD over content lists. Reads always reflect the
// latest successful write.
type Repository struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// NewRepository returns a repository over st.
func NewRepository(st Store) *Repository {
	return &Repository{store: st, now: time.Now}
}

// List returns every list in insertion order.
func (r *Repository) List(ctx context.Context) ([]model.ContentList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.LoadLists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ContentList, len(all))
	for i, l := range all {
		out[i] = l.Clone()
	}
	return out, nil
}

// ListByMode returns the lists usable in mode.
func (r *Repository) ListByMode(ctx context.Context, mode model.Mode) ([]model.ContentList, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, l := range all {
		if l.Mode == mode {
			out = append(out, l)
		}
	}
	return out, nil
}

// Get returns the list with id.
func (r *Repository) Get(ctx context.Context, id string) (model.ContentList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.LoadLists(ctx)
	if err != nil {
		return model.ContentList{}, err
	}
	if i := indexOf(all, id); i >= 0 {
		return all[i].Clone(), nil
	}
	return model.ContentList{}, fmt.Errorf("%w: %s", ErrListNotFound, id)
}

// Put inserts or replaces a list. Inserts keep the given timestamps (stamping
// now when zero); updates keep createdAt and bump updatedAt.
func (r *Repository) Put(ctx context.Context, list model.ContentList) (model.ContentList, error) {
	if err := Validate(list); err != nil {
		return model.ContentList{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.LoadLists(ctx)
	if err != nil {
		return model.ContentList{}, err
	}
	list = list.Clone()
	now := r.now().UTC()
	next := append([]model.ContentList(nil), all...)
	if i := indexOf(all, list.ID); i >= 0 {
		list.CreatedAt = all[i].CreatedAt
		list.UpdatedAt = now
		next[i] = list
	} else {
		if list.CreatedAt.IsZero() {
			list.CreatedAt = now
		}
		if list.UpdatedAt.IsZero() {
			list.UpdatedAt = list.CreatedAt
		}
		next = append(next, list)
	}
	if err := r.store.SaveLists(ctx, next); err != nil {
		return model.ContentList{}, err
	}
	return list.Clone(), nil
}

// Create inserts an empty list with a fresh id.
func (r *Repository) Create(ctx context.Context, title string, mode model.Mode) (model.ContentList, error) {
	return r.Put(ctx, model.ContentList{
		ID:    uuid.NewString(),
		Title: title,
		Mode:  mode,
		Items: []model.ContentItem{},
	})
}

// Delete removes the list with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.LoadLists(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	next := append(append([]model.ContentList(nil), all[:i]...), all[i+1:]...)
	return r.store.SaveLists(ctx, next)
}

// Seed inserts each list whose id is not already stored and returns how
// many were added. Existing lists are never overwritten.
func (r *Repository) Seed(ctx context.Context, seeds []model.ContentList) (int, error) {
	for _, l := range seeds {
		if err := Validate(l); err != nil {
			return 0, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.LoadLists(ctx)
	if err != nil {
		return 0, err
	}
	next := append([]model.ContentList(nil), all...)
	now := r.now().UTC()
	added := 0
	for _, l := range seeds {
		if indexOf(next, l.ID) >= 0 {
			continue
		}
		l = l.Clone()
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = l.CreatedAt
		}
		next = append(next, l)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := r.store.SaveLists(ctx, next); err != nil {
		return 0, err
	}
	return added, nil
}

// NewItem returns an item with a fresh id.
func NewItem(key, decoration string) model.ContentItem {
	return model.ContentItem{ID: uuid.NewString(), Key: key, Decoration: decoration}
}

func indexOf(all []model.ContentList, id string) int {
	for i, l := range all {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks ids and that every key is already in the form the input
// filter of the list's mode produces, so each box can be completed.
func Validate(list model.ContentList) error {
	if strings.TrimSpace(list.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidList)
	}
	if !list.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidList, list.Mode)
	}
	seen := make(map[string]struct{}, len(list.Items))
	for _, item := range list.Items {
		if item.ID == "" {
			return fmt.Errorf("%w: item without id", ErrInvalidList)
		}
		if strings.TrimSpace(item.Key) == "" {
			return fmt.Errorf("%w: item %q has an empty key", ErrInvalidList, item.ID)
		}
		if game.Normalize(list.Mode, item.Key) != item.Key {
			return fmt.Errorf("%w: key %q cannot be typed in %s mode", ErrInvalidList, item.Key, list.Mode.Label())
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidList, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
