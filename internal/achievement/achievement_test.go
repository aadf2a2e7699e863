package achievement

import (
	"context"
	"sync"
	"testing"

	"github.com/verte-zerg/fillbox/internal/kv"
	"github.com/verte-zerg/fillbox/internal/kv/kvtest"
	"github.com/verte-zerg/fillbox/internal/store"
)

func TestAwardIsIdempotent(t *testing.T) {
	tr := NewTracker(store.New(kv.NewMemory()))
	ctx := context.Background()

	newly, err := tr.Award(ctx, RoundComplete)
	if err != nil || !newly {
		t.Fatalf("expected first award to be new, got %v %v", newly, err)
	}
	newly, err = tr.Award(ctx, RoundComplete)
	if err != nil || newly {
		t.Fatalf("expected second award to be a no-op, got %v %v", newly, err)
	}
	list, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != RoundComplete || list[0].EarnedAt.IsZero() {
		t.Fatalf("unexpected badges: %+v", list)
	}
}

func TestAwardConcurrentEarnsOnce(t *testing.T) {
	tr := NewTracker(store.New(kv.NewMemory()))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	newCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newly, err := tr.Award(ctx, RoundComplete)
			if err != nil {
				t.Errorf("award: %v", err)
				return
			}
			if newly {
				mu.Lock()
				newCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if newCount != 1 {
		t.Fatalf("expected exactly one new award, got %d", newCount)
	}
	list, _ := tr.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one badge, got %d", len(list))
	}
}

func TestAwardWriteFailure(t *testing.T) {
	backend := kvtest.NewFlaky()
	tr := NewTracker(store.New(backend))
	ctx := context.Background()

	backend.FailWrites(true)
	if _, err := tr.Award(ctx, RoundComplete); !store.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	backend.FailWrites(false)
	has, err := tr.Has(ctx, RoundComplete)
	if err != nil || has {
		t.Fatalf("failed award must not be recorded, got %v %v", has, err)
	}
}
