// Package kvtest provides kv.Store helpers for tests.
package kvtest

import (
	"context"
	"errors"
	"sync"

	"github.com/verte-zerg/fillbox/internal/kv"
)

// ErrInjected is returned by a Flaky store while failures are enabled.
var ErrInjected = errors.New("kvtest: injected failure")

// Flaky wraps a store and fails writes (and optionally reads) on demand.
type Flaky struct {
	kv.Store

	mu         sync.Mutex
	failWrites bool
	failReads  bool
	failKeys   map[string]bool
	writes     int
}

// NewFlaky wraps an in-memory store.
func NewFlaky() *Flaky {
	return &Flaky{Store: kv.NewMemory()}
}

// FailWrites toggles failure of Set and Delete.
func (f *Flaky) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = on
}

// FailWritesTo toggles failure of Set and Delete for key only.
func (f *Flaky) FailWritesTo(key string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys == nil {
		f.failKeys = make(map[string]bool)
	}
	f.failKeys[key] = on
}

// FailReads toggles failure of Get.
func (f *Flaky) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = on
}

// Writes returns the number of successful Set and Delete calls.
func (f *Flaky) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *Flaky) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key string, value []byte) error {
	if err := f.checkWrite(key); err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, key string) error {
	if err := f.checkWrite(key); err != nil {
		return err
	}
	return f.Store.Delete(ctx, key)
}

func (f *Flaky) checkWrite(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites || f.failKeys[key] {
		return ErrInjected
	}
	f.writes++
	return nil
}
