package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/fillbox/internal/kv"
	"github.com/verte-zerg/fillbox/internal/kv/kvtest"
	"github.com/verte-zerg/fillbox/internal/model"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	st := New(kv.NewMemory())
	cfg, err := st.LoadConfig(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg != model.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFillsMissingFields(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()
	if err := backend.Set(ctx, KeyConfig, []byte(`{"mode":"NUMBERS","boxesPerRound":9}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg, err := New(backend).LoadConfig(ctx)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Mode != model.ModeNumber || cfg.BoxesPerRound != 9 {
		t.Fatalf("stored fields not applied: %+v", cfg)
	}
	if !cfg.SoundsEnabled || cfg.BuiltInTheme != "animals" {
		t.Fatalf("missing fields should keep defaults: %+v", cfg)
	}
}

func TestRoundRoundTrip(t *testing.T) {
	st := New(kv.NewMemory())
	ctx := context.Background()

	round, err := st.LoadRound(ctx)
	if err != nil || round != nil {
		t.Fatalf("expected no round, got %v %v", round, err)
	}

	want := model.RoundState{
		RoundID:  "r1",
		ListID:   "animals-easy",
		Mode:     model.ModeWord,
		BoxOrder: []string{"b2", "b1"},
		BoxStates: map[string]model.BoxState{
			"b1": {Target: "CAT", Entered: "CA"},
			"b2": {Target: "DOG", Entered: "DOG", Locked: true, Correct: true},
		},
		StartedAt: time.Unix(100, 0).UTC(),
	}
	if err := st.SaveRound(ctx, want); err != nil {
		t.Fatalf("save round: %v", err)
	}
	got, err := st.LoadRound(ctx)
	if err != nil {
		t.Fatalf("load round: %v", err)
	}
	if got == nil || got.RoundID != "r1" || got.BoxStates["b1"].Entered != "CA" || !got.BoxStates["b2"].Locked {
		t.Fatalf("unexpected round: %+v", got)
	}
	if !got.OrderIsPermutation() {
		t.Fatalf("box order lost in round trip: %v", got.BoxOrder)
	}

	if err := st.DeleteRound(ctx); err != nil {
		t.Fatalf("delete round: %v", err)
	}
	if got, _ := st.LoadRound(ctx); got != nil {
		t.Fatalf("expected round to be deleted")
	}
}

func TestSelectedListIDEmptyClears(t *testing.T) {
	st := New(kv.NewMemory())
	ctx := context.Background()
	if err := st.SaveSelectedListID(ctx, "colors"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if id, _ := st.LoadSelectedListID(ctx); id != "colors" {
		t.Fatalf("expected colors, got %q", id)
	}
	if err := st.SaveSelectedListID(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if id, _ := st.LoadSelectedListID(ctx); id != "" {
		t.Fatalf("expected cleared selection, got %q", id)
	}
}

func TestWriteFailureIsPersistenceError(t *testing.T) {
	backend := kvtest.NewFlaky()
	backend.FailWrites(true)
	err := New(backend).SaveConfig(context.Background(), model.DefaultConfig())
	if err == nil {
		t.Fatalf("expected error")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}
	if pe.Op != "write" || pe.Key != KeyConfig {
		t.Fatalf("unexpected error fields: %+v", pe)
	}
	if !errors.Is(err, kvtest.ErrInjected) {
		t.Fatalf("expected cause to unwrap")
	}
}

func TestCorruptValueIsPersistenceError(t *testing.T) {
	backend := kv.NewMemory()
	ctx := context.Background()
	_ = backend.Set(ctx, KeyRound, []byte("{not json"))
	_, err := New(backend).LoadRound(ctx)
	if !IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := New(kv.NewMemory())
	cfg := model.DefaultConfig()
	cfg.BoxesPerRound = 4
	_ = src.SaveConfig(ctx, cfg)
	_ = src.SaveLists(ctx, []model.ContentList{{ID: "l1", Title: "One", Mode: model.ModeWord, Items: []model.ContentItem{{ID: "i1", Key: "CAT"}}}})
	_ = src.SaveAchievements(ctx, model.AchievementSet{Badges: []model.Achievement{{ID: "round-complete", EarnedAt: time.Unix(5, 0).UTC()}}})

	snap, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if snap.ExportedAt.IsZero() {
		t.Fatalf("expected exportedAt")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded model.Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := New(kv.NewMemory())
	round := model.RoundState{RoundID: "keep", BoxOrder: []string{}, BoxStates: map[string]model.BoxState{}}
	_ = dst.SaveRound(ctx, round)
	if err := dst.Import(ctx, decoded); err != nil {
		t.Fatalf("import: %v", err)
	}
	gotCfg, _ := dst.LoadConfig(ctx)
	if gotCfg.BoxesPerRound != 4 {
		t.Fatalf("config not imported: %+v", gotCfg)
	}
	gotLists, _ := dst.LoadLists(ctx)
	if len(gotLists) != 1 || gotLists[0].Items[0].Key != "CAT" {
		t.Fatalf("lists not imported: %+v", gotLists)
	}
	gotAch, _ := dst.LoadAchievements(ctx)
	if !gotAch.Has("round-complete") {
		t.Fatalf("achievements not imported: %+v", gotAch)
	}
	if r, _ := dst.LoadRound(ctx); r == nil || r.RoundID != "keep" {
		t.Fatalf("import must not touch the round")
	}
}

func TestImportLeavesAbsentFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	st := New(kv.NewMemory())
	_ = st.SaveLists(ctx, []model.ContentList{{ID: "l1", Mode: model.ModeWord}})

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(`{"config":{"mode":"LETTERS","boxesPerRound":3}}`), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := st.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	lists, _ := st.LoadLists(ctx)
	if len(lists) != 1 {
		t.Fatalf("absent lists field should leave lists untouched, got %d", len(lists))
	}
	gotCfg, _ := st.LoadConfig(ctx)
	if gotCfg.Mode != model.ModeLetter {
		t.Fatalf("config should be overwritten: %+v", gotCfg)
	}
}

func TestImportEmptyListsOverwrites(t *testing.T) {
	ctx := context.Background()
	st := New(kv.NewMemory())
	_ = st.SaveLists(ctx, []model.ContentList{{ID: "l1", Mode: model.ModeWord}})

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(`{"lists":[]}`), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := st.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	lists, _ := st.LoadLists(ctx)
	if len(lists) != 0 {
		t.Fatalf("present empty lists field should overwrite, got %d", len(lists))
	}
}
