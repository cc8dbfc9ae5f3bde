package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huntworks/geohunt/internal/database"
	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/geo"
	"github.com/huntworks/geohunt/internal/migrations"
)

func setupStore(t *testing.T) *game.SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return game.NewSQLiteStore(db)
}

func storedSession(id, playerID string) *game.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &game.Session{
		GameID:   id,
		PlayerID: playerID,
		Status:   game.StatusActive,
		Scenario: game.Scenario{Title: "The Vanished Violin", Culprit: "Ms. Ito"},
		EvidenceList: []game.Evidence{
			{ID: "ev-1", Name: "Broken String", Importance: game.ImportanceCritical,
				Location: geo.Coordinate{Lat: 35.46, Lng: 139.62}, POIName: "Concert Hall", POIType: geo.POILandmark},
		},
		DiscoveredEvidence: []string{},
		PlayerLocation:     geo.Coordinate{Lat: 35.46, Lng: 139.62},
		Rules:              game.DefaultRules(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	sess := storedSession("g1", "p1")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PlayerID != "p1" || got.Scenario.Title != "The Vanished Violin" {
		t.Errorf("round trip lost data: %+v", got)
	}
	if len(got.EvidenceList) != 1 || got.EvidenceList[0].POIName != "Concert Hall" {
		t.Errorf("evidence not preserved: %+v", got.EvidenceList)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := setupStore(t)
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	sess := storedSession("g1", "p1")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	sess.Status = game.StatusCompleted
	sess.DiscoveredEvidence = []string{"ev-1"}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != game.StatusCompleted || !got.Discovered("ev-1") {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestStoreActiveCount(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	for _, id := range []string{"g1", "g2"} {
		if err := store.Put(ctx, storedSession(id, "p1")); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	done := storedSession("g3", "p1")
	done.Status = game.StatusCompleted
	if err := store.Put(ctx, done); err != nil {
		t.Fatalf("put g3: %v", err)
	}
	if err := store.Put(ctx, storedSession("g4", "p2")); err != nil {
		t.Fatalf("put g4: %v", err)
	}

	n, err := store.ActiveCountByPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 active games for p1, got %d", n)
	}
}

func TestStoreRecordCompletion(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	rec := game.CompletionRecord{
		GameID:       "g1",
		PlayerID:     "p1",
		Title:        "The Vanished Violin",
		Difficulty:   game.DifficultyNormal,
		Score:        180,
		DurationSecs: 540,
		FoundRate:    0.8,
		CompletedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.RecordCompletion(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Idempotent on conflict.
	if err := store.RecordCompletion(ctx, rec); err != nil {
		t.Fatalf("record again: %v", err)
	}
}
