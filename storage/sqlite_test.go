package storage

import (
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *ScoreStore {
	t.Helper()
	store, err := OpenScoreStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveScoreInsertsAndCounts(t *testing.T) {
	store := newTestStore(t)

	total, err := store.SaveScore(ScoreEntry{UserID: "u1", Username: "Alice", Score: 100, Streak: 3, Multiplier: 4})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 record, got %d", total)
	}

	count, err := store.Count()
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}
}

func TestSaveScoreUpsertSemantics(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveScore(ScoreEntry{UserID: "u1", Username: "Alice", Score: 100, Streak: 5, Multiplier: 16}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	// The incoming score is a lifetime total and replaces the stored
	// one even when lower; streak/multiplier keep their maxima.
	if _, err := store.SaveScore(ScoreEntry{UserID: "u1", Username: "Alice2", Score: 80, Streak: 2, Multiplier: 2}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	rows, err := store.Weekly(10)
	if err != nil {
		t.Fatalf("weekly query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert must not duplicate, got %d rows", len(rows))
	}
	e := rows[0]
	if e.Score != 80 {
		t.Fatalf("score must be replaced, got %d", e.Score)
	}
	if e.Streak != 5 || e.Multiplier != 16 {
		t.Fatalf("streak/multiplier must keep maxima, got %d/%d", e.Streak, e.Multiplier)
	}
	if e.Username != "Alice2" {
		t.Fatalf("username must be updated, got %q", e.Username)
	}
}

func TestDailyFiltersByDate(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	entries := []ScoreEntry{
		{UserID: "today1", Score: 10, Timestamp: now.Add(-2 * time.Hour)},
		{UserID: "today2", Score: 30, Timestamp: now.Add(-1 * time.Hour)},
		{UserID: "yesterday", Score: 99, Timestamp: now.Add(-24 * time.Hour)},
	}
	for _, e := range entries {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("seeding %q: %v", e.UserID, err)
		}
	}

	rows, err := store.Daily(now, 50)
	if err != nil {
		t.Fatalf("daily query failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for today, got %d", len(rows))
	}
	if rows[0].UserID != "today2" || rows[1].UserID != "today1" {
		t.Fatalf("daily rows must sort by score descending, got %q, %q", rows[0].UserID, rows[1].UserID)
	}
}

func TestWeeklyIsAllTimeSortedDescending(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	seed := []ScoreEntry{
		{UserID: "old", Score: 500, Timestamp: now.AddDate(0, -2, 0)},
		{UserID: "mid", Score: 300, Timestamp: now.AddDate(0, 0, -3)},
		{UserID: "new", Score: 100, Timestamp: now},
	}
	for _, e := range seed {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("seeding %q: %v", e.UserID, err)
		}
	}

	rows, err := store.Weekly(50)
	if err != nil {
		t.Fatalf("weekly query failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("weekly board is all-time, expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"old", "mid", "new"} {
		if rows[i].UserID != want {
			t.Fatalf("row %d: got %q, want %q", i, rows[i].UserID, want)
		}
	}
}

func TestWeeklyHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 10; i++ {
		if _, err := store.SaveScore(ScoreEntry{UserID: fmt.Sprintf("u%d", i), Score: i}); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	rows, err := store.Weekly(3)
	if err != nil {
		t.Fatalf("weekly query failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestUserPositionRanks(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	for i, e := range []ScoreEntry{
		{UserID: "first", Score: 30},
		{UserID: "second", Score: 20},
		{UserID: "third", Score: 10},
	} {
		e.Timestamp = now.Add(time.Duration(i) * time.Minute)
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	for i, user := range []string{"first", "second", "third"} {
		pos, err := store.UserPosition(user, now)
		if err != nil {
			t.Fatalf("position for %q: %v", user, err)
		}
		if pos.Daily != i+1 || pos.Weekly != i+1 {
			t.Fatalf("%q: expected rank %d/%d, got %d/%d", user, i+1, i+1, pos.Daily, pos.Weekly)
		}
	}
}

func TestUserPositionAbsentUser(t *testing.T) {
	store := newTestStore(t)
	pos, err := store.UserPosition("nobody", time.Now())
	if err != nil {
		t.Fatalf("position query failed: %v", err)
	}
	if pos.Daily != 0 || pos.Weekly != 0 {
		t.Fatalf("absent user must rank {0,0}, got %+v", pos)
	}
}

func TestUserPositionStaleEntryHasNoDailyRank(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	if _, err := store.SaveScore(ScoreEntry{UserID: "old", Score: 50, Timestamp: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	pos, err := store.UserPosition("old", now)
	if err != nil {
		t.Fatalf("position query failed: %v", err)
	}
	if pos.Daily != 0 {
		t.Fatalf("stale entry must not rank daily, got %d", pos.Daily)
	}
	if pos.Weekly != 1 {
		t.Fatalf("stale entry still ranks weekly, got %d", pos.Weekly)
	}
}

func TestStoreTrimsOnceAboveCap(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	for i := 0; i <= maxRecords; i++ {
		_, err := store.SaveScore(ScoreEntry{
			UserID:    fmt.Sprintf("u%d", i),
			Score:     i,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != keepRecords {
		t.Fatalf("expected trim to %d records, got %d", keepRecords, count)
	}

	// The newest entries survive the trim.
	pos, err := store.UserPosition(fmt.Sprintf("u%d", maxRecords), base)
	if err != nil {
		t.Fatalf("position query failed: %v", err)
	}
	if pos.Weekly != 1 {
		t.Fatalf("newest/highest entry should remain rank 1, got %d", pos.Weekly)
	}
	if old, err := store.UserPosition("u0", base); err != nil || old.Weekly != 0 {
		t.Fatalf("oldest entry should be trimmed, got %+v err %v", old, err)
	}
}
