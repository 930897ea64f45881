// ABOUTME: Tests for summary and leaderboard aggregation
// ABOUTME: Covers totals, favorites, ordering, tie-breaks, and time windows

package store

import (
	"context"
	"testing"
	"time"
)

func TestSummary_Empty(t *testing.T) {
	s := newTestStore(t)
	accountID := registerTestAccount(t, s)

	summary, err := s.Summary(context.Background(), accountID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("total: got %d, want 0", summary.Total)
	}
	if summary.AvgPerWeek != 0 {
		t.Errorf("avg/week: got %f, want 0", summary.AvgPerWeek)
	}
	if summary.FavoriteDrink != "" {
		t.Errorf("favorite: got %q, want empty", summary.FavoriteDrink)
	}
	if summary.LastEventTime != nil {
		t.Errorf("last event time: got %v, want nil", summary.LastEventTime)
	}
}

func TestSummary_TotalsAndFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	accountID := registerTestAccount(t, s)

	// Two beers and one wine within one week.
	for _, name := range []string{"beer", "beer", "wine"} {
		if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: name, Quantity: 1}); err != nil {
			t.Fatalf("LogDrink(%q) failed: %v", name, err)
		}
	}

	summary, err := s.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 3 {
		t.Errorf("total: got %d, want 3", summary.Total)
	}
	if summary.FavoriteDrink != "beer" {
		t.Errorf("favorite: got %q, want %q", summary.FavoriteDrink, "beer")
	}
	// All events fall inside the one-week floor.
	if summary.AvgPerWeek != 3 {
		t.Errorf("avg/week: got %f, want 3", summary.AvgPerWeek)
	}
	if summary.LastEventTime == nil {
		t.Error("expected last event time")
	}
}

func TestSummary_FavoriteTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	accountID := registerTestAccount(t, s)

	// wine and beer tie at one each; wine was inserted first.
	for _, name := range []string{"wine", "beer"} {
		if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: name, Quantity: 1}); err != nil {
			t.Fatalf("LogDrink(%q) failed: %v", name, err)
		}
	}

	summary, err := s.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.FavoriteDrink != "wine" {
		t.Errorf("favorite tie-break: got %q, want %q", summary.FavoriteDrink, "wine")
	}
}

func TestSummary_AvgPerWeek(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	accountID := registerTestAccount(t, s)

	for i := 0; i < 4; i++ {
		if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 1}); err != nil {
			t.Fatalf("LogDrink failed: %v", err)
		}
	}

	// Backdate the first event by two weeks so two whole weeks elapsed.
	first := formatTime(time.Now().UTC().Add(-14 * 24 * time.Hour))
	if _, err := s.db.Exec(`UPDATE drink_events SET created_at = ? WHERE id = (SELECT MIN(id) FROM drink_events)`, first); err != nil {
		t.Fatalf("backdating event: %v", err)
	}

	summary, err := s.Summary(ctx, accountID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.AvgPerWeek != 2 {
		t.Errorf("avg/week: got %f, want 2", summary.AvgPerWeek)
	}
}

func TestLeaderboard_OrderingAndTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	counts := map[string]int{"alice": 5, "bob": 5, "carol": 3}
	externalID := int64(2000)
	for name, n := range counts {
		externalID++
		accountID, err := s.EnsureRegistered(ctx, externalID, name, nil)
		if err != nil {
			t.Fatalf("EnsureRegistered(%q) failed: %v", name, err)
		}
		for i := 0; i < n; i++ {
			if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 1}); err != nil {
				t.Fatalf("LogDrink failed: %v", err)
			}
		}
	}

	// An account with zero events in the window must not appear.
	if _, err := s.EnsureRegistered(ctx, 3000, "dave", nil); err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}

	since := StartOfWeek(time.Now()).Add(-14 * 24 * time.Hour)
	entries, err := s.Leaderboard(ctx, nil, since)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	want := []LeaderboardEntry{
		{DisplayName: "alice", Count: 5},
		{DisplayName: "bob", Count: 5},
		{DisplayName: "carol", Count: 3},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestLeaderboard_WindowExcludesOldEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accountID, err := s.EnsureRegistered(ctx, 1001, "alice", nil)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 1}); err != nil {
		t.Fatalf("LogDrink failed: %v", err)
	}

	// Push the event out of the window.
	old := formatTime(time.Now().UTC().Add(-30 * 24 * time.Hour))
	if _, err := s.db.Exec(`UPDATE drink_events SET created_at = ?`, old); err != nil {
		t.Fatalf("backdating events: %v", err)
	}

	entries, err := s.Leaderboard(ctx, nil, time.Now().UTC().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %v", entries)
	}
}

func TestLeaderboard_GroupFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pub := &GroupRef{ID: 1, Name: "pub"}
	club := &GroupRef{ID: 2, Name: "club"}

	aliceID, err := s.EnsureRegistered(ctx, 1001, "alice", pub)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	bobID, err := s.EnsureRegistered(ctx, 1002, "bob", club)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}

	if _, err := s.LogDrink(ctx, LogParams{AccountID: aliceID, Group: pub, DrinkName: "beer", Quantity: 1}); err != nil {
		t.Fatalf("LogDrink failed: %v", err)
	}
	if _, err := s.LogDrink(ctx, LogParams{AccountID: bobID, Group: club, DrinkName: "wine", Quantity: 1}); err != nil {
		t.Fatalf("LogDrink failed: %v", err)
	}

	since := time.Now().UTC().Add(-time.Hour)
	groupID := pub.ID
	entries, err := s.Leaderboard(ctx, &groupID, since)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 1 || entries[0].DisplayName != "alice" {
		t.Errorf("group filter: got %v, want only alice", entries)
	}
}

func TestLeaderboard_CountsEventsNotQuantity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accountID, err := s.EnsureRegistered(ctx, 1001, "alice", nil)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}

	// One event with quantity 3 counts once.
	if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 3}); err != nil {
		t.Fatalf("LogDrink failed: %v", err)
	}

	entries, err := s.Leaderboard(ctx, nil, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Count != 1 {
		t.Errorf("expected count 1 for a single quantity-3 event, got %v", entries)
	}
}

func TestLeaderboard_TruncatesToTen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 12; i++ {
		accountID, err := s.EnsureRegistered(ctx, 5000+i, "drinker-"+string(rune('a'+i)), nil)
		if err != nil {
			t.Fatalf("EnsureRegistered failed: %v", err)
		}
		if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 1}); err != nil {
			t.Fatalf("LogDrink failed: %v", err)
		}
	}

	entries, err := s.Leaderboard(ctx, nil, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 entries, got %d", len(entries))
	}
}

func TestWeeklyLeaderboard_View(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accountID, err := s.EnsureRegistered(ctx, 1001, "alice", nil)
	if err != nil {
		t.Fatalf("EnsureRegistered failed: %v", err)
	}
	if _, err := s.LogDrink(ctx, LogParams{AccountID: accountID, DrinkName: "beer", Quantity: 1}); err != nil {
		t.Fatalf("LogDrink failed: %v", err)
	}

	entries, err := s.WeeklyLeaderboard(ctx)
	if err != nil {
		t.Fatalf("WeeklyLeaderboard failed: %v", err)
	}
	if len(entries) != 1 || entries[0].DisplayName != "alice" || entries[0].Count != 1 {
		t.Errorf("weekly leaderboard: got %v, want alice with 1", entries)
	}
}
