package ladder

import (
	"testing"
	"time"

	"club-ladder/internal/model"
)

func TestPlayerHistoryOrientsScores(t *testing.T) {
	players := roster("alice", "bob", "carol")
	older := model.Match{
		ID: "m1", PlayerAID: "alice", PlayerBID: "bob",
		Set1: set(6, 3), Set2: set(3, 6), Deciding: setPtr(10, 7),
		WinnerID: "alice", CreatedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	newer := model.Match{
		ID: "m2", PlayerAID: "carol", PlayerBID: "alice",
		Set1: set(6, 4), Set2: set(7, 5),
		WinnerID: "carol", CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	unrelated := model.Match{ID: "m3", PlayerAID: "bob", PlayerBID: "carol", WinnerID: "bob"}

	history := PlayerHistory("alice", players, []model.Match{older, unrelated, newer})
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].MatchID != "m2" || history[0].Won || history[0].Opponent.Name != "carol" {
		t.Fatalf("unexpected newest entry: %+v", history[0])
	}
	if history[0].Score != "4-6, 5-7" {
		t.Fatalf("expected flipped score, got %s", history[0].Score)
	}
	if !history[1].Won || history[1].Score != "6-3, 3-6, 10-7" {
		t.Fatalf("unexpected oldest entry: %+v", history[1])
	}
	if older.Set1 != set(6, 3) {
		t.Fatalf("history must not mutate the match log")
	}
}

func TestPlayerHistoryUnknownOpponent(t *testing.T) {
	history := PlayerHistory("alice", roster("alice"), []model.Match{win("alice", "ghost")})
	if len(history) != 1 || history[0].Opponent.ID != "ghost" || history[0].Opponent.Name != "" {
		t.Fatalf("unexpected history: %+v", history)
	}
}
