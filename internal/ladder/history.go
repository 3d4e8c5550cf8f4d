package ladder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"club-ladder/internal/model"
)

// HistoryEntry is one match seen from a single player's side.
type HistoryEntry struct {
	MatchID  string           `json:"match_id"`
	Opponent model.Player     `json:"opponent"`
	Sets     []model.SetScore `json:"sets"`
	Score    string           `json:"score"`
	Won      bool             `json:"won"`
	PlayedAt time.Time        `json:"played_at"`
}

// PlayerHistory lists playerID's matches newest first with set scores
// oriented so that A is always the player. Opponents missing from the roster
// are reported by id only.
func PlayerHistory(playerID string, players []model.Player, matches []model.Match) []HistoryEntry {
	roster := make(map[string]model.Player, len(players))
	for _, p := range players {
		roster[p.ID] = p
	}

	history := []HistoryEntry{}
	for _, m := range matches {
		if !m.Involves(playerID) {
			continue
		}
		opponentID := m.Opponent(playerID)
		opponent, ok := roster[opponentID]
		if !ok {
			opponent = model.Player{ID: opponentID}
		}
		sets := m.Sets()
		if m.PlayerBID == playerID {
			for i := range sets {
				sets[i] = sets[i].Flip()
			}
		}
		history = append(history, HistoryEntry{
			MatchID:  m.ID,
			Opponent: opponent,
			Sets:     sets,
			Score:    FormatSets(sets),
			Won:      m.WinnerID == playerID,
			PlayedAt: m.CreatedAt,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].PlayedAt.Equal(history[j].PlayedAt) {
			return history[i].PlayedAt.After(history[j].PlayedAt)
		}
		return history[i].MatchID < history[j].MatchID
	})
	return history
}

// FormatSets renders scores as "6-2, 4-6, 10-8".
func FormatSets(sets []model.SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, s := range sets {
		parts = append(parts, fmt.Sprintf("%d-%d", s.A, s.B))
	}
	return strings.Join(parts, ", ")
}
