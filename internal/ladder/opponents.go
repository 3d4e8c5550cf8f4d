package ladder

import (
	"math/rand"
	"sort"

	"club-ladder/internal/model"
)

// OpponentIDs returns the distinct players playerID has already faced,
// sorted by id.
func OpponentIDs(playerID string, matches []model.Match) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, m := range matches {
		if !m.Involves(playerID) {
			continue
		}
		id := m.Opponent(playerID)
		if id == playerID || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EligibleOpponents filters the ladder down to players playerID has not met
// yet, excluding playerID itself.
func EligibleOpponents(playerID string, entries []Entry, matches []model.Match) []Entry {
	exclude := map[string]bool{playerID: true}
	for _, id := range OpponentIDs(playerID, matches) {
		exclude[id] = true
	}
	eligible := []Entry{}
	for _, e := range entries {
		if exclude[e.Player.ID] {
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible
}

// PickOpponent draws one candidate uniformly at random.
func PickOpponent(rng *rand.Rand, candidates []Entry) (Entry, bool) {
	if len(candidates) == 0 {
		return Entry{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}
