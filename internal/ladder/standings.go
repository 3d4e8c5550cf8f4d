package ladder

import (
	"fmt"
	"sort"
	"strconv"

	"club-ladder/internal/model"
)

type Entry struct {
	Player        model.Player `json:"player"`
	Rank          int          `json:"rank"`
	Wins          int          `json:"wins"`
	Losses        int          `json:"losses"`
	Record        string       `json:"record"`
	TotalMatches  int          `json:"total_matches"`
	WinPercentage float64      `json:"win_percentage"`
}

type Group struct {
	Key     string  `json:"key"`
	Entries []Entry `json:"entries"`
}

// ComputeLadder builds the standings from a roster and its full match log.
// Every rostered player gets an entry. Matches naming an unknown participant
// or a winner outside the pairing are skipped.
//
// Order: win percentage desc, matches played desc, name asc, id asc. Players
// level on percentage and matches share a rank.
func ComputeLadder(players []model.Player, matches []model.Match) []Entry {
	index := make(map[string]*Entry, len(players))
	order := make([]string, 0, len(players))
	for _, p := range players {
		if _, dup := index[p.ID]; dup {
			continue
		}
		index[p.ID] = &Entry{Player: p}
		order = append(order, p.ID)
	}

	for _, match := range matches {
		entryA := index[match.PlayerAID]
		entryB := index[match.PlayerBID]
		if entryA == nil || entryB == nil || match.PlayerAID == match.PlayerBID {
			continue
		}
		loserID := match.LoserID()
		if loserID == "" {
			continue
		}
		index[match.WinnerID].Wins++
		index[loserID].Losses++
	}

	standings := make([]Entry, 0, len(order))
	for _, id := range order {
		entry := *index[id]
		entry.TotalMatches = entry.Wins + entry.Losses
		if entry.TotalMatches > 0 {
			entry.WinPercentage = float64(entry.Wins) / float64(entry.TotalMatches)
		}
		entry.Record = fmt.Sprintf("%d-%d", entry.Wins, entry.Losses)
		standings = append(standings, entry)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		if a.TotalMatches != b.TotalMatches {
			return a.TotalMatches > b.TotalMatches
		}
		if a.Player.DisplayName() != b.Player.DisplayName() {
			return a.Player.DisplayName() < b.Player.DisplayName()
		}
		return a.Player.ID < b.Player.ID
	})

	for i := range standings {
		if i > 0 && sameStanding(standings[i-1], standings[i]) {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}
	return standings
}

func sameStanding(a, b Entry) bool {
	return a.WinPercentage == b.WinPercentage && a.TotalMatches == b.TotalMatches
}

// Find returns the entry for playerID.
func Find(entries []Entry, playerID string) (Entry, bool) {
	for _, e := range entries {
		if e.Player.ID == playerID {
			return e, true
		}
	}
	return Entry{}, false
}

// GroupByRecord groups entries sharing a "W-L" record, in ladder order.
func GroupByRecord(entries []Entry) []Group {
	groups := []Group{}
	position := map[string]int{}
	for _, e := range entries {
		i, ok := position[e.Record]
		if !ok {
			i = len(groups)
			position[e.Record] = i
			groups = append(groups, Group{Key: e.Record})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// GroupByWins groups entries by raw win count, most wins first. Entries keep
// their ladder order inside a group.
func GroupByWins(entries []Entry) []Group {
	byWins := map[int][]Entry{}
	wins := []int{}
	for _, e := range entries {
		if _, ok := byWins[e.Wins]; !ok {
			wins = append(wins, e.Wins)
		}
		byWins[e.Wins] = append(byWins[e.Wins], e)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(wins)))

	groups := make([]Group, 0, len(wins))
	for _, w := range wins {
		groups = append(groups, Group{Key: strconv.Itoa(w), Entries: byWins[w]})
	}
	return groups
}
