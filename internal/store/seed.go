package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"club-ladder/internal/ladder"
	"club-ladder/internal/model"
)

var demoRoster = []string{
	"Ada Kowalska", "Ben Carter", "Chloe Martin", "Dev Patel",
	"Elena Rossi", "Felix Novak", "Grace Kim", "Hugo Lindqvist",
}

// SeedDemo fills an empty store with a small roster and a few months of
// matches. Every match goes through the resolver so the log is always valid.
// Stores that already hold players are left untouched.
func SeedDemo(ctx context.Context, s Store, seed int64) error {
	existing, err := s.ListPlayers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	start := time.Now().UTC().AddDate(0, -3, 0)

	players := make([]model.Player, 0, len(demoRoster))
	for i, name := range demoRoster {
		p, err := s.CreatePlayer(ctx, model.Player{Name: name, CreatedAt: start.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			return fmt.Errorf("seed player %s: %w", name, err)
		}
		players = append(players, p)
	}

	for i := 0; i < 3*len(players); i++ {
		a, b := pickTwoPlayers(players, rng)
		set1, set2, deciding := randomMatchSets(rng)
		res, err := ladder.ResolveMatch(a.ID, b.ID, set1, set2, deciding)
		if err != nil {
			return fmt.Errorf("seed match: %w", err)
		}
		match := res.Match()
		match.CreatedAt = start.Add(time.Duration(i+1) * 36 * time.Hour)
		if _, err := s.CreateMatch(ctx, match); err != nil {
			return fmt.Errorf("seed match: %w", err)
		}
	}
	return nil
}

func pickTwoPlayers(players []model.Player, rng *rand.Rand) (model.Player, model.Player) {
	i := rng.Intn(len(players))
	j := rng.Intn(len(players) - 1)
	if j >= i {
		j++
	}
	return players[i], players[j]
}

func randomMatchSets(rng *rand.Rand) (model.SetScore, model.SetScore, *model.SetScore) {
	set1 := randomSet(rng)
	set2 := randomSet(rng)
	if !ladder.NeedsDecidingSet(set1, set2) {
		return set1, set2, nil
	}
	deciding := randomTiebreak(rng)
	return set1, set2, &deciding
}

func randomSet(rng *rand.Rand) model.SetScore {
	var high, low int
	switch rng.Intn(6) {
	case 0:
		high, low = 7, 5
	case 1:
		high, low = 7, 6
	default:
		high, low = ladder.MinSetGames, rng.Intn(ladder.MaxLoserGamesAtSix+1)
	}
	if rng.Intn(2) == 0 {
		return model.SetScore{A: high, B: low}
	}
	return model.SetScore{A: low, B: high}
}

func randomTiebreak(rng *rand.Rand) model.SetScore {
	high, low := ladder.MinTiebreakPoints, rng.Intn(ladder.MaxLoserPointsAtTen+1)
	if rng.Intn(4) == 0 {
		low = ladder.MaxLoserPointsAtTen + 1 + rng.Intn(3)
		high = low + 2
	}
	if rng.Intn(2) == 0 {
		return model.SetScore{A: high, B: low}
	}
	return model.SetScore{A: low, B: high}
}
