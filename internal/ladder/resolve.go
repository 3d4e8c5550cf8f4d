package ladder

import (
	"strconv"
	"strings"

	"club-ladder/internal/model"
)

const (
	// A regular set is won with at least 6 games; 6-5 is not a finished set.
	MinSetGames        = 6
	MaxLoserGamesAtSix = 4

	// The deciding set is a 10-point tiebreak won by two.
	MinTiebreakPoints   = 10
	MaxLoserPointsAtTen = 8

	DecidingSetIndex = 3
)

// Resolution is the outcome of a valid submission. Deciding is nil when the
// first two sets were won by the same player.
type Resolution struct {
	PlayerAID string
	PlayerBID string
	WinnerID  string
	Set1      model.SetScore
	Set2      model.SetScore
	Deciding  *model.SetScore
}

// Match builds the record to persist. ID and CreatedAt are left for the store.
func (r Resolution) Match() model.Match {
	m := model.Match{
		PlayerAID: r.PlayerAID,
		PlayerBID: r.PlayerBID,
		Set1:      r.Set1,
		Set2:      r.Set2,
		WinnerID:  r.WinnerID,
	}
	if r.Deciding != nil {
		d := *r.Deciding
		m.Deciding = &d
	}
	return m
}

// ResolveMatch validates a best-of-three result and determines the winner.
// deciding is only consulted when sets one and two were split; otherwise it is
// ignored and dropped from the resolution.
func ResolveMatch(playerAID, playerBID string, set1, set2 model.SetScore, deciding *model.SetScore) (Resolution, error) {
	playerAID = strings.TrimSpace(playerAID)
	playerBID = strings.TrimSpace(playerBID)
	if playerAID == "" || playerBID == "" {
		return Resolution{}, ErrMissingPlayer
	}
	if playerAID == playerBID {
		return Resolution{}, ErrDuplicatePlayers
	}
	if err := ValidateSet(1, set1); err != nil {
		return Resolution{}, err
	}
	if err := ValidateSet(2, set2); err != nil {
		return Resolution{}, err
	}

	res := Resolution{PlayerAID: playerAID, PlayerBID: playerBID, Set1: set1, Set2: set2}
	setsA, setsB := countSets(set1, set2)
	if setsA == 1 && setsB == 1 {
		if deciding == nil {
			return Resolution{}, ErrMissingDecidingSet
		}
		if err := ValidateDecidingSet(*deciding); err != nil {
			return Resolution{}, err
		}
		d := *deciding
		res.Deciding = &d
		if d.WonByA() {
			setsA++
		} else {
			setsB++
		}
	}

	switch {
	case setsA == 2 && setsB <= 1:
		res.WinnerID = playerAID
	case setsB == 2 && setsA <= 1:
		res.WinnerID = playerBID
	default:
		return Resolution{}, ErrAmbiguousSetSplit
	}
	return res, nil
}

// ValidateSet checks a games-based set. Winners above six games are accepted
// without a margin check.
func ValidateSet(index int, s model.SetScore) error {
	if s.A < 0 || s.B < 0 {
		return setError(index, "scores cannot be negative")
	}
	if s.A == s.B {
		return setError(index, "must have a winner")
	}
	hi, lo := highLow(s)
	if hi < MinSetGames {
		return setError(index, "winner must have at least 6 games")
	}
	if hi == MinSetGames && lo > MaxLoserGamesAtSix {
		return setError(index, "cannot be 6-5; must be 6-4 or 7-5")
	}
	return nil
}

// ValidateDecidingSet checks the 10-point tiebreak. As with regular sets only
// the exact-minimum boundary carries a margin rule.
func ValidateDecidingSet(s model.SetScore) error {
	if s.A < 0 || s.B < 0 {
		return setError(DecidingSetIndex, "scores cannot be negative")
	}
	if s.A == s.B {
		return setError(DecidingSetIndex, "must have a winner")
	}
	hi, lo := highLow(s)
	if hi < MinTiebreakPoints {
		return setError(DecidingSetIndex, "winner must reach 10 points")
	}
	if hi == MinTiebreakPoints && lo > MaxLoserPointsAtTen {
		return setError(DecidingSetIndex, "winner must win by at least 2 points")
	}
	return nil
}

// ParseSetScore turns raw form values into a score. Both values are required
// and must be non-negative whole numbers.
func ParseSetScore(index int, a, b string) (model.SetScore, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return model.SetScore{}, setError(index, "scores are required")
	}
	valA, errA := strconv.Atoi(a)
	valB, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return model.SetScore{}, setError(index, "scores must be whole numbers")
	}
	if valA < 0 || valB < 0 {
		return model.SetScore{}, setError(index, "scores cannot be negative")
	}
	return model.SetScore{A: valA, B: valB}, nil
}

// NeedsDecidingSet reports whether the first two sets were split.
func NeedsDecidingSet(set1, set2 model.SetScore) bool {
	setsA, setsB := countSets(set1, set2)
	return setsA == 1 && setsB == 1
}

func countSets(sets ...model.SetScore) (int, int) {
	setsA, setsB := 0, 0
	for _, s := range sets {
		switch {
		case s.A > s.B:
			setsA++
		case s.B > s.A:
			setsB++
		}
	}
	return setsA, setsB
}

func highLow(s model.SetScore) (int, int) {
	if s.A > s.B {
		return s.A, s.B
	}
	return s.B, s.A
}
