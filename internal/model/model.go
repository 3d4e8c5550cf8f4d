package model

import (
	"strings"
	"time"
)

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the trimmed name used for uniqueness and ordering.
func (p Player) DisplayName() string {
	return strings.TrimSpace(p.Name)
}

// SetScore holds games (regular sets) or points (deciding tiebreak) for
// player A and player B.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// WonByA reports whether player A took the set. Scores are never equal once
// validated.
func (s SetScore) WonByA() bool {
	return s.A > s.B
}

// Flip returns the score from player B's side.
func (s SetScore) Flip() SetScore {
	return SetScore{A: s.B, B: s.A}
}

// Match is an immutable record. Deciding is nil unless the first two sets were
// split; when present it carries both tiebreak scores.
type Match struct {
	ID        string    `json:"id"`
	PlayerAID string    `json:"player_a_id"`
	PlayerBID string    `json:"player_b_id"`
	Set1      SetScore  `json:"set1"`
	Set2      SetScore  `json:"set2"`
	Deciding  *SetScore `json:"set3,omitempty"`
	WinnerID  string    `json:"winner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Sets returns the played sets in order.
func (m Match) Sets() []SetScore {
	sets := []SetScore{m.Set1, m.Set2}
	if m.Deciding != nil {
		sets = append(sets, *m.Deciding)
	}
	return sets
}

// LoserID returns the participant that is not the winner, or "" when the
// winner is neither participant.
func (m Match) LoserID() string {
	switch m.WinnerID {
	case m.PlayerAID:
		return m.PlayerBID
	case m.PlayerBID:
		return m.PlayerAID
	}
	return ""
}

// Involves reports whether playerID took part in the match.
func (m Match) Involves(playerID string) bool {
	return m.PlayerAID == playerID || m.PlayerBID == playerID
}

// Opponent returns the other participant for playerID.
func (m Match) Opponent(playerID string) string {
	if m.PlayerAID == playerID {
		return m.PlayerBID
	}
	return m.PlayerAID
}
