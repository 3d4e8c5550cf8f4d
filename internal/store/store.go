package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"club-ladder/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("player name already exists")
	ErrInvalidPlayer = errors.New("player name is required")
)

// timePrecision is the coarsest timestamp resolution among the backends
// (Postgres TIMESTAMPTZ).
const timePrecision = time.Microsecond

type Store interface {
	ListPlayers(ctx context.Context) ([]model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	CreatePlayer(ctx context.Context, player model.Player) (model.Player, error)
	DeletePlayer(ctx context.Context, id string) error

	ListMatches(ctx context.Context) ([]model.Match, error)
	ListPlayerMatches(ctx context.Context, playerID string) ([]model.Match, error)
	GetMatch(ctx context.Context, id string) (model.Match, error)
	CreateMatch(ctx context.Context, match model.Match) (model.Match, error)
	DeleteMatch(ctx context.Context, id string) error

	Close() error
}

func preparePlayer(player model.Player) (model.Player, error) {
	player.Name = player.DisplayName()
	if player.Name == "" {
		return model.Player{}, ErrInvalidPlayer
	}
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now().UTC()
	}
	player.CreatedAt = player.CreatedAt.Truncate(timePrecision)
	return player, nil
}

func prepareMatch(match model.Match) (model.Match, error) {
	if match.PlayerAID == "" || match.PlayerBID == "" || match.PlayerAID == match.PlayerBID {
		return model.Match{}, errors.New("match needs two distinct players")
	}
	if match.WinnerID != match.PlayerAID && match.WinnerID != match.PlayerBID {
		return model.Match{}, errors.New("match winner must be a participant")
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}
	match.CreatedAt = match.CreatedAt.Truncate(timePrecision)
	return match, nil
}

func sortPlayers(players []model.Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
}

func sortMatches(matches []model.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
