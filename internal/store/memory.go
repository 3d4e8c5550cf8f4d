package store

import (
	"context"
	"sync"

	"club-ladder/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]model.Player
	matches map[string]model.Match
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]model.Player),
		matches: make(map[string]model.Match),
	}
}

func (s *MemoryStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sortPlayers(players)
	return players, nil
}

func (s *MemoryStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	player, err := preparePlayer(player)
	if err != nil {
		return model.Player{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.players {
		if p.Name == player.Name {
			return model.Player{}, ErrDuplicateName
		}
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *MemoryStore) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return ErrNotFound
	}
	delete(s.players, id)
	for matchID, m := range s.matches {
		if m.Involves(id) {
			delete(s.matches, matchID)
		}
	}
	return nil
}

func (s *MemoryStore) ListMatches(ctx context.Context) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]model.Match, 0, len(s.matches))
	for _, m := range s.matches {
		matches = append(matches, copyMatch(m))
	}
	sortMatches(matches)
	return matches, nil
}

func (s *MemoryStore) ListPlayerMatches(ctx context.Context, playerID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []model.Match{}
	for _, m := range s.matches {
		if m.Involves(playerID) {
			matches = append(matches, copyMatch(m))
		}
	}
	sortMatches(matches)
	return matches, nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, ErrNotFound
	}
	return copyMatch(m), nil
}

func (s *MemoryStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	match, err := prepareMatch(match)
	if err != nil {
		return model.Match{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[match.PlayerAID]; !ok {
		return model.Match{}, ErrNotFound
	}
	if _, ok := s.players[match.PlayerBID]; !ok {
		return model.Match{}, ErrNotFound
	}
	match = copyMatch(match)
	s.matches[match.ID] = match
	return copyMatch(match), nil
}

func (s *MemoryStore) DeleteMatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return ErrNotFound
	}
	delete(s.matches, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// copyMatch detaches the deciding set so callers cannot mutate stored records.
func copyMatch(m model.Match) model.Match {
	if m.Deciding != nil {
		d := *m.Deciding
		m.Deciding = &d
	}
	return m
}
