package club

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"club-ladder/internal/ladder"
	"club-ladder/internal/model"
	"club-ladder/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownPlayer      = errors.New("player is not on the roster")
	ErrNoEligibleOpponent = errors.New("no eligible opponent left")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
)

type Options struct {
	// Seed drives opponent suggestions. Zero seeds from the clock.
	Seed int64
	Now  func() time.Time
}

type Service struct {
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Submission is a reported match before validation.
type Submission struct {
	PlayerAID string
	PlayerBID string
	Set1      model.SetScore
	Set2      model.SetScore
	Deciding  *model.SetScore
}

type Profile struct {
	Player  model.Player          `json:"player"`
	Entry   ladder.Entry          `json:"standing"`
	History []ladder.HistoryEntry `json:"history"`
}

func New(s store.Store, logger zerolog.Logger, opts Options) *Service {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:  s,
		logger: logger.With().Str("component", "club").Logger(),
		now:    now,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Service) RegisterPlayer(ctx context.Context, name string) (model.Player, error) {
	player, err := s.store.CreatePlayer(ctx, model.Player{Name: name, CreatedAt: s.now()})
	if err != nil {
		return model.Player{}, err
	}
	s.logger.Info().Str("player_id", player.ID).Str("name", player.Name).Msg("player registered")
	return player, nil
}

func (s *Service) Players(ctx context.Context) ([]model.Player, error) {
	return s.store.ListPlayers(ctx)
}

// SubmitMatch validates the reported scores, resolves the winner and stores
// the record. Nothing is stored when any check fails.
func (s *Service) SubmitMatch(ctx context.Context, sub Submission) (model.Match, error) {
	res, err := ladder.ResolveMatch(sub.PlayerAID, sub.PlayerBID, sub.Set1, sub.Set2, sub.Deciding)
	if err != nil {
		s.logger.Warn().Err(err).Msg("match rejected")
		return model.Match{}, err
	}
	for _, id := range []string{res.PlayerAID, res.PlayerBID} {
		if _, err := s.store.GetPlayer(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return model.Match{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
			}
			return model.Match{}, err
		}
	}

	match := res.Match()
	match.CreatedAt = s.now()
	created, err := s.store.CreateMatch(ctx, match)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Match{}, ErrUnknownPlayer
		}
		return model.Match{}, err
	}
	s.logger.Info().
		Str("match_id", created.ID).
		Str("winner_id", created.WinnerID).
		Str("score", ladder.FormatSets(created.Sets())).
		Msg("match recorded")
	return created, nil
}

func (s *Service) Matches(ctx context.Context) ([]model.Match, error) {
	return s.store.ListMatches(ctx)
}

func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	s.logger.Info().Str("match_id", id).Msg("match deleted")
	return nil
}

// DeletePlayer removes the player together with every match it took part in.
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	s.logger.Info().Str("player_id", id).Msg("player deleted")
	return nil
}

func (s *Service) Ladder(ctx context.Context) ([]ladder.Entry, error) {
	players, matches, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ladder.ComputeLadder(players, matches), nil
}

func (s *Service) PlayerProfile(ctx context.Context, id string) (Profile, error) {
	players, matches, err := s.snapshot(ctx)
	if err != nil {
		return Profile{}, err
	}
	entries := ladder.ComputeLadder(players, matches)
	entry, ok := ladder.Find(entries, id)
	if !ok {
		return Profile{}, ErrPlayerNotFound
	}
	return Profile{
		Player:  entry.Player,
		Entry:   entry,
		History: ladder.PlayerHistory(id, players, matches),
	}, nil
}

func (s *Service) Opponents(ctx context.Context, id string) ([]string, error) {
	if _, err := s.store.GetPlayer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	matches, err := s.store.ListPlayerMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	return ladder.OpponentIDs(id, matches), nil
}

// SuggestOpponent picks a random ladder entry the player has not faced yet.
func (s *Service) SuggestOpponent(ctx context.Context, id string) (ladder.Entry, error) {
	players, matches, err := s.snapshot(ctx)
	if err != nil {
		return ladder.Entry{}, err
	}
	entries := ladder.ComputeLadder(players, matches)
	if _, ok := ladder.Find(entries, id); !ok {
		return ladder.Entry{}, ErrPlayerNotFound
	}
	candidates := ladder.EligibleOpponents(id, entries, matches)

	s.rngMu.Lock()
	pick, ok := ladder.PickOpponent(s.rng, candidates)
	s.rngMu.Unlock()
	if !ok {
		return ladder.Entry{}, ErrNoEligibleOpponent
	}
	s.logger.Debug().Str("player_id", id).Str("opponent_id", pick.Player.ID).Int("candidates", len(candidates)).Msg("opponent suggested")
	return pick, nil
}

// snapshot loads the roster and the full match log concurrently.
func (s *Service) snapshot(ctx context.Context) ([]model.Player, []model.Match, error) {
	var (
		players []model.Player
		matches []model.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.store.ListPlayers(gctx)
		if err != nil {
			return fmt.Errorf("load players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.ListMatches(gctx)
		if err != nil {
			return fmt.Errorf("load matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return players, matches, nil
}
