package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"club-ladder/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

type PostgresStore struct {
	db *sql.DB
}

type PostgresOptions struct {
	Logger       zerolog.Logger
	MaxOpenConns int
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	postgresMatchColumns = `id, player_a_id, player_b_id, set1_a, set1_b, set2_a, set2_b, set3_a, set3_b, winner_id, created_at`
)

// NewPostgresStore connects, applies the embedded migrations and returns a
// ready store.
func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applyMigrations(db, "postgres", "migrations/postgres", opts.Logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM players ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	// Collation order differs between servers; keep the byte order the other stores use.
	sortPlayers(players)
	return players, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	var p model.Player
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM players WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, ErrNotFound
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	player, err := preparePlayer(player)
	if err != nil {
		return model.Player{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO players (id, name, created_at) VALUES ($1,$2,$3)`,
		player.ID, player.Name, player.CreatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return model.Player{}, ErrDuplicateName
		}
		return model.Player{}, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}

func (s *PostgresStore) DeletePlayer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete player: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE player_a_id = $1 OR player_b_id = $1`, id); err != nil {
		return fmt.Errorf("delete player matches: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete player: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMatches(ctx context.Context) ([]model.Match, error) {
	return s.queryMatches(ctx, `SELECT `+postgresMatchColumns+` FROM matches ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) ListPlayerMatches(ctx context.Context, playerID string) ([]model.Match, error) {
	return s.queryMatches(ctx, `SELECT `+postgresMatchColumns+` FROM matches WHERE player_a_id = $1 OR player_b_id = $1 ORDER BY created_at DESC, id DESC`, playerID)
}

func (s *PostgresStore) queryMatches(ctx context.Context, query string, args ...any) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sortMatches(matches)
	return matches, nil
}

func (s *PostgresStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postgresMatchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatchRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	match, err := prepareMatch(match)
	if err != nil {
		return model.Match{}, err
	}
	set3A, set3B := decidingValues(match.Deciding)
	_, err = s.db.ExecContext(ctx, `INSERT INTO matches (`+postgresMatchColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		match.ID, match.PlayerAID, match.PlayerBID,
		match.Set1.A, match.Set1.B, match.Set2.A, match.Set2.B, set3A, set3B,
		match.WinnerID, match.CreatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *PostgresStore) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanMatchRow(scanner interface{ Scan(dest ...any) error }) (model.Match, error) {
	var (
		m            model.Match
		set3A, set3B sql.NullInt64
	)
	err := scanner.Scan(&m.ID, &m.PlayerAID, &m.PlayerBID,
		&m.Set1.A, &m.Set1.B, &m.Set2.A, &m.Set2.B, &set3A, &set3B,
		&m.WinnerID, &m.CreatedAt,
	)
	if err != nil {
		return model.Match{}, err
	}
	m.Deciding = decidingFromNull(set3A, set3B)
	return m, nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
