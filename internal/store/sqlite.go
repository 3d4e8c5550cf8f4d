package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"club-ladder/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

type SQLiteOptions struct {
	Logger zerolog.Logger
}

const sqliteMatchColumns = `id, player_a_id, player_b_id, set1_a, set1_b, set2_a, set2_b, set3_a, set3_b, winner_id, created_at`

// NewSQLiteStore opens the database, applies the embedded migrations and
// returns a ready store.
func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, pragma := range []string{"foreign_keys = ON", "busy_timeout = 5000"} {
		if _, err := db.Exec("PRAGMA " + pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set PRAGMA %s: %w", pragma, err)
		}
	}
	if err := applyMigrations(db, "sqlite3", "migrations/sqlite", opts.Logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM players`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		p, err := scanSQLitePlayerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	sortPlayers(players)
	return players, nil
}

func (s *SQLiteStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM players WHERE id = ?`, id)
	p, err := scanSQLitePlayerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, ErrNotFound
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	player, err := preparePlayer(player)
	if err != nil {
		return model.Player{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO players (id, name, created_at) VALUES (?,?,?)`,
		player.ID, player.Name, timeValueString(player.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Player{}, ErrDuplicateName
		}
		return model.Player{}, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}

func (s *SQLiteStore) DeletePlayer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete player: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Cascade explicitly so files created without foreign_keys stay consistent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE player_a_id = ? OR player_b_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete player matches: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
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

func (s *SQLiteStore) ListMatches(ctx context.Context) ([]model.Match, error) {
	return s.queryMatches(ctx, `SELECT `+sqliteMatchColumns+` FROM matches`)
}

func (s *SQLiteStore) ListPlayerMatches(ctx context.Context, playerID string) ([]model.Match, error) {
	return s.queryMatches(ctx, `SELECT `+sqliteMatchColumns+` FROM matches WHERE player_a_id = ? OR player_b_id = ?`, playerID, playerID)
}

func (s *SQLiteStore) queryMatches(ctx context.Context, query string, args ...any) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		m, err := scanSQLiteMatchRow(rows)
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

func (s *SQLiteStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteMatchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanSQLiteMatchRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	match, err := prepareMatch(match)
	if err != nil {
		return model.Match{}, err
	}
	set3A, set3B := decidingValues(match.Deciding)
	_, err = s.db.ExecContext(ctx, `INSERT INTO matches (`+sqliteMatchColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		match.ID, match.PlayerAID, match.PlayerBID,
		match.Set1.A, match.Set1.B, match.Set2.A, match.Set2.B, set3A, set3B,
		match.WinnerID, timeValueString(match.CreatedAt),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *SQLiteStore) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLitePlayerRow(scanner interface{ Scan(dest ...any) error }) (model.Player, error) {
	var (
		p         model.Player
		createdAt sql.NullString
	)
	if err := scanner.Scan(&p.ID, &p.Name, &createdAt); err != nil {
		return model.Player{}, err
	}
	if createdAt.Valid {
		if parsed, ok := parseTimeString(createdAt.String); ok {
			p.CreatedAt = parsed
		}
	}
	return p, nil
}

func scanSQLiteMatchRow(scanner interface{ Scan(dest ...any) error }) (model.Match, error) {
	var (
		m            model.Match
		set3A, set3B sql.NullInt64
		createdAt    sql.NullString
	)
	err := scanner.Scan(&m.ID, &m.PlayerAID, &m.PlayerBID,
		&m.Set1.A, &m.Set1.B, &m.Set2.A, &m.Set2.B, &set3A, &set3B,
		&m.WinnerID, &createdAt,
	)
	if err != nil {
		return model.Match{}, err
	}
	m.Deciding = decidingFromNull(set3A, set3B)
	if createdAt.Valid {
		if parsed, ok := parseTimeString(createdAt.String); ok {
			m.CreatedAt = parsed
		}
	}
	return m, nil
}

func decidingValues(s *model.SetScore) (any, any) {
	if s == nil {
		return nil, nil
	}
	return s.A, s.B
}

func decidingFromNull(a, b sql.NullInt64) *model.SetScore {
	if !a.Valid || !b.Valid {
		return nil
	}
	return &model.SetScore{A: int(a.Int64), B: int(b.Int64)}
}

func timeValueString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
