package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Store wraps the Postgres catalog. The games table is written by the
// external sync job; this service reads it and manages the users table.
type Store struct {
	DB *sql.DB
}

func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

const gameColumns = `id, name, overview, min_players, max_players, min_playtime, max_playtime, weight, rating`

// QueryGames runs a filtered catalog query. Unset criteria fields add no
// predicate, so empty criteria would return the whole table; callers gate on
// Criteria.IsEmpty before reaching here.
func (s *Store) QueryGames(ctx context.Context, c Criteria) ([]Game, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.GameName != "" {
		where = append(where, fmt.Sprintf("name ILIKE %s", arg("%"+c.GameName+"%")))
	}
	if c.MinPlayers > 0 {
		where = append(where, fmt.Sprintf("max_players >= %s", arg(c.MinPlayers)))
	}
	if c.MaxPlayers > 0 {
		where = append(where, fmt.Sprintf("min_players <= %s", arg(c.MaxPlayers)))
	}
	if c.MinPlaytime > 0 {
		where = append(where, fmt.Sprintf("max_playtime >= %s", arg(c.MinPlaytime)))
	}
	if c.MaxPlaytime > 0 {
		where = append(where, fmt.Sprintf("min_playtime <= %s", arg(c.MaxPlaytime)))
	}
	if len(c.Mechanics) > 0 {
		where = append(where, fmt.Sprintf("mechanics && %s", arg(pq.Array(c.Mechanics))))
	}
	if len(c.Categories) > 0 {
		where = append(where, fmt.Sprintf("categories && %s", arg(pq.Array(c.Categories))))
	}
	if c.MaxWeight > 0 {
		where = append(where, fmt.Sprintf("weight <= %s", arg(c.MaxWeight)))
	}
	if c.MinRating > 0 {
		where = append(where, fmt.Sprintf("rating >= %s", arg(c.MinRating)))
	}
	if c.MinAge > 0 {
		where = append(where, fmt.Sprintf("min_age <= %s", arg(c.MinAge)))
	}

	q := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// TopRated returns the highest-rated games, used to seed the deterministic
// fallback answer when the catalog is reachable.
func (s *Store) TopRated(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY rating DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top rated: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]Game, error) {
	var out []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Overview, &g.MinPlayers, &g.MaxPlayers, &g.MinPlaytime, &g.MaxPlaytime, &g.Weight, &g.Rating); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, email, hash string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1,$2)`, email, hash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	return
}
