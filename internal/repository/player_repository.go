package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
	"github.com/fairyhunter13/reward-redemption-system/pkg/database"
)

// PlayerRepository provides data access for players using pgx.
type PlayerRepository struct {
	pool database.TxQuerier
}

// NewPlayerRepository creates a new PlayerRepository with the given pool.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// NewPlayerRepositoryWithPool creates a new PlayerRepository with a custom pool interface.
// This is primarily used for testing.
func NewPlayerRepositoryWithPool(pool database.TxQuerier) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// Insert inserts a new player and fills in its generated ID and creation time.
func (r *PlayerRepository) Insert(ctx context.Context, player *model.Player) error {
	query := `INSERT INTO players (name) VALUES ($1) RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query, player.Name).Scan(&player.ID, &player.CreatedAt); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// List returns all players ordered by id.
func (r *PlayerRepository) List(ctx context.Context) ([]model.Player, error) {
	query := `SELECT id, name, created_at FROM players ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
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
		return nil, fmt.Errorf("iterate player rows: %w", err)
	}
	return players, nil
}

// GetByID retrieves a player by id.
// Returns nil, nil if the player is not found (service layer handles this).
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	query := `SELECT id, name, created_at FROM players WHERE id = $1`

	var p model.Player
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get player by id %d: %w", id, err)
	}
	return &p, nil
}
