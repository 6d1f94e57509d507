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

const rewardColumns = `id, name, start_date, end_date, per_day_limit, total_limit`

// RewardRepository provides data access for rewards using pgx.
type RewardRepository struct {
	pool database.TxQuerier
}

// NewRewardRepository creates a new RewardRepository with the given pool.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// NewRewardRepositoryWithPool creates a new RewardRepository with a custom pool interface.
// This is primarily used for testing.
func NewRewardRepositoryWithPool(pool database.TxQuerier) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// Insert inserts a new reward and fills in its generated ID.
func (r *RewardRepository) Insert(ctx context.Context, reward *model.Reward) error {
	query := `INSERT INTO rewards (name, start_date, end_date, per_day_limit, total_limit)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		reward.Name, reward.StartDate, reward.EndDate, reward.PerDayLimit, reward.TotalLimit,
	).Scan(&reward.ID)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

// List returns all rewards ordered by id.
func (r *RewardRepository) List(ctx context.Context) ([]model.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		var rw model.Reward
		if err := rows.Scan(&rw.ID, &rw.Name, &rw.StartDate, &rw.EndDate, &rw.PerDayLimit, &rw.TotalLimit); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward rows: %w", err)
	}
	return rewards, nil
}

// GetByID retrieves a reward by id.
// Returns nil, nil if the reward is not found (service layer handles this).
func (r *RewardRepository) GetByID(ctx context.Context, id int64) (*model.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = $1`

	var rw model.Reward
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rw.ID,
		&rw.Name,
		&rw.StartDate,
		&rw.EndDate,
		&rw.PerDayLimit,
		&rw.TotalLimit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reward by id %d: %w", id, err)
	}
	return &rw, nil
}
