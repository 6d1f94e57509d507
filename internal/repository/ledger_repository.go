package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
	"github.com/fairyhunter13/reward-redemption-system/pkg/database"
)

// LedgerRepository provides data access for coupons and player coupons using pgx.
type LedgerRepository struct {
	pool database.TxQuerier
}

// NewLedgerRepository creates a new LedgerRepository with the given pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// NewLedgerRepositoryWithPool creates a new LedgerRepository with a custom pool interface.
// This is primarily used for testing.
func NewLedgerRepositoryWithPool(pool database.TxQuerier) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// LockPair takes a transaction-scoped advisory lock on (playerID, rewardID).
// The lock is held until the transaction commits or rolls back.
// Must be called within a transaction.
func (r *LedgerRepository) LockPair(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) error {
	query := `SELECT pg_advisory_xact_lock($1, $2)`

	if _, err := tx.Exec(ctx, query, lockKey(playerID), lockKey(rewardID)); err != nil {
		return fmt.Errorf("advisory lock (%d, %d): %w", playerID, rewardID, err)
	}
	return nil
}

// lockKey folds an id into the int4 key space of pg_advisory_xact_lock.
// Ids that collide only share a lock.
func lockKey(id int64) int32 {
	return int32(id ^ (id >> 32))
}

// CountRedemptions counts the player's redemptions of coupons minted for the reward.
// A non-nil window restricts the count to redeemed_at within [Start, End].
func (r *LedgerRepository) CountRedemptions(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64, window *model.TimeRange) (int, error) {
	query := `SELECT COUNT(*) FROM player_coupons pc
		JOIN coupons c ON c.id = pc.coupon_id
		WHERE pc.player_id = $1 AND c.reward_id = $2`
	args := []any{playerID, rewardID}

	if window != nil {
		query += ` AND pc.redeemed_at BETWEEN $3 AND $4`
		args = append(args, window.Start, window.End)
	}

	var count int
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count redemptions for player %d reward %d: %w", playerID, rewardID, err)
	}
	return count, nil
}

// FindRedemption returns any redemption of the reward by the player.
// Returns nil, nil if the player has not redeemed the reward.
func (r *LedgerRepository) FindRedemption(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) (*model.PlayerCoupon, error) {
	query := `SELECT pc.id, pc.player_id, pc.coupon_id, pc.redeemed_at FROM player_coupons pc
		JOIN coupons c ON c.id = pc.coupon_id
		WHERE pc.player_id = $1 AND c.reward_id = $2
		LIMIT 1`

	var pc model.PlayerCoupon
	err := tx.QueryRow(ctx, query, playerID, rewardID).Scan(&pc.ID, &pc.PlayerID, &pc.CouponID, &pc.RedeemedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find redemption for player %d reward %d: %w", playerID, rewardID, err)
	}
	return &pc, nil
}

// CreateCoupon inserts a coupon for the reward and returns it with its generated ID.
// Must be called within a transaction.
func (r *LedgerRepository) CreateCoupon(ctx context.Context, tx database.TxQuerier, value string, rewardID int64) (*model.Coupon, error) {
	query := `INSERT INTO coupons (value, reward_id) VALUES ($1, $2) RETURNING id`

	coupon := &model.Coupon{Value: value, RewardID: rewardID}
	if err := tx.QueryRow(ctx, query, value, rewardID).Scan(&coupon.ID); err != nil {
		return nil, fmt.Errorf("insert coupon: %w", err)
	}
	return coupon, nil
}

// CreatePlayerCoupon records the player's redemption of the coupon.
// Must be called within a transaction.
func (r *LedgerRepository) CreatePlayerCoupon(ctx context.Context, tx database.TxQuerier, playerID, couponID int64, redeemedAt time.Time) (*model.PlayerCoupon, error) {
	query := `INSERT INTO player_coupons (player_id, coupon_id, redeemed_at) VALUES ($1, $2, $3) RETURNING id`

	pc := &model.PlayerCoupon{PlayerID: playerID, CouponID: couponID, RedeemedAt: redeemedAt}
	if err := tx.QueryRow(ctx, query, playerID, couponID, redeemedAt).Scan(&pc.ID); err != nil {
		return nil, fmt.Errorf("insert player coupon: %w", err)
	}
	return pc, nil
}

// ListByPlayer returns the player's redemptions joined with coupon and reward, newest first.
// On success, returns an empty slice (not nil) when the player has none.
func (r *LedgerRepository) ListByPlayer(ctx context.Context, playerID int64) ([]model.Redemption, error) {
	query := `SELECT pc.id, pc.player_id, pc.redeemed_at,
			c.id, c.value, c.reward_id,
			rw.id, rw.name, rw.start_date, rw.end_date, rw.per_day_limit, rw.total_limit
		FROM player_coupons pc
		JOIN coupons c ON c.id = pc.coupon_id
		JOIN rewards rw ON rw.id = c.reward_id
		WHERE pc.player_id = $1
		ORDER BY pc.redeemed_at DESC, pc.id DESC`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions for player %d: %w", playerID, err)
	}
	defer rows.Close()

	redemptions := []model.Redemption{}
	for rows.Next() {
		var rd model.Redemption
		if err := rows.Scan(
			&rd.ID, &rd.PlayerID, &rd.RedeemedAt,
			&rd.Coupon.ID, &rd.Coupon.Value, &rd.Coupon.RewardID,
			&rd.Reward.ID, &rd.Reward.Name, &rd.Reward.StartDate, &rd.Reward.EndDate,
			&rd.Reward.PerDayLimit, &rd.Reward.TotalLimit,
		); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemption rows: %w", err)
	}
	return redemptions, nil
}
