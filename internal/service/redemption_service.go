package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/reward-redemption-system/internal/metrics"
	"github.com/fairyhunter13/reward-redemption-system/internal/model"
	"github.com/fairyhunter13/reward-redemption-system/pkg/database"
)

// LedgerRepositoryInterface defines data access for coupons and player coupons.
// Methods taking a TxQuerier run inside the caller's transaction.
type LedgerRepositoryInterface interface {
	LockPair(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) error
	CountRedemptions(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64, window *model.TimeRange) (int, error)
	FindRedemption(ctx context.Context, tx database.TxQuerier, playerID, rewardID int64) (*model.PlayerCoupon, error)
	CreateCoupon(ctx context.Context, tx database.TxQuerier, value string, rewardID int64) (*model.Coupon, error)
	CreatePlayerCoupon(ctx context.Context, tx database.TxQuerier, playerID, couponID int64, redeemedAt time.Time) (*model.PlayerCoupon, error)
	ListByPlayer(ctx context.Context, playerID int64) ([]model.Redemption, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RedemptionService runs the coupon redemption workflow.
type RedemptionService struct {
	pool        TxBeginner
	playerRepo  PlayerRepositoryInterface
	rewardRepo  RewardRepositoryInterface
	ledgerRepo  LedgerRepositoryInterface
	metrics     *metrics.Redemption
	now         func() time.Time
	location    *time.Location
	couponValue func() string

	onePerPlayer bool
}

// Option configures a RedemptionService.
type Option func(*RedemptionService)

// WithClock overrides the time source used for validity and limit checks.
func WithClock(now func() time.Time) Option {
	return func(s *RedemptionService) { s.now = now }
}

// WithLocation sets the location whose calendar day bounds the daily limit.
func WithLocation(loc *time.Location) Option {
	return func(s *RedemptionService) { s.location = loc }
}

// WithCouponValue overrides the coupon value generator.
func WithCouponValue(gen func() string) Option {
	return func(s *RedemptionService) { s.couponValue = gen }
}

// WithOnePerPlayer rejects repeat redemptions of a reward by the same player.
func WithOnePerPlayer(enabled bool) Option {
	return func(s *RedemptionService) { s.onePerPlayer = enabled }
}

// WithMetrics records the outcome of each redemption.
func WithMetrics(m *metrics.Redemption) Option {
	return func(s *RedemptionService) { s.metrics = m }
}

// NewRedemptionService creates a RedemptionService backed by the given pool and repositories.
func NewRedemptionService(pool *pgxpool.Pool, playerRepo PlayerRepositoryInterface, rewardRepo RewardRepositoryInterface, ledgerRepo LedgerRepositoryInterface, opts ...Option) *RedemptionService {
	return NewRedemptionServiceWithTxBeginner(pool, playerRepo, rewardRepo, ledgerRepo, opts...)
}

// NewRedemptionServiceWithTxBeginner creates a RedemptionService with a custom TxBeginner.
// Primarily used for testing.
func NewRedemptionServiceWithTxBeginner(pool TxBeginner, playerRepo PlayerRepositoryInterface, rewardRepo RewardRepositoryInterface, ledgerRepo LedgerRepositoryInterface, opts ...Option) *RedemptionService {
	s := &RedemptionService{
		pool:        pool,
		playerRepo:  playerRepo,
		rewardRepo:  rewardRepo,
		ledgerRepo:  ledgerRepo,
		now:         time.Now,
		location:    time.Local,
		couponValue: randomCouponValue,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Redeem redeems a coupon of the reward for the player.
//
// Checks run in order and the first failure is returned:
//   - ErrPlayerNotFound, ErrRewardNotFound
//   - ErrRewardNotStarted, ErrRewardExpired
//   - ErrDailyLimitExceeded, ErrTotalLimitExceeded
//   - ErrAlreadyRedeemed (only with WithOnePerPlayer)
//
// The limit checks and the coupon inserts share one transaction holding an
// advisory lock on (playerID, rewardID), so concurrent redemptions of the same
// pair cannot both pass the checks. On any error nothing is written.
func (s *RedemptionService) Redeem(ctx context.Context, playerID, rewardID int64) (redemption *model.Redemption, err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(outcomeOf(err), time.Since(started)) }()

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	reward, err := s.rewardRepo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}

	// Millisecond resolution keeps every instant inside exactly one dayBounds window.
	now := s.now().Truncate(time.Millisecond)
	if err := checkRewardWindow(reward, now); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Serialize with other redemptions of the same pair
	if err := s.ledgerRepo.LockPair(ctx, tx, player.ID, reward.ID); err != nil {
		return nil, fmt.Errorf("lock redemption pair: %w", err)
	}

	// 2. Daily and total limits
	if err := s.checkLimits(ctx, tx, player.ID, reward, now); err != nil {
		return nil, err
	}

	// 3. One redemption per player, when enforced
	if s.onePerPlayer {
		existing, err := s.ledgerRepo.FindRedemption(ctx, tx, player.ID, reward.ID)
		if err != nil {
			return nil, fmt.Errorf("find redemption: %w", err)
		}
		if existing != nil {
			return nil, ErrAlreadyRedeemed
		}
	}

	// 4. Mint the coupon and record the redemption
	coupon, err := s.ledgerRepo.CreateCoupon(ctx, tx, s.couponValue(), reward.ID)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	playerCoupon, err := s.ledgerRepo.CreatePlayerCoupon(ctx, tx, player.ID, coupon.ID, now)
	if err != nil {
		return nil, fmt.Errorf("create player coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.Redemption{
		ID:         playerCoupon.ID,
		PlayerID:   playerCoupon.PlayerID,
		RedeemedAt: playerCoupon.RedeemedAt,
		Coupon:     *coupon,
		Reward:     *reward,
	}, nil
}

func (s *RedemptionService) checkLimits(ctx context.Context, tx database.TxQuerier, playerID int64, reward *model.Reward, now time.Time) error {
	today := dayBounds(now, s.location)
	daily, err := s.ledgerRepo.CountRedemptions(ctx, tx, playerID, reward.ID, &today)
	if err != nil {
		return fmt.Errorf("count daily redemptions: %w", err)
	}
	if daily >= reward.PerDayLimit {
		return ErrDailyLimitExceeded
	}

	total, err := s.ledgerRepo.CountRedemptions(ctx, tx, playerID, reward.ID, nil)
	if err != nil {
		return fmt.Errorf("count total redemptions: %w", err)
	}
	if total >= reward.TotalLimit {
		return ErrTotalLimitExceeded
	}
	return nil
}

// checkRewardWindow compares full timestamps; both bounds are inclusive.
func checkRewardWindow(reward *model.Reward, now time.Time) error {
	if now.Before(reward.StartDate) {
		return ErrRewardNotStarted
	}
	if now.After(reward.EndDate) {
		return ErrRewardExpired
	}
	return nil
}

// dayBounds returns 00:00:00.000 through 23:59:59.999 of now's calendar day in loc.
func dayBounds(now time.Time, loc *time.Location) model.TimeRange {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return model.TimeRange{Start: start, End: end}
}

// randomCouponValue returns a uniform integer in [1, 100] as a string.
func randomCouponValue() string {
	return strconv.Itoa(rand.Intn(100) + 1)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrPlayerNotFound):
		return metrics.OutcomePlayerNotFound
	case errors.Is(err, ErrRewardNotFound):
		return metrics.OutcomeRewardNotFound
	case errors.Is(err, ErrRewardNotStarted):
		return metrics.OutcomeNotStarted
	case errors.Is(err, ErrRewardExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, ErrDailyLimitExceeded):
		return metrics.OutcomeDailyLimit
	case errors.Is(err, ErrTotalLimitExceeded):
		return metrics.OutcomeTotalLimit
	case errors.Is(err, ErrAlreadyRedeemed):
		return metrics.OutcomeAlreadyRedeemed
	default:
		return metrics.OutcomeError
	}
}
