package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
)

// defaultRewardDuration is the validity window used when a reward has no end date.
const defaultRewardDuration = 7 * 24 * time.Hour

// RewardRepositoryInterface defines the interface for reward data access.
type RewardRepositoryInterface interface {
	Insert(ctx context.Context, reward *model.Reward) error
	List(ctx context.Context) ([]model.Reward, error)
	GetByID(ctx context.Context, id int64) (*model.Reward, error)
}

// RewardService provides business logic for reward operations.
type RewardService struct {
	rewardRepo RewardRepositoryInterface
	now        func() time.Time
}

// NewRewardService creates a new RewardService with the given repository.
func NewRewardService(rewardRepo RewardRepositoryInterface) *RewardService {
	return &RewardService{rewardRepo: rewardRepo, now: time.Now}
}

// Create creates a new reward from the request.
// A missing start date defaults to now and a missing end date to seven days
// after the start date.
// Returns ErrInvalidDateRange if the end date precedes the start date.
// Returns ErrInvalidRequest if request data is nil, incomplete or negative.
func (s *RewardService) Create(ctx context.Context, req *model.CreateRewardRequest) (*model.Reward, error) {
	if req == nil || req.PerDayLimit == nil || req.TotalLimit == nil {
		return nil, ErrInvalidRequest
	}
	if *req.PerDayLimit < 0 || *req.TotalLimit < 0 {
		return nil, ErrInvalidRequest
	}

	start := s.now()
	if req.StartDate != nil && !req.StartDate.IsZero() {
		start = *req.StartDate
	}
	end := start.Add(defaultRewardDuration)
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end = *req.EndDate
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	reward := &model.Reward{
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		PerDayLimit: *req.PerDayLimit,
		TotalLimit:  *req.TotalLimit,
	}
	if err := s.rewardRepo.Insert(ctx, reward); err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	return reward, nil
}

// GetAll returns every reward. The result is never nil.
func (s *RewardService) GetAll(ctx context.Context) ([]model.Reward, error) {
	rewards, err := s.rewardRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	return rewards, nil
}

// GetByID retrieves a reward by id.
// Returns ErrRewardNotFound if the reward doesn't exist.
func (s *RewardService) GetByID(ctx context.Context, id int64) (*model.Reward, error) {
	reward, err := s.rewardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}
