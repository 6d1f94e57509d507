package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
)

// PlayerRepositoryInterface defines the interface for player data access.
type PlayerRepositoryInterface interface {
	Insert(ctx context.Context, player *model.Player) error
	List(ctx context.Context) ([]model.Player, error)
	GetByID(ctx context.Context, id int64) (*model.Player, error)
}

// PlayerService provides business logic for player operations.
type PlayerService struct {
	playerRepo PlayerRepositoryInterface
	ledgerRepo LedgerRepositoryInterface
}

// NewPlayerService creates a new PlayerService with the given repositories.
func NewPlayerService(playerRepo PlayerRepositoryInterface, ledgerRepo LedgerRepositoryInterface) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		ledgerRepo: ledgerRepo,
	}
}

// Create creates a new player from the request.
// Returns ErrInvalidRequest if request data is nil.
func (s *PlayerService) Create(ctx context.Context, req *model.CreatePlayerRequest) (*model.Player, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	player := &model.Player{Name: req.Name}
	if err := s.playerRepo.Insert(ctx, player); err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return player, nil
}

// GetAll returns every player. The result is never nil.
func (s *PlayerService) GetAll(ctx context.Context) ([]model.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if players == nil {
		players = []model.Player{}
	}
	return players, nil
}

// GetByID retrieves a player by id.
// Returns ErrPlayerNotFound if the player doesn't exist.
func (s *PlayerService) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// Redemptions returns the player's redemption history, newest first.
// Returns ErrPlayerNotFound if the player doesn't exist.
func (s *PlayerService) Redemptions(ctx context.Context, id int64) ([]model.Redemption, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	redemptions, err := s.ledgerRepo.ListByPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	if redemptions == nil {
		redemptions = []model.Redemption{}
	}
	return redemptions, nil
}
