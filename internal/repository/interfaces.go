package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// GameRepository loads and saves whole game aggregates. GetByID and
// GetByShortCode return the game with players, questions, variants,
// choices and guesses attached, in roster/position order.
type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	GetByShortCode(ctx context.Context, code string) (*domain.Game, error)
	Save(ctx context.Context, game *domain.Game) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Game, error)
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Game    GameRepository
}
