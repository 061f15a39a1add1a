package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"gorm.io/gorm"
)

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *gameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	var game domain.Game
	err := r.withAggregate(ctx).First(&game, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) GetByShortCode(ctx context.Context, code string) (*domain.Game, error) {
	var game domain.Game
	err := r.withAggregate(ctx).First(&game, "short_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Save persists the aggregate including every owned association. Choices
// and guesses are append-only, so upserting the full graph is safe.
func (r *gameRepository) Save(ctx context.Context, game *domain.Game) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(game).Error
}

func (r *gameRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Game, error) {
	var games []*domain.Game
	err := r.db.WithContext(ctx).
		Joins("JOIN game_players ON game_players.game_id = games.id").
		Where("game_players.user_id = ?", userID).
		Order("games.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// withAggregate preloads the full game graph in deterministic order:
// players by join order, questions by position.
func (r *gameRepository) withAggregate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("game_players.join_order ASC")
		}).
		Preload("Players.User").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_variants.label ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_user_choices.created_at ASC")
		}).
		Preload("Questions.Guesses", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_user_guesses.created_at ASC")
		})
}
