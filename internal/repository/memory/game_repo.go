package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"gorm.io/gorm"
)

// GameRepository is an in-memory implementation of
// repository.GameRepository for tests and local development. Stored
// aggregates are deep-copied on the way in and out so callers never
// share mutable state with the store. Not-found is reported with
// gorm.ErrRecordNotFound so services behave identically against the
// postgres implementation.
type GameRepository struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*domain.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[uuid.UUID]*domain.Game)}
}

func (r *GameRepository) Create(ctx context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = cloneGame(game)
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneGame(game), nil
}

func (r *GameRepository) GetByShortCode(ctx context.Context, code string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, game := range r.games {
		if game.ShortCode == code {
			return cloneGame(game), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *GameRepository) Save(ctx context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.games[game.ID] = cloneGame(game)
	return nil
}

func (r *GameRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var games []*domain.Game
	for _, game := range r.games {
		if game.HasPlayer(userID) {
			games = append(games, cloneGame(game))
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})

	if offset >= len(games) {
		return []*domain.Game{}, nil
	}
	games = games[offset:]
	if limit > 0 && limit < len(games) {
		games = games[:limit]
	}
	return games, nil
}

func cloneGame(game *domain.Game) *domain.Game {
	out := *game
	out.Players = append([]domain.GamePlayer(nil), game.Players...)
	for i := range out.Players {
		if out.Players[i].User != nil {
			user := *out.Players[i].User
			out.Players[i].User = &user
		}
	}
	out.Questions = make([]domain.Question, len(game.Questions))
	for i := range game.Questions {
		out.Questions[i] = cloneQuestion(&game.Questions[i])
	}
	return &out
}

func cloneQuestion(q *domain.Question) domain.Question {
	out := *q
	out.Variants = append([]domain.QuestionVariant(nil), q.Variants...)
	out.Choices = make([]domain.QuestionUserChoice, len(q.Choices))
	for i, c := range q.Choices {
		c.SelectedVariantIDs = append([]uuid.UUID(nil), c.SelectedVariantIDs...)
		out.Choices[i] = c
	}
	out.Guesses = make([]domain.QuestionUserGuess, len(q.Guesses))
	for i, g := range q.Guesses {
		g.SelectedVariantIDs = append([]uuid.UUID(nil), g.SelectedVariantIDs...)
		out.Guesses[i] = g
	}
	return out
}
