package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// Notifier receives domain events after the aggregate that produced
// them has been saved. The WebSocket hub implements this to push live
// updates; a nil notifier is valid and drops events.
type Notifier interface {
	Notify(events []domain.Event)
}

// GameService is the command surface over the game aggregate. The
// aggregate itself performs no locking, so every mutating command runs
// under a per-game mutex: one writer per game id, reads unserialized.
type GameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
	notifier Notifier

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewGameService(gameRepo repository.GameRepository, userRepo repository.UserRepository, notifier Notifier) *GameService {
	return &GameService{
		gameRepo: gameRepo,
		userRepo: userRepo,
		notifier: notifier,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

type CreateGameInput struct {
	Name      string
	CreatedBy uuid.UUID
}

func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (*domain.Game, error) {
	creator, err := s.userRepo.GetByID(ctx, input.CreatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	game, err := domain.NewGame(input.Name, generateShortCode(), *creator)
	if err != nil {
		return nil, err
	}

	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// GetGame resolves a game by UUID or by its shareable short code.
func (s *GameService) GetGame(ctx context.Context, idOrCode string) (*domain.Game, error) {
	if id, err := uuid.Parse(idOrCode); err == nil {
		return s.mapNotFound(s.gameRepo.GetByID(ctx, id))
	}
	return s.mapNotFound(s.gameRepo.GetByShortCode(ctx, strings.ToUpper(idOrCode)))
}

func (s *GameService) GetUserGames(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Game, error) {
	return s.gameRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *GameService) JoinGame(ctx context.Context, gameID, userID uuid.UUID) (*domain.Game, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.mutate(ctx, gameID, func(game *domain.Game) error {
		return game.AddPlayer(*user)
	})
}

type CreateQuestionInput struct {
	GameID          uuid.UUID
	Text            string
	MultipleAnswers bool
	Variants        map[string]string
	CreatedBy       uuid.UUID
}

// CreateQuestion validates and appends a question to the game. Questions
// can only be added while the game is still in the created state.
func (s *GameService) CreateQuestion(ctx context.Context, input CreateQuestionInput) (*domain.Question, error) {
	question, err := domain.NewQuestion(input.Text, input.MultipleAnswers, input.Variants, input.CreatedBy)
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, input.GameID, func(game *domain.Game) error {
		var verrs domain.ValidationErrors
		if game.Status != domain.GameStatusCreated {
			verrs.Add("", "cannot add questions after the game has started")
		}
		if !game.HasPlayer(input.CreatedBy) {
			verrs.Add("userId", "user is not a player in this game")
		}
		if err := verrs.ErrOrNil(); err != nil {
			return err
		}
		game.AddQuestion(question)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *GameService) StartGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	return s.mutate(ctx, gameID, func(game *domain.Game) error {
		return game.Start()
	})
}

type RecordChoiceInput struct {
	GameID             uuid.UUID
	UserID             uuid.UUID
	SelectedVariantIDs []uuid.UUID
}

func (s *GameService) RecordChoice(ctx context.Context, input RecordChoiceInput) (*domain.Game, error) {
	return s.mutate(ctx, input.GameID, func(game *domain.Game) error {
		return game.RecordChoice(input.UserID, input.SelectedVariantIDs)
	})
}

type RecordGuessInput struct {
	GameID             uuid.UUID
	GuessingUserID     uuid.UUID
	ChoiceUserID       uuid.UUID
	SelectedVariantIDs []uuid.UUID
}

func (s *GameService) RecordGuess(ctx context.Context, input RecordGuessInput) (*domain.Game, error) {
	return s.mutate(ctx, input.GameID, func(game *domain.Game) error {
		return game.RecordGuess(input.GuessingUserID, input.ChoiceUserID, input.SelectedVariantIDs)
	})
}

// GetResults scores a question. Fails with a validation error until the
// question is fully answered.
func (s *GameService) GetResults(ctx context.Context, gameID, questionID uuid.UUID) ([]domain.UserResult, error) {
	game, err := s.mapNotFound(s.gameRepo.GetByID(ctx, gameID))
	if err != nil {
		return nil, err
	}
	if game.QuestionByID(questionID) == nil {
		return nil, ErrQuestionNotFound
	}
	return game.Results(questionID)
}

// mutate loads the aggregate, applies op, saves, and dispatches the
// recorded events — all under the game's writer lock so concurrent
// commands on one game cannot interleave (the core is not safe against
// that on its own).
func (s *GameService) mutate(ctx context.Context, gameID uuid.UUID, op func(*domain.Game) error) (*domain.Game, error) {
	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.mapNotFound(s.gameRepo.GetByID(ctx, gameID))
	if err != nil {
		return nil, err
	}

	if err := op(game); err != nil {
		return nil, err
	}

	events := game.DrainEvents()
	if err := s.gameRepo.Save(ctx, game); err != nil {
		return nil, err
	}
	if s.notifier != nil && len(events) > 0 {
		s.notifier.Notify(events)
	}
	return game, nil
}

func (s *GameService) lockFor(gameID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[gameID] = lock
	}
	return lock
}

func (s *GameService) mapNotFound(game *domain.Game, err error) (*domain.Game, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func generateShortCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return strings.ToUpper(hex.EncodeToString(bytes))
}
