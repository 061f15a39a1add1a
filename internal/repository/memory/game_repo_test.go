package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func buildGame(t *testing.T, name, shortCode string) (*domain.Game, domain.User) {
	t.Helper()

	creator := domain.User{ID: uuid.New(), DisplayName: "creator"}
	game, err := domain.NewGame(name, shortCode, creator)
	require.NoError(t, err)
	return game, creator
}

func TestGameRepository_CreateAndGet(t *testing.T) {
	repo := memory.NewGameRepository()
	ctx := context.Background()

	game, _ := buildGame(t, "Test Game", "AAA111")
	require.NoError(t, repo.Create(ctx, game))

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game.ID, got.ID)
		assert.Equal(t, "Test Game", got.Name)
	})

	t.Run("by short code", func(t *testing.T) {
		got, err := repo.GetByShortCode(ctx, "AAA111")
		require.NoError(t, err)
		assert.Equal(t, game.ID, got.ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := repo.GetByShortCode(ctx, "ZZZ999")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestGameRepository_Save(t *testing.T) {
	repo := memory.NewGameRepository()
	ctx := context.Background()

	game, _ := buildGame(t, "Test Game", "AAA111")
	require.NoError(t, repo.Create(ctx, game))

	require.NoError(t, game.AddPlayer(domain.User{ID: uuid.New(), DisplayName: "other"}))
	require.NoError(t, repo.Save(ctx, game))

	got, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, got.Players, 2)

	t.Run("unknown game", func(t *testing.T) {
		unknown, _ := buildGame(t, "Nope", "BBB222")
		assert.ErrorIs(t, repo.Save(ctx, unknown), gorm.ErrRecordNotFound)
	})
}

func TestGameRepository_AggregateIsolation(t *testing.T) {
	repo := memory.NewGameRepository()
	ctx := context.Background()

	game, _ := buildGame(t, "Test Game", "AAA111")
	require.NoError(t, repo.Create(ctx, game))

	// Mutating a loaded copy must not leak into the store before Save.
	loaded, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.AddPlayer(domain.User{ID: uuid.New(), DisplayName: "other"}))

	fresh, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Players, 1)

	// Neither must mutating the caller's instance after Create.
	require.NoError(t, game.AddPlayer(domain.User{ID: uuid.New(), DisplayName: "third"}))
	fresh, err = repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Players, 1)
}

func TestGameRepository_GetByUserID(t *testing.T) {
	repo := memory.NewGameRepository()
	ctx := context.Background()

	creator := domain.User{ID: uuid.New(), DisplayName: "creator"}

	var ids []uuid.UUID
	for i, code := range []string{"AAA111", "BBB222", "CCC333"} {
		game, err := domain.NewGame("Game", code, creator)
		require.NoError(t, err)
		game.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, game))
		ids = append(ids, game.ID)
	}

	t.Run("newest first", func(t *testing.T) {
		games, err := repo.GetByUserID(ctx, creator.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, games, 3)
		assert.Equal(t, ids[2], games[0].ID)
		assert.Equal(t, ids[0], games[2].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		games, err := repo.GetByUserID(ctx, creator.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, ids[1], games[0].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		games, err := repo.GetByUserID(ctx, creator.ID, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("non-member", func(t *testing.T) {
		games, err := repo.GetByUserID(ctx, uuid.New(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, games)
	})
}
