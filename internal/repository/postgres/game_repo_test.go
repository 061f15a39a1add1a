package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/repository/postgres"
	"github.com/smikis/how-well-you-know/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPlayers(t *testing.T, db *gorm.DB, names ...string) []domain.User {
	t.Helper()

	repo := postgres.NewUserRepository(db)
	users := make([]domain.User, len(names))
	for i, name := range names {
		user := newUser(name)
		require.NoError(t, repo.Create(context.Background(), user))
		users[i] = *user
	}
	return users
}

func addTestQuestion(t *testing.T, game *domain.Game, createdBy uuid.UUID) {
	t.Helper()

	q, err := domain.NewQuestion("Test question?", false, map[string]string{
		"A": "First", "B": "Second",
	}, createdBy)
	require.NoError(t, err)
	game.AddQuestion(q)
}

func TestGameRepository_AggregateRoundTrip(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB)
	ctx := context.Background()

	users := createPlayers(t, testDB.DB, "roundtrip_creator", "roundtrip_other")
	creator, other := users[0], users[1]

	game, err := domain.NewGame("Round Trip", "AAA111", creator)
	require.NoError(t, err)
	require.NoError(t, game.AddPlayer(other))
	addTestQuestion(t, game, creator.ID)
	addTestQuestion(t, game, other.ID)
	game.DrainEvents()

	require.NoError(t, repo.Create(ctx, game))

	loaded, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)

	assert.Equal(t, "Round Trip", loaded.Name)
	require.Len(t, loaded.Players, 2)
	assert.Equal(t, creator.ID, loaded.Players[0].UserID, "players ordered by join order")
	require.NotNil(t, loaded.Players[0].User)
	assert.Equal(t, "roundtrip_creator", loaded.Players[0].User.DisplayName)

	require.Len(t, loaded.Questions, 2)
	assert.Equal(t, 0, loaded.Questions[0].Position)
	require.Len(t, loaded.Questions[0].Variants, 2)
	assert.Equal(t, "A", loaded.Questions[0].Variants[0].Label, "variants ordered by label")
}

func TestGameRepository_SavePersistsAnswers(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB)
	ctx := context.Background()

	users := createPlayers(t, testDB.DB, "answers_creator", "answers_other")
	creator, other := users[0], users[1]

	game, err := domain.NewGame("Answers", "BBB222", creator)
	require.NoError(t, err)
	require.NoError(t, game.AddPlayer(other))
	addTestQuestion(t, game, creator.ID)
	addTestQuestion(t, game, other.ID)
	require.NoError(t, repo.Create(ctx, game))

	loaded, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Start())

	variantID := loaded.Questions[0].Variants[0].ID
	require.NoError(t, loaded.RecordChoice(creator.ID, []uuid.UUID{variantID}))
	require.NoError(t, loaded.RecordChoice(other.ID, []uuid.UUID{variantID}))
	require.NoError(t, loaded.RecordGuess(creator.ID, other.ID, []uuid.UUID{variantID}))
	loaded.DrainEvents()

	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusStarted, reloaded.Status)
	assert.Equal(t, loaded.CurrentQuestionID, reloaded.CurrentQuestionID)

	question := reloaded.QuestionByID(reloaded.CurrentQuestionID)
	require.NotNil(t, question)
	require.Len(t, question.Choices, 2)
	require.Len(t, question.Guesses, 1)
	assert.Equal(t, []uuid.UUID{variantID}, []uuid.UUID(question.Choices[0].SelectedVariantIDs))
}

func TestGameRepository_GetByShortCode(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB)
	ctx := context.Background()

	users := createPlayers(t, testDB.DB, "code_creator")

	game, err := domain.NewGame("Coded", "CCC333", users[0])
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, game))

	got, err := repo.GetByShortCode(ctx, "CCC333")
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)

	_, err = repo.GetByShortCode(ctx, "ZZZ999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGameRepository_GetByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewGameRepository(testDB.DB)
	ctx := context.Background()

	users := createPlayers(t, testDB.DB, "list_creator", "list_other")
	creator, other := users[0], users[1]

	for _, code := range []string{"DDD444", "EEE555"} {
		game, err := domain.NewGame("Listed", code, creator)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, game))
	}

	games, err := repo.GetByUserID(ctx, creator.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	games, err = repo.GetByUserID(ctx, other.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, games)
}
