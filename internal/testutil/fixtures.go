package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/service"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build registers the user through the auth service and returns the user
// together with a valid access token.
func (b *UserBuilder) Build(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	result, err := ts.Services.Auth.Register(context.Background(), service.RegisterInput{
		DisplayName: b.displayName,
		Password:    b.password,
	})
	if err != nil {
		t.Fatalf("failed to register user %s: %v", b.displayName, err)
	}
	return result.User, result.AccessToken
}

// AuthResponse mirrors the register/login handler response body
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate registers the user via the HTTP API and returns the
// decoded response. Use this when the test exercises the handler surface.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) *AuthResponse {
	t.Helper()

	body := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal register body: %v", err)
	}

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register returned status %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return &auth
}

// GameBuilder creates test games through the game service
type GameBuilder struct {
	name      string
	creator   *domain.User
	players   []*domain.User
	questions int
}

// NewGameBuilder creates a new GameBuilder with default values
func NewGameBuilder() *GameBuilder {
	return &GameBuilder{
		name: fmt.Sprintf("Test Game %s", uuid.New().String()[:8]),
	}
}

// WithName sets the game name
func (b *GameBuilder) WithName(name string) *GameBuilder {
	b.name = name
	return b
}

// WithCreator sets the creating user
func (b *GameBuilder) WithCreator(user *domain.User) *GameBuilder {
	b.creator = user
	return b
}

// WithPlayers adds users that join the game after creation
func (b *GameBuilder) WithPlayers(users ...*domain.User) *GameBuilder {
	b.players = append(b.players, users...)
	return b
}

// WithQuestions adds n two-variant questions authored by the creator
func (b *GameBuilder) WithQuestions(n int) *GameBuilder {
	b.questions = n
	return b
}

// Build creates the game, joins the players, and adds the questions
func (b *GameBuilder) Build(t *testing.T, ts *TestServer) *domain.Game {
	t.Helper()

	ctx := context.Background()

	if b.creator == nil {
		b.creator, _ = NewUserBuilder().Build(t, ts)
	}

	game, err := ts.Services.Game.CreateGame(ctx, service.CreateGameInput{
		Name:      b.name,
		CreatedBy: b.creator.ID,
	})
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	for _, player := range b.players {
		if game, err = ts.Services.Game.JoinGame(ctx, game.ID, player.ID); err != nil {
			t.Fatalf("failed to join player %s: %v", player.DisplayName, err)
		}
	}

	for i := 0; i < b.questions; i++ {
		_, err := ts.Services.Game.CreateQuestion(ctx, service.CreateQuestionInput{
			GameID:          game.ID,
			Text:            fmt.Sprintf("Test question %d", i+1),
			MultipleAnswers: false,
			Variants: map[string]string{
				"A": "First option",
				"B": "Second option",
			},
			CreatedBy: b.creator.ID,
		})
		if err != nil {
			t.Fatalf("failed to add question %d: %v", i+1, err)
		}
	}

	game, err = ts.Services.Game.GetGame(ctx, game.ID.String())
	if err != nil {
		t.Fatalf("failed to reload game: %v", err)
	}
	return game
}

// BuildStarted builds the game and starts it
func (b *GameBuilder) BuildStarted(t *testing.T, ts *TestServer) *domain.Game {
	t.Helper()

	game := b.Build(t, ts)
	started, err := ts.Services.Game.StartGame(context.Background(), game.ID)
	if err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	return started
}

// CreateAuthenticatedRequest builds an HTTP request with a bearer token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
