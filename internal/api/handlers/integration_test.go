package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/smikis/how-well-you-know/internal/api/handlers"
	"github.com/smikis/how-well-you-know/internal/testutil"
	"github.com/smikis/how-well-you-know/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthFlow(t *testing.T) {
	ts := testutil.NewMemoryTestServer(t)

	auth := testutil.NewUserBuilder().WithDisplayName("flow_user").BuildAndAuthenticate(t, ts)
	assert.Equal(t, "flow_user", auth.User.DisplayName)
	assert.NotEmpty(t, auth.AccessToken)

	t.Run("duplicate display name conflicts", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/register"), map[string]string{
			"displayName": "flow_user",
			"password":    "otherpassword",
		}, "")
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})

	t.Run("login", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
			"displayName": "flow_user",
			"password":    "testpassword123",
		}, "")
		resp := doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, auth.User.ID, body.User.ID)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
			"displayName": "flow_user",
			"password":    "wrong",
		}, "")
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("me", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, auth.AccessToken)
		resp := doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var user handlers.UserResponse
		testutil.AssertJSONResponse(t, resp, &user)
		assert.Equal(t, "flow_user", user.DisplayName)
	})

	t.Run("me without token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, "")
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("logout", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/auth/logout"), nil, auth.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)
	})
}

func TestGameFlowOverHTTP(t *testing.T) {
	ts := testutil.NewMemoryTestServer(t)

	host := testutil.NewUserBuilder().WithDisplayName("http_host").BuildAndAuthenticate(t, ts)
	guest := testutil.NewUserBuilder().WithDisplayName("http_guest").BuildAndAuthenticate(t, ts)

	// Create
	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"), map[string]string{
		"name": "HTTP Game",
	}, host.AccessToken)
	resp := doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var game handlers.GameResponse
	testutil.AssertJSONResponse(t, resp, &game)
	assert.Equal(t, "created", game.Status)
	require.NotEmpty(t, game.ShortCode)

	// Join by short code
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ShortCode+"/join"), map[string]string{}, guest.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &game)
	require.Len(t, game.Players, 2)

	// Add questions
	var question handlers.QuestionResponse
	for i, token := range []string{host.AccessToken, guest.AccessToken} {
		req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/questions"), map[string]interface{}{
			"text":            "Question?",
			"multipleAnswers": false,
			"variants":        map[string]string{"A": "First", "B": "Second"},
		}, token)
		resp = doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		testutil.AssertJSONResponse(t, resp, &question)
		assert.Equal(t, i, question.Position)
	}

	// Start
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/start"), map[string]string{}, host.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &game)
	assert.Equal(t, "started", game.Status)
	require.NotEmpty(t, game.CurrentQuestionID)

	currentID := game.CurrentQuestionID
	variantID := game.Questions[0].Variants[0].ID

	// Choices
	for _, token := range []string{host.AccessToken, guest.AccessToken} {
		req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/choices"), map[string]interface{}{
			"selectedVariantIds": []string{variantID},
		}, token)
		resp = doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	// Guesses in both directions
	pairs := []struct{ token, subject string }{
		{host.AccessToken, guest.User.ID},
		{guest.AccessToken, host.User.ID},
	}
	for _, pair := range pairs {
		req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/guesses"), map[string]interface{}{
			"choiceUserId":       pair.subject,
			"selectedVariantIds": []string{variantID},
		}, pair.token)
		resp = doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &game)
	}

	assert.NotEqual(t, currentID, game.CurrentQuestionID, "final guess advances the question")

	// Results for the answered question
	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/games/"+game.ID+"/questions/"+currentID+"/results"), nil, host.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var results []struct {
		UserID     string `json:"userId"`
		TotalScore int    `json:"totalScore"`
	}
	testutil.AssertJSONResponse(t, resp, &results)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 1, r.TotalScore)
	}
}

func TestGameEndpoints_Errors(t *testing.T) {
	ts := testutil.NewMemoryTestServer(t)
	user := testutil.NewUserBuilder().WithDisplayName("errors_user").BuildAndAuthenticate(t, ts)

	t.Run("unauthorized without token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"), map[string]string{"name": "x"}, "")
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("unknown game is 404", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/games/ZZZZZZ"), nil, user.AccessToken)
		resp := doRequest(t, req)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("validation errors come back as a list", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"), map[string]string{
			"name": longName(),
		}, user.AccessToken)
		resp := doRequest(t, req)
		testutil.AssertValidationResponse(t, resp, "name")
	})

	t.Run("starting a fresh game reports every unmet requirement", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"), map[string]string{"name": "Guarded"}, user.AccessToken)
		resp := doRequest(t, req)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		var game handlers.GameResponse
		testutil.AssertJSONResponse(t, resp, &game)

		req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/start"), map[string]string{}, user.AccessToken)
		resp = doRequest(t, req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Len(t, body.Errors, 2)
	})
}

func longName() string {
	out := make([]byte, 101)
	for i := range out {
		out[i] = 'x'
	}
	return string(out)
}

func TestWebSocketEvents(t *testing.T) {
	ts := testutil.NewMemoryTestServer(t)

	host := testutil.NewUserBuilder().WithDisplayName("ws_host").BuildAndAuthenticate(t, ts)
	guest := testutil.NewUserBuilder().WithDisplayName("ws_guest").BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"), map[string]string{"name": "Live Game"}, host.AccessToken)
	resp := doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var game handlers.GameResponse
	testutil.AssertJSONResponse(t, resp, &game)

	client := testutil.NewWSClient(t, ts.WebSocketURL(host.AccessToken))
	client.JoinGame(game.ID)
	client.ExpectMessage(websocket.MessageTypeJoinedGame, 2*time.Second)

	// Another player joining over HTTP shows up on the socket.
	req = testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/games/"+game.ID+"/join"), map[string]string{}, guest.AccessToken)
	resp = doRequest(t, req)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	event := client.ExpectEvent(websocket.MessageTypePlayerJoined, 2*time.Second)
	assert.Equal(t, game.ID, event.GameID)
	assert.Equal(t, guest.User.ID, event.UserID)

	t.Run("joining an unknown game errors", func(t *testing.T) {
		other := testutil.NewWSClient(t, ts.WebSocketURL(host.AccessToken))
		other.JoinGame("00000000-0000-0000-0000-000000000001")
		msg := other.ExpectMessage(websocket.MessageTypeError, 2*time.Second)
		assert.NotNil(t, msg)
	})

	t.Run("connecting without a token fails", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/ws"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
