package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/api/middleware"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/service"
)

type GameHandler struct {
	gameService *service.GameService
}

func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

type CreateGameRequest struct {
	Name string `json:"name"`
}

type CreateQuestionRequest struct {
	Text            string            `json:"text"`
	MultipleAnswers bool              `json:"multipleAnswers"`
	Variants        map[string]string `json:"variants"`
}

type RecordChoiceRequest struct {
	SelectedVariantIDs []string `json:"selectedVariantIds"`
}

type RecordGuessRequest struct {
	ChoiceUserID       string   `json:"choiceUserId"`
	SelectedVariantIDs []string `json:"selectedVariantIds"`
}

type GameResponse struct {
	ID                string             `json:"id"`
	ShortCode         string             `json:"shortCode"`
	Name              string             `json:"name"`
	Status            string             `json:"status"`
	CreatedBy         string             `json:"createdBy"`
	CurrentQuestionID string             `json:"currentQuestionId,omitempty"`
	Players           []PlayerResponse   `json:"players"`
	Questions         []QuestionResponse `json:"questions"`
}

type PlayerResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	JoinOrder   int    `json:"joinOrder"`
}

type QuestionResponse struct {
	ID              string            `json:"id"`
	Text            string            `json:"text"`
	MultipleAnswers bool              `json:"multipleAnswers"`
	Position        int               `json:"position"`
	Variants        []VariantResponse `json:"variants"`
	ChoiceCount     int               `json:"choiceCount"`
	GuessCount      int               `json:"guessCount"`
}

type VariantResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), service.CreateGameInput{
		Name:      req.Name,
		CreatedBy: userID,
	})
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, gameResponse(game))
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.GetGame(r.Context(), chi.URLParam(r, "idOrCode"))
	if err != nil {
		respondGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse(game))
}

func (h *GameHandler) GetUserGames(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	games, err := h.gameService.GetUserGames(r.Context(), userID, 20, 0)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]GameResponse, len(games))
	for i, game := range games {
		resp[i] = gameResponse(game)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), chi.URLParam(r, "idOrCode"))
	if err != nil {
		respondGameError(w, err)
		return
	}

	game, err = h.gameService.JoinGame(r.Context(), game.ID, userID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse(game))
}

func (h *GameHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	question, err := h.gameService.CreateQuestion(r.Context(), service.CreateQuestionInput{
		GameID:          gameID,
		Text:            req.Text,
		MultipleAnswers: req.MultipleAnswers,
		Variants:        req.Variants,
		CreatedBy:       userID,
	})
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, questionResponse(question))
}

func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	game, err := h.gameService.StartGame(r.Context(), gameID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse(game))
}

func (h *GameHandler) RecordChoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	var req RecordChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	variantIDs, err := parseUUIDs(req.SelectedVariantIDs)
	if err != nil {
		http.Error(w, "Invalid variant id", http.StatusBadRequest)
		return
	}

	game, err := h.gameService.RecordChoice(r.Context(), service.RecordChoiceInput{
		GameID:             gameID,
		UserID:             userID,
		SelectedVariantIDs: variantIDs,
	})
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse(game))
}

func (h *GameHandler) RecordGuess(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	var req RecordGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	choiceUserID, err := uuid.Parse(req.ChoiceUserID)
	if err != nil {
		http.Error(w, "Invalid choice user id", http.StatusBadRequest)
		return
	}

	variantIDs, err := parseUUIDs(req.SelectedVariantIDs)
	if err != nil {
		http.Error(w, "Invalid variant id", http.StatusBadRequest)
		return
	}

	game, err := h.gameService.RecordGuess(r.Context(), service.RecordGuessInput{
		GameID:             gameID,
		GuessingUserID:     userID,
		ChoiceUserID:       choiceUserID,
		SelectedVariantIDs: variantIDs,
	})
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse(game))
}

func (h *GameHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "questionId"))
	if err != nil {
		http.Error(w, "Invalid question id", http.StatusBadRequest)
		return
	}

	results, err := h.gameService.GetResults(r.Context(), gameID, questionID)
	if err != nil {
		respondGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// respondGameError maps service/domain failures onto HTTP statuses.
// Validation failures return the full accumulated list.
func respondGameError(w http.ResponseWriter, err error) {
	if verrs, ok := domain.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": verrs})
		return
	}
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		http.Error(w, "Question not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func gameResponse(game *domain.Game) GameResponse {
	resp := GameResponse{
		ID:        game.ID.String(),
		ShortCode: game.ShortCode,
		Name:      game.Name,
		Status:    string(game.Status),
		CreatedBy: game.CreatedBy.String(),
		Players:   make([]PlayerResponse, len(game.Players)),
		Questions: make([]QuestionResponse, len(game.Questions)),
	}
	if game.CurrentQuestionID != uuid.Nil {
		resp.CurrentQuestionID = game.CurrentQuestionID.String()
	}
	for i, player := range game.Players {
		resp.Players[i] = PlayerResponse{
			UserID:    player.UserID.String(),
			JoinOrder: player.JoinOrder,
		}
		if player.User != nil {
			resp.Players[i].DisplayName = player.User.DisplayName
		}
	}
	for i := range game.Questions {
		resp.Questions[i] = questionResponse(&game.Questions[i])
	}
	return resp
}

func questionResponse(question *domain.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:              question.ID.String(),
		Text:            question.Text,
		MultipleAnswers: question.MultipleAnswers,
		Position:        question.Position,
		Variants:        make([]VariantResponse, len(question.Variants)),
		ChoiceCount:     len(question.Choices),
		GuessCount:      len(question.Guesses),
	}
	for i, variant := range question.Variants {
		resp.Variants[i] = VariantResponse{
			ID:    variant.ID.String(),
			Label: variant.Label,
			Text:  variant.Text,
		}
	}
	return resp
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(values))
	for i, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
