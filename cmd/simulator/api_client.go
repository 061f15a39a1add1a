package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Game struct {
	ID                string     `json:"id"`
	ShortCode         string     `json:"shortCode"`
	Name              string     `json:"name"`
	Status            string     `json:"status"`
	CreatedBy         string     `json:"createdBy"`
	CurrentQuestionID string     `json:"currentQuestionId"`
	Players           []Player   `json:"players"`
	Questions         []Question `json:"questions"`
}

type Player struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	JoinOrder   int    `json:"joinOrder"`
}

type Question struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	MultipleAnswers bool      `json:"multipleAnswers"`
	Position        int       `json:"position"`
	Variants        []Variant `json:"variants"`
}

type Variant struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type UserResult struct {
	UserID     string `json:"userId"`
	TotalScore int    `json:"totalScore"`
}

// RegisterUser creates a new user account
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// CreateGame creates a new game
func (c *APIClient) CreateGame(token, name string) (*Game, error) {
	body := map[string]string{"name": name}

	resp, err := c.post("/games/", body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create game failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var game Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

// JoinGame joins a game by id or short code
func (c *APIClient) JoinGame(token, idOrCode string) (*Game, error) {
	resp, err := c.post(fmt.Sprintf("/games/%s/join", idOrCode), map[string]string{}, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("join game failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var game Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

// AddQuestion adds a question to a game
func (c *APIClient) AddQuestion(token, gameID, text string, multipleAnswers bool, variants map[string]string) (*Question, error) {
	body := map[string]interface{}{
		"text":            text,
		"multipleAnswers": multipleAnswers,
		"variants":        variants,
	}

	resp, err := c.post(fmt.Sprintf("/games/%s/questions", gameID), body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add question failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var question Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

// StartGame starts a game
func (c *APIClient) StartGame(token, gameID string) (*Game, error) {
	resp, err := c.post(fmt.Sprintf("/games/%s/start", gameID), map[string]string{}, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("start game failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var game Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

// RecordChoice submits the caller's own answer on the current question
func (c *APIClient) RecordChoice(token, gameID string, variantIDs []string) (*Game, error) {
	body := map[string]interface{}{"selectedVariantIds": variantIDs}

	resp, err := c.post(fmt.Sprintf("/games/%s/choices", gameID), body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("record choice failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var game Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

// RecordGuess submits a guess about another player's choice
func (c *APIClient) RecordGuess(token, gameID, choiceUserID string, variantIDs []string) (*Game, error) {
	body := map[string]interface{}{
		"choiceUserId":       choiceUserID,
		"selectedVariantIds": variantIDs,
	}

	resp, err := c.post(fmt.Sprintf("/games/%s/guesses", gameID), body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("record guess failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var game Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, err
	}
	return &game, nil
}

// GetResults fetches the results of an answered question
func (c *APIClient) GetResults(token, gameID, questionID string) ([]UserResult, error) {
	resp, err := c.get(fmt.Sprintf("/games/%s/questions/%s/results", gameID, questionID), token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get results failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var results []UserResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func (c *APIClient) get(path, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}
