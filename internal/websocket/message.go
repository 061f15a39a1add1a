package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinGame  MessageType = "JOIN_GAME"
	MessageTypeLeaveGame MessageType = "LEAVE_GAME"

	// Server to Client
	MessageTypeJoinedGame       MessageType = "JOINED_GAME"
	MessageTypePlayerJoined     MessageType = "PLAYER_JOINED"
	MessageTypeQuestionAdded    MessageType = "QUESTION_ADDED"
	MessageTypeGameStarted      MessageType = "GAME_STARTED"
	MessageTypeChoiceRecorded   MessageType = "CHOICE_RECORDED"
	MessageTypeGuessRecorded    MessageType = "GUESS_RECORDED"
	MessageTypeQuestionAdvanced MessageType = "QUESTION_ADVANCED"
	MessageTypeGameEnded        MessageType = "GAME_ENDED"
	MessageTypeError            MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinGamePayload struct {
	GameID string `json:"gameId"`
}

// Server to Client payloads

type JoinedGamePayload struct {
	GameID string `json:"gameId"`
}

// GameEventPayload mirrors a domain event. Selected variant ids are
// never included; answers stay hidden until results.
type GameEventPayload struct {
	GameID     string `json:"gameId"`
	UserID     string `json:"userId,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messageTypeForEvent maps domain event types onto wire message types.
var messageTypeForEvent = map[domain.EventType]MessageType{
	domain.EventPlayerJoined:     MessageTypePlayerJoined,
	domain.EventQuestionAdded:    MessageTypeQuestionAdded,
	domain.EventGameStarted:      MessageTypeGameStarted,
	domain.EventChoiceRecorded:   MessageTypeChoiceRecorded,
	domain.EventGuessRecorded:    MessageTypeGuessRecorded,
	domain.EventQuestionAdvanced: MessageTypeQuestionAdvanced,
	domain.EventGameEnded:        MessageTypeGameEnded,
}

// NewEventMessage converts a domain event into a broadcastable message.
// Returns nil for event types with no wire mapping.
func NewEventMessage(event domain.Event) *Message {
	msgType, ok := messageTypeForEvent[event.Type]
	if !ok {
		return nil
	}

	payload := GameEventPayload{GameID: event.GameID.String()}
	if event.ActorID != uuid.Nil {
		payload.UserID = event.ActorID.String()
	}
	if event.QuestionID != uuid.Nil {
		payload.QuestionID = event.QuestionID.String()
	}

	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil
	}
	return msg
}
