package domain

import "github.com/google/uuid"

// EventType identifies a domain-significant occurrence on a game.
type EventType string

const (
	EventPlayerJoined     EventType = "player_joined"
	EventQuestionAdded    EventType = "question_added"
	EventGameStarted      EventType = "game_started"
	EventChoiceRecorded   EventType = "choice_recorded"
	EventGuessRecorded    EventType = "guess_recorded"
	EventQuestionAdvanced EventType = "question_advanced"
	EventGameEnded        EventType = "game_ended"
)

// Event is recorded by the aggregate as a side effect of a successful
// mutation. The core only records; dispatching to connected clients is
// the calling layer's job, after the aggregate has been saved.
//
// ActorID is the user whose action caused the event, when there is one.
// QuestionID is the affected question: for EventQuestionAdvanced it is
// the new current question. Payloads deliberately omit selected variant
// ids so answers never leak before results are revealed.
type Event struct {
	Type       EventType
	GameID     uuid.UUID
	ActorID    uuid.UUID
	QuestionID uuid.UUID
}
