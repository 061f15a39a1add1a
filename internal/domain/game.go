package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game. Transitions are
// one-directional: created -> started -> ended.
type GameStatus string

const (
	GameStatusCreated GameStatus = "created"
	GameStatusStarted GameStatus = "started"
	GameStatusEnded   GameStatus = "ended"
)

const (
	// MaxGameNameLength bounds the game name.
	MaxGameNameLength = 100
	// MinPlayersToStart is the smallest roster a game can start with.
	MinPlayersToStart = 2
	// MinQuestionsToStart is the smallest question set a game can start with.
	MinQuestionsToStart = 2
)

// Game is the aggregate root for one run of the game. It exclusively
// owns its questions and roster; all mutations go through its methods.
// The aggregate performs no locking of its own — callers must serialize
// mutations per game id.
type Game struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ShortCode         string     `json:"shortCode" gorm:"uniqueIndex;size:10;not null"`
	Name              string     `json:"name" gorm:"size:100;not null"`
	CreatedBy         uuid.UUID  `json:"createdBy" gorm:"type:uuid;not null"`
	Status            GameStatus `json:"status" gorm:"type:varchar(20);not null;default:'created'"`
	CurrentQuestionID uuid.UUID  `json:"currentQuestionId" gorm:"type:uuid"`
	CreatedAt         time.Time  `json:"createdAt"`
	StartedAt         *time.Time `json:"startedAt"`
	EndedAt           *time.Time `json:"endedAt"`

	Players   []GamePlayer `json:"players" gorm:"foreignKey:GameID"`
	Questions []Question   `json:"questions" gorm:"foreignKey:GameID"`

	events []Event `gorm:"-" json:"-"`
}

// TableName returns the table name for GORM
func (Game) TableName() string {
	return "games"
}

// GamePlayer is one roster entry. JoinOrder preserves seating order;
// the creator always has JoinOrder 0.
type GamePlayer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	GameID    uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	JoinOrder int       `json:"joinOrder" gorm:"not null;default:0"`
	JoinedAt  time.Time `json:"joinedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (GamePlayer) TableName() string {
	return "game_players"
}

// NewGame creates a game in the created state with the creator as the
// sole initial player. The short code is the shareable join code and is
// generated by the caller.
func NewGame(name, shortCode string, creator User) (*Game, error) {
	var verrs ValidationErrors
	if len([]rune(name)) > MaxGameNameLength {
		verrs.Add("name", "name cannot be longer than 100 characters")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	game := &Game{
		ID:        uuid.New(),
		ShortCode: shortCode,
		Name:      name,
		CreatedBy: creator.ID,
		Status:    GameStatusCreated,
		CreatedAt: now,
	}
	game.Players = []GamePlayer{{
		ID:        uuid.New(),
		GameID:    game.ID,
		UserID:    creator.ID,
		JoinOrder: 0,
		JoinedAt:  now,
	}}
	return game, nil
}

// HasPlayer reports whether the user is on the roster.
func (g *Game) HasPlayer(userID uuid.UUID) bool {
	for _, p := range g.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// AddPlayer appends a user to the roster. Joining is only possible
// before the game starts; duplicate joins are rejected.
func (g *Game) AddPlayer(user User) error {
	var verrs ValidationErrors
	if g.Status != GameStatusCreated {
		verrs.Add("", "cannot join a game that has already started")
	}
	if g.HasPlayer(user.ID) {
		verrs.Add("", "user is already a player in this game")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return err
	}

	g.Players = append(g.Players, GamePlayer{
		ID:        uuid.New(),
		GameID:    g.ID,
		UserID:    user.ID,
		JoinOrder: len(g.Players),
		JoinedAt:  time.Now(),
	})
	g.record(Event{Type: EventPlayerJoined, GameID: g.ID, ActorID: user.ID})
	return nil
}

// AddQuestion appends a pre-validated question to the game, assigning
// the next position in the sequence. Question-level validation happens
// in NewQuestion.
func (g *Game) AddQuestion(q *Question) {
	q.GameID = g.ID
	q.Position = len(g.Questions)
	g.Questions = append(g.Questions, *q)
	g.record(Event{Type: EventQuestionAdded, GameID: g.ID, ActorID: q.CreatedBy, QuestionID: q.ID})
}

// Start moves the game to the started state and selects the first
// question by position. Both start requirements are reported together
// when neither is met.
func (g *Game) Start() error {
	var verrs ValidationErrors
	if g.Status != GameStatusCreated {
		verrs.Add("", "game has already been started")
	}
	if len(g.Players) < MinPlayersToStart {
		verrs.Add("", "cannot start game with only one player")
	}
	if len(g.Questions) < MinQuestionsToStart {
		verrs.Add("", "at least two questions required to start the game")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return err
	}

	now := time.Now()
	g.Status = GameStatusStarted
	g.StartedAt = &now
	g.CurrentQuestionID = g.firstQuestion().ID
	g.record(Event{Type: EventGameStarted, GameID: g.ID, QuestionID: g.CurrentQuestionID})
	return nil
}

// RecordChoice records the user's own answer on the current question.
// Recording a choice never advances the question pointer; only guesses
// complete a question.
func (g *Game) RecordChoice(userID uuid.UUID, selectedVariantIDs []uuid.UUID) error {
	question, err := g.activeQuestion(userID)
	if err != nil {
		return err
	}

	choice, err := NewQuestionUserChoice(question, userID, selectedVariantIDs)
	if err != nil {
		return err
	}
	if err := question.RecordChoice(choice); err != nil {
		return err
	}

	g.record(Event{Type: EventChoiceRecorded, GameID: g.ID, ActorID: userID, QuestionID: question.ID})
	return nil
}

// RecordGuess records one user's prediction of another user's choice on
// the current question, then advances the question pointer if the
// question is now fully answered.
func (g *Game) RecordGuess(guessingUserID, choiceUserID uuid.UUID, selectedVariantIDs []uuid.UUID) error {
	question, err := g.activeQuestion(guessingUserID)
	if err != nil {
		return err
	}

	var verrs ValidationErrors
	if !g.HasPlayer(choiceUserID) {
		verrs.Add("choiceUserId", "guess subject is not a player in this game")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return err
	}

	guess, err := NewQuestionUserGuess(question, guessingUserID, choiceUserID, selectedVariantIDs)
	if err != nil {
		return err
	}
	if err := question.RecordGuess(guess); err != nil {
		return err
	}

	g.record(Event{Type: EventGuessRecorded, GameID: g.ID, ActorID: guessingUserID, QuestionID: question.ID})
	g.advanceIfCurrentQuestionAnswered(question)
	return nil
}

// Results scores the given question. It fails with a validation error
// until the question is fully answered.
func (g *Game) Results(questionID uuid.UUID) ([]UserResult, error) {
	question := g.QuestionByID(questionID)
	if question == nil {
		var verrs ValidationErrors
		verrs.Add("questionId", "question does not belong to this game")
		return nil, verrs
	}
	return question.UserResults(g.Players)
}

// QuestionByID returns the question with the given id, or nil.
func (g *Game) QuestionByID(id uuid.UUID) *Question {
	for i := range g.Questions {
		if g.Questions[i].ID == id {
			return &g.Questions[i]
		}
	}
	return nil
}

// CurrentQuestion resolves the question the pointer identifies. Failing
// to resolve while the game is started is a programming defect, not a
// user error.
func (g *Game) CurrentQuestion() (*Question, error) {
	q := g.QuestionByID(g.CurrentQuestionID)
	if q == nil {
		return nil, ErrCurrentQuestionMissing
	}
	return q, nil
}

// Events returns the occurrences recorded since the last Drain.
func (g *Game) Events() []Event {
	return g.events
}

// DrainEvents returns and clears the recorded occurrences. The calling
// layer dispatches them after the aggregate has been saved.
func (g *Game) DrainEvents() []Event {
	events := g.events
	g.events = nil
	return events
}

// activeQuestion validates that answers can be recorded right now by
// this user and resolves the current question.
func (g *Game) activeQuestion(userID uuid.UUID) (*Question, error) {
	var verrs ValidationErrors
	switch g.Status {
	case GameStatusCreated:
		verrs.Add("", "game has not been started yet")
	case GameStatusEnded:
		verrs.Add("", "game has already ended")
	}
	if !g.HasPlayer(userID) {
		verrs.Add("userId", "user is not a player in this game")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}
	return g.CurrentQuestion()
}

// advanceIfCurrentQuestionAnswered moves the pointer to the next
// unanswered question by position, or ends the game when none remain.
// This is the only transition trigger besides Start.
func (g *Game) advanceIfCurrentQuestionAnswered(current *Question) {
	if !current.Answered(len(g.Players)) {
		return
	}

	next := g.nextUnansweredQuestion()
	if next == nil {
		now := time.Now()
		g.Status = GameStatusEnded
		g.EndedAt = &now
		g.record(Event{Type: EventGameEnded, GameID: g.ID})
		return
	}
	g.CurrentQuestionID = next.ID
	g.record(Event{Type: EventQuestionAdvanced, GameID: g.ID, QuestionID: next.ID})
}

func (g *Game) firstQuestion() *Question {
	first := &g.Questions[0]
	for i := range g.Questions {
		if g.Questions[i].Position < first.Position {
			first = &g.Questions[i]
		}
	}
	return first
}

func (g *Game) nextUnansweredQuestion() *Question {
	playerCount := len(g.Players)
	var next *Question
	for i := range g.Questions {
		q := &g.Questions[i]
		if q.Answered(playerCount) {
			continue
		}
		if next == nil || q.Position < next.Position {
			next = q
		}
	}
	return next
}

func (g *Game) record(event Event) {
	g.events = append(g.events, event)
}
