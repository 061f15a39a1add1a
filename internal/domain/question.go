package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxQuestionTextLength bounds the question text.
	MaxQuestionTextLength = 100
	// MinQuestionVariants is the smallest allowed answer set.
	MinQuestionVariants = 2
	// MaxQuestionVariants is the largest allowed answer set.
	MaxQuestionVariants = 20
)

// Question is one round of the game: every player submits their own
// choice, every ordered pair of distinct players submits one guess, and
// the question is answered once both counts are complete. Questions do
// not hold a reference back to their game; the roster is passed into
// the operations that need it.
type Question struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	GameID          uuid.UUID `json:"gameId" gorm:"type:uuid;not null;index"`
	Text            string    `json:"text" gorm:"size:100;not null"`
	MultipleAnswers bool      `json:"multipleAnswers" gorm:"not null;default:false"`
	CreatedBy       uuid.UUID `json:"createdBy" gorm:"type:uuid;not null"`
	Position        int       `json:"position" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"createdAt"`

	Variants []QuestionVariant    `json:"variants" gorm:"foreignKey:QuestionID"`
	Choices  []QuestionUserChoice `json:"-" gorm:"foreignKey:QuestionID"`
	Guesses  []QuestionUserGuess  `json:"-" gorm:"foreignKey:QuestionID"`
}

// TableName returns the table name for GORM
func (Question) TableName() string {
	return "questions"
}

// QuestionVariant is one selectable answer option. Immutable once created.
type QuestionVariant struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	QuestionID uuid.UUID `json:"questionId" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label" gorm:"size:1;not null"`
	Text       string    `json:"text" gorm:"not null"`
}

// TableName returns the table name for GORM
func (QuestionVariant) TableName() string {
	return "question_variants"
}

// NewQuestion validates and builds a question with its variants.
// Variants are keyed by their single-character label and ordered by it.
// All violations are accumulated before returning failure.
func NewQuestion(text string, multipleAnswers bool, variants map[string]string, createdBy uuid.UUID) (*Question, error) {
	var verrs ValidationErrors
	if len([]rune(text)) > MaxQuestionTextLength {
		verrs.Add("text", "question text cannot be longer than 100 characters")
	}
	if len(variants) < MinQuestionVariants {
		verrs.Add("variants", "more than one possible question answer must be added")
	}
	if len(variants) > MaxQuestionVariants {
		verrs.Add("variants", "no more than twenty possible question answers must be added")
	}

	question := &Question{
		ID:              uuid.New(),
		Text:            text,
		MultipleAnswers: multipleAnswers,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}

	labels := make([]string, 0, len(variants))
	for label := range variants {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	created := make([]QuestionVariant, 0, len(labels))
	for _, label := range labels {
		variant, err := newQuestionVariant(question.ID, label, variants[label])
		if err != nil {
			if vs, ok := AsValidation(err); ok {
				verrs = append(verrs, vs...)
				continue
			}
			return nil, err
		}
		created = append(created, variant)
	}

	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}

	question.Variants = created
	return question, nil
}

func newQuestionVariant(questionID uuid.UUID, label, text string) (QuestionVariant, error) {
	var verrs ValidationErrors
	if len([]rune(label)) != 1 {
		verrs.Add("label", "variant label must be a single character")
	}
	if text == "" {
		verrs.Add("text", "variant text cannot be empty")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return QuestionVariant{}, err
	}
	return QuestionVariant{
		ID:         uuid.New(),
		QuestionID: questionID,
		Label:      label,
		Text:       text,
	}, nil
}

// HasVariant reports whether the id belongs to one of this question's variants.
func (q *Question) HasVariant(variantID uuid.UUID) bool {
	for _, v := range q.Variants {
		if v.ID == variantID {
			return true
		}
	}
	return false
}

// RecordChoice appends a choice. Each user gets exactly one.
func (q *Question) RecordChoice(choice QuestionUserChoice) error {
	var verrs ValidationErrors
	for _, existing := range q.Choices {
		if existing.UserID == choice.UserID {
			verrs.Add("", "user already made a choice for this question")
			break
		}
	}
	if err := verrs.ErrOrNil(); err != nil {
		return err
	}

	q.Choices = append(q.Choices, choice)
	return nil
}

// RecordGuess appends a guess. Each ordered (guesser, subject) pair gets
// exactly one.
func (q *Question) RecordGuess(guess QuestionUserGuess) error {
	var verrs ValidationErrors
	for _, existing := range q.Guesses {
		if existing.GuessingUserID == guess.GuessingUserID && existing.ChoiceUserID == guess.ChoiceUserID {
			verrs.Add("", "user already made a guess for this user")
			break
		}
	}
	if err := verrs.ErrOrNil(); err != nil {
		return err
	}

	q.Guesses = append(q.Guesses, guess)
	return nil
}

// Answered reports whether every player has submitted a choice and every
// ordered pair of distinct players a guess.
func (q *Question) Answered(playerCount int) bool {
	return len(q.Guesses) == playerCount*(playerCount-1) &&
		len(q.Choices) == playerCount
}

// UserResults scores every guess against the subject's recorded choice
// and returns one entry per player in roster order. It fails until the
// question is fully answered.
func (q *Question) UserResults(players []GamePlayer) ([]UserResult, error) {
	if !q.Answered(len(players)) {
		var verrs ValidationErrors
		verrs.Add("", "cannot generate results until question fully answered")
		return nil, verrs
	}

	results := make([]UserResult, 0, len(players))
	for _, player := range players {
		result := UserResult{UserID: player.UserID, Guesses: []GuessResult{}}
		for _, guess := range q.Guesses {
			if guess.GuessingUserID != player.UserID {
				continue
			}
			scored, err := q.scoreGuess(guess)
			if err != nil {
				return nil, err
			}
			result.Guesses = append(result.Guesses, scored)
			result.TotalScore += scored.Score
		}
		results = append(results, result)
	}
	return results, nil
}

// scoreGuess compares a guess with the subject's choice.
//
// ShouldHaveSelected are variants in the choice the guesser missed;
// ShouldNotHaveSelected are variants the guesser picked that the subject
// did not. Multi-answer questions start from 3 points and lose one per
// incorrect variant; single-answer questions pay 1 point for an exact
// match and nothing otherwise.
func (q *Question) scoreGuess(guess QuestionUserGuess) (GuessResult, error) {
	choice := q.choiceByUser(guess.ChoiceUserID)
	if choice == nil {
		return GuessResult{}, ErrChoiceMissing
	}

	shouldNot := variantDifference(guess.SelectedVariantIDs, choice.SelectedVariantIDs)
	should := variantDifference(choice.SelectedVariantIDs, guess.SelectedVariantIDs)
	incorrect := len(shouldNot) + len(should)

	score := 0
	if q.MultipleAnswers {
		score = 3 - incorrect
		if score < 0 {
			score = 0
		}
	} else if incorrect == 0 {
		score = 1
	}

	return GuessResult{
		GuessingUserID:        guess.GuessingUserID,
		ChoiceUserID:          guess.ChoiceUserID,
		Score:                 score,
		ShouldHaveSelected:    should,
		ShouldNotHaveSelected: shouldNot,
	}, nil
}

func (q *Question) choiceByUser(userID uuid.UUID) *QuestionUserChoice {
	for i := range q.Choices {
		if q.Choices[i].UserID == userID {
			return &q.Choices[i]
		}
	}
	return nil
}

// variantDifference returns the ids present in a but not in b,
// preserving a's order.
func variantDifference(a, b []uuid.UUID) []uuid.UUID {
	inB := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	diff := []uuid.UUID{}
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			diff = append(diff, id)
		}
	}
	return diff
}
