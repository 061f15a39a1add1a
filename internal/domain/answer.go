package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestionUserChoice is a player's own answer to a question. Append-only:
// choices are never edited or retracted.
type QuestionUserChoice struct {
	ID                 uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key"`
	QuestionID         uuid.UUID                       `json:"questionId" gorm:"type:uuid;not null;index"`
	UserID             uuid.UUID                       `json:"userId" gorm:"type:uuid;not null"`
	SelectedVariantIDs datatypes.JSONSlice[uuid.UUID] `json:"selectedVariantIds" gorm:"type:jsonb"`
	CreatedAt          time.Time                       `json:"createdAt"`
}

// TableName returns the table name for GORM
func (QuestionUserChoice) TableName() string {
	return "question_user_choices"
}

// QuestionUserGuess is one player's prediction of another player's
// choice. Append-only, one per ordered (guesser, subject) pair.
type QuestionUserGuess struct {
	ID                 uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key"`
	QuestionID         uuid.UUID                       `json:"questionId" gorm:"type:uuid;not null;index"`
	GuessingUserID     uuid.UUID                       `json:"guessingUserId" gorm:"type:uuid;not null"`
	ChoiceUserID       uuid.UUID                       `json:"choiceUserId" gorm:"type:uuid;not null"`
	SelectedVariantIDs datatypes.JSONSlice[uuid.UUID] `json:"selectedVariantIds" gorm:"type:jsonb"`
	CreatedAt          time.Time                       `json:"createdAt"`
}

// TableName returns the table name for GORM
func (QuestionUserGuess) TableName() string {
	return "question_user_guesses"
}

// NewQuestionUserChoice validates the selection against the question's
// variants and builds a choice record.
func NewQuestionUserChoice(question *Question, userID uuid.UUID, selectedVariantIDs []uuid.UUID) (QuestionUserChoice, error) {
	if err := validateSelection(question, selectedVariantIDs); err != nil {
		return QuestionUserChoice{}, err
	}
	return QuestionUserChoice{
		ID:                 uuid.New(),
		QuestionID:         question.ID,
		UserID:             userID,
		SelectedVariantIDs: datatypes.NewJSONSlice(selectedVariantIDs),
		CreatedAt:          time.Now(),
	}, nil
}

// NewQuestionUserGuess validates the selection and the pair of users and
// builds a guess record. Guessing your own choice is invalid.
func NewQuestionUserGuess(question *Question, guessingUserID, choiceUserID uuid.UUID, selectedVariantIDs []uuid.UUID) (QuestionUserGuess, error) {
	var verrs ValidationErrors
	if guessingUserID == choiceUserID {
		verrs.Add("choiceUserId", "cannot guess your own choice")
	}
	if err := validateSelection(question, selectedVariantIDs); err != nil {
		if vs, ok := AsValidation(err); ok {
			verrs = append(verrs, vs...)
		} else {
			return QuestionUserGuess{}, err
		}
	}
	if err := verrs.ErrOrNil(); err != nil {
		return QuestionUserGuess{}, err
	}
	return QuestionUserGuess{
		ID:                 uuid.New(),
		QuestionID:         question.ID,
		GuessingUserID:     guessingUserID,
		ChoiceUserID:       choiceUserID,
		SelectedVariantIDs: datatypes.NewJSONSlice(selectedVariantIDs),
		CreatedAt:          time.Now(),
	}, nil
}

func validateSelection(question *Question, selectedVariantIDs []uuid.UUID) error {
	var verrs ValidationErrors
	if len(selectedVariantIDs) == 0 {
		verrs.Add("selectedVariantIds", "at least one answer variant must be selected")
	}
	seen := make(map[uuid.UUID]struct{}, len(selectedVariantIDs))
	for _, id := range selectedVariantIDs {
		if _, dup := seen[id]; dup {
			verrs.Add("selectedVariantIds", "answer variants cannot be selected twice")
			continue
		}
		seen[id] = struct{}{}
		if !question.HasVariant(id) {
			verrs.Add("selectedVariantIds", "selected variant does not belong to this question")
		}
	}
	return verrs.ErrOrNil()
}
