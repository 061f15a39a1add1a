package domain

import "github.com/google/uuid"

// GuessResult is the scored outcome of one guess, with the variant-level
// feedback the UI shows: what the guesser missed and what they picked
// that the subject did not.
type GuessResult struct {
	GuessingUserID        uuid.UUID   `json:"guessingUserId"`
	ChoiceUserID          uuid.UUID   `json:"choiceUserId"`
	Score                 int         `json:"score"`
	ShouldHaveSelected    []uuid.UUID `json:"shouldHaveSelected"`
	ShouldNotHaveSelected []uuid.UUID `json:"shouldNotHaveSelected"`
}

// UserResult aggregates one player's guesses on a question into a total.
type UserResult struct {
	UserID     uuid.UUID     `json:"userId"`
	TotalScore int           `json:"totalScore"`
	Guesses    []GuessResult `json:"guesses"`
}
