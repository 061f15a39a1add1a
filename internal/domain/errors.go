package domain

import "errors"

// Programming-defect conditions. These are never user-facing validation
// failures: if one surfaces, aggregate state is inconsistent and the
// caller should fail loudly.
var (
	ErrCurrentQuestionMissing = errors.New("current question id does not resolve to a question in this game")
	ErrChoiceMissing          = errors.New("answered question is missing a player choice")
)
