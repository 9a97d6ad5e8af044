package conversation

import (
	"errors"
	"fmt"
)

// ErrValidation marks caller-correctable request problems (HTTP 400).
var ErrValidation = errors.New("invalid chat request")

var (
	ErrMissingInput  = fmt.Errorf("%w: question or history is required", ErrValidation)
	ErrEmptyQuestion = fmt.Errorf("%w: question must not be empty", ErrValidation)
	ErrEmptyHistory  = fmt.Errorf("%w: history must contain at least one turn", ErrValidation)
	ErrInvalidTurn   = fmt.Errorf("%w: invalid turn", ErrValidation)
)

// ErrMalformedModelOutput is returned when the backend text is not a JSON object.
var ErrMalformedModelOutput = errors.New("conversation: malformed model output")

// ErrTrailingModelTurn is returned by backends whose chat API can only send
// the final turn as the user.
var ErrTrailingModelTurn = errors.New("conversation: history must end with a user turn")
