package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/tenpin/internal/scoring"
	"github.com/roach88/tenpin/internal/turn"
)

// RuntimeError describes an input the engine ignored.
//
// Runtime errors are reported, never raised: a tick always runs to
// completion and the offending input is dropped.
//   - Game over: a throw or roll arrived after the tenth frame finished
//   - Out of sequence: an action the current turn phase cannot accept
//   - Invalid input: unknown pin ids, non-finite observations
//   - Engine stopped: an action enqueued after Stop
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// GameID identifies the affected game, if any.
	GameID string

	// Seq is the tick the error was observed on.
	Seq int64

	// Details contains additional context.
	Details map[string]string

	err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeGameOver      RuntimeErrorCode = "GAME_OVER"
	ErrCodeOutOfSequence RuntimeErrorCode = "OUT_OF_SEQUENCE"
	ErrCodeInvalidInput  RuntimeErrorCode = "INVALID_INPUT"
	ErrCodeStopped       RuntimeErrorCode = "ENGINE_STOPPED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.GameID != "" {
		return fmt.Sprintf("%s: %s (game=%s, seq=%d)", e.Code, e.Message, e.GameID, e.Seq)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.err
}

// IsGameOverError returns true if the error reports input after game over.
// Uses errors.As to handle wrapped errors.
func IsGameOverError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeGameOver
	}
	return false
}

// IsSequenceError returns true if the error reports an out-of-sequence action.
func IsSequenceError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeOutOfSequence
	}
	return false
}

// IsInvalidInputError returns true if the error reports a bad observation.
func IsInvalidInputError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidInput
	}
	return false
}

// classify wraps a controller anomaly in a RuntimeError. Anything that is
// neither game over nor out of sequence is a bad observation.
func classify(err error, gameID string, seq int64) *RuntimeError {
	code := ErrCodeInvalidInput
	switch {
	case errors.Is(err, scoring.ErrGameOver):
		code = ErrCodeGameOver
	case errors.Is(err, turn.ErrOutOfSequence):
		code = ErrCodeOutOfSequence
	}
	return &RuntimeError{
		Code:    code,
		Message: err.Error(),
		GameID:  gameID,
		Seq:     seq,
		err:     err,
	}
}

// NewStoppedError creates a RuntimeError for an action rejected after Stop.
func NewStoppedError(a turn.Action) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStopped,
		Message: "engine stopped",
		Details: map[string]string{"action": a.Kind.String()},
	}
}
