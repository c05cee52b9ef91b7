// Package services implements the coaching use-cases: in-character chat
// replies, per-message and end-of-conversation feedback, the persona library,
// and the conversation hand-off between the chat and the review.
//
// This file centralizes the service-level error values. Handlers translate
// them into HTTP statuses; services wrap them with %w so callers can match
// with errors.Is while keeping the specific message.
package services

import "errors"

var (
	// ErrInvalidInput is the root of every request validation failure. All
	// errors below that describe bad input wrap it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMessagesRequired is returned when a request omits the messages list.
	ErrMessagesRequired = wrapInvalid("messages are required")

	// ErrInvalidRole is returned for a message whose role is neither user
	// nor assistant.
	ErrInvalidRole = wrapInvalid("message role must be user or assistant")

	// ErrEmptyAdvisorMessage is returned when per-message feedback is asked
	// for a blank advisor message.
	ErrEmptyAdvisorMessage = wrapInvalid("userMessage is required")

	// ErrEmptyTranscript is returned when a conversation review has nothing
	// to review.
	ErrEmptyTranscript = wrapInvalid("conversation has no messages")

	// ErrInvalidRisk is returned when a stored persona names an unknown risk
	// tolerance.
	ErrInvalidRisk = wrapInvalid("risk must be Conservative, Moderate or Aggressive")
)

var (
	// ErrPersonaNotFound indicates the persona does not exist, was deleted,
	// or belongs to another user.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrSessionNotFound indicates the conversation record is unknown,
	// expired, or belongs to another user.
	ErrSessionNotFound = errors.New("conversation not found")
)

// invalidError is a validation message that matches ErrInvalidInput.
type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return ErrInvalidInput }

func wrapInvalid(msg string) error { return &invalidError{msg: msg} }
