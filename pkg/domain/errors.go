package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyAnswer is returned when an answer is submitted without a selection.
var ErrEmptyAnswer = errors.New("no option selected")

// ErrInvalidOption is returned when the submitted token is not an option of the current question.
var ErrInvalidOption = errors.New("invalid option")

// ErrSessionClosed is returned when a session no longer accepts navigation.
var ErrSessionClosed = errors.New("session closed")
