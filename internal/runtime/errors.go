package runtime

import (
	"errors"
	"fmt"
)

// ErrCorruptState is returned when a state does not fit the catalog it is replayed against.
var ErrCorruptState = errors.New("corrupt session state")

// PositionError reports a history position outside the relevant question list.
type PositionError struct {
	SessionID string
	Position  int
	Total     int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("session %s: position %d out of range (%d relevant questions)", e.SessionID, e.Position, e.Total)
}

func (e *PositionError) Unwrap() error {
	return ErrCorruptState
}
