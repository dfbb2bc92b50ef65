package domain

import "slices"

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Status *Status `json:"status,omitempty"`

	// Answers contains only changed, added or deleted keys.
	// Deleted keys carry a nil value; clients merge these into their local copy.
	Answers map[string]any `json:"answers,omitempty"`

	// History is the full stack whenever it changed. Backward steps pop it,
	// so an append-only delta cannot describe every change.
	History []int `json:"history,omitempty"`

	Result  *RoutingEnvelope `json:"result,omitempty"`
	Blocker *Blocker         `json:"blocker,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
		if newState.Status == StatusCompleted {
			diff.Result = Envelope(newState.Result)
		}
		if newState.Status == StatusBlocked && newState.Blocker != nil {
			b := *newState.Blocker
			diff.Blocker = &b
		}
	}

	diff.Answers = diffAnswers(oldState, newState)

	if oldState == nil || !slices.Equal(oldState.History, newState.History) {
		diff.History = slices.Clone(newState.History)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffAnswers(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Answers {
			delta[k] = v
		}
	} else {
		for k, v := range new.Answers {
			if prev, ok := old.Answers[k]; !ok || prev != v {
				delta[k] = v
			}
		}
		for k := range old.Answers {
			if _, ok := new.Answers[k]; !ok {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Status == nil &&
		len(d.Answers) == 0 &&
		d.History == nil
}
