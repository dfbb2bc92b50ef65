package domain

import (
	"encoding/json"
	"time"
)

// Status defines where a session stands in the questionnaire.
type Status string

const (
	StatusInProgress Status = "in_progress" // Questions remain
	StatusBlocked    Status = "blocked"     // Prerequisite missing (no TIN)
	StatusCompleted  Status = "completed"   // RoutingResult produced
	StatusExited     Status = "exited"      // Applicant backed out of the first question
)

// Blocker describes why a session cannot produce a recommendation.
type Blocker struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

// State represents the current snapshot of a questionnaire session.
type State struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`

	// Answers holds the selected token per question id.
	Answers Answers `json:"answers"`

	// History is the stack of positions into the relevant-question list.
	// Its last element is the question currently displayed.
	History []int `json:"history"`

	// Result is set once, when Status becomes StatusCompleted.
	Result RoutingResult `json:"-"`

	// Blocker is set while Status is StatusBlocked.
	Blocker *Blocker `json:"blocker,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a clean state positioned on the first question.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Status:    StatusInProgress,
		Answers:   make(Answers),
		History:   []int{0},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Position returns the index of the displayed question in the relevant list.
func (s *State) Position() int {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1]
}

// Terminal reports whether the session stopped accepting answers.
func (s *State) Terminal() bool {
	return s.Status != StatusInProgress
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Answers = s.Answers.Clone()
	next.History = append([]int(nil), s.History...)
	if s.Blocker != nil {
		b := *s.Blocker
		next.Blocker = &b
	}
	return &next
}

type stateJSON State

type stateWire struct {
	*stateJSON
	Result *RoutingEnvelope `json:"result,omitempty"`
}

// MarshalJSON encodes the routing result through its envelope.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateWire{
		stateJSON: (*stateJSON)(&s),
		Result:    Envelope(s.Result),
	})
}

// UnmarshalJSON restores the typed routing result from its envelope.
func (s *State) UnmarshalJSON(data []byte) error {
	wire := stateWire{stateJSON: (*stateJSON)(s)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	result, err := wire.Result.Result()
	if err != nil {
		return err
	}
	s.Result = result
	if s.Answers == nil {
		s.Answers = make(Answers)
	}
	return nil
}
