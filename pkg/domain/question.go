package domain

// Predicate decides whether a question is part of the current sequence.
// It must tolerate a partial answer set: unanswered ids read as "".
type Predicate func(Answers) bool

// Option is a selectable answer of a question.
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Hidden options are accepted by the engine but not offered to the applicant.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Question is an immutable catalog entry.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`

	// Condition is the source text of the relevance rule, kept for introspection.
	Condition string `json:"condition,omitempty" yaml:"when,omitempty"`

	// Relevant is nil for questions that are always asked.
	Relevant Predicate `json:"-" yaml:"-"`
}

// IsRelevant evaluates the relevance predicate against answers.
func (q Question) IsRelevant(answers Answers) bool {
	if q.Relevant == nil {
		return true
	}
	return q.Relevant(answers)
}

// VisibleOptions returns the options an applicant may pick from.
func (q Question) VisibleOptions() []Option {
	visible := make([]Option, 0, len(q.Options))
	for _, opt := range q.Options {
		if !opt.Hidden {
			visible = append(visible, opt)
		}
	}
	return visible
}

// HasOption reports whether value is a declared option token, hidden or not.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
