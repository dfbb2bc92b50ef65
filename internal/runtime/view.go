package runtime

import "github.com/aretw0/taxwizard/pkg/domain"

// View is the read model of a session, ready for a renderer.
type View struct {
	SessionID string        `json:"session_id"`
	Status    domain.Status `json:"status"`

	// Question is nil once the session completed or exited.
	Question *QuestionView `json:"question,omitempty"`
	// Selected is the previously recorded answer of Question, if any.
	Selected string `json:"selected,omitempty"`

	Position  int  `json:"position"`
	Total     int  `json:"total"`
	IsAtStart bool `json:"is_at_start"`
	IsLast    bool `json:"is_last"`

	Answers domain.Answers          `json:"answers"`
	Result  *domain.RoutingEnvelope `json:"result,omitempty"`
	Blocker *domain.Blocker         `json:"blocker,omitempty"`
}

// QuestionView is a question stripped of its predicate and hidden options.
type QuestionView struct {
	ID      string          `json:"id"`
	Prompt  string          `json:"prompt"`
	Options []domain.Option `json:"options"`
}

func newQuestionView(q domain.Question) *QuestionView {
	return &QuestionView{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: q.VisibleOptions(),
	}
}

// CatalogQuestion describes a catalog question to clients.
type CatalogQuestion struct {
	QuestionView
	Condition string `json:"condition,omitempty"`
}

// DescribeCatalog lists questions with their visible options only.
func DescribeCatalog(questions []domain.Question) []CatalogQuestion {
	out := make([]CatalogQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, CatalogQuestion{QuestionView: *newQuestionView(q), Condition: q.Condition})
	}
	return out
}
