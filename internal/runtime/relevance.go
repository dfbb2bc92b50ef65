package runtime

import (
	"github.com/aretw0/taxwizard/pkg/catalog"
	"github.com/aretw0/taxwizard/pkg/domain"
)

// RelevantQuestions returns, in catalog order, the questions whose relevance
// predicate holds for answers. The list is rebuilt on every call so that changing
// an earlier answer can add or remove later questions.
func RelevantQuestions(c *catalog.Catalog, answers domain.Answers) []domain.Question {
	all := c.Questions()
	relevant := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if q.IsRelevant(answers) {
			relevant = append(relevant, q)
		}
	}
	return relevant
}

// pruneAnswers drops answers to questions that left the relevant list.
// It returns the removed ids.
func pruneAnswers(answers domain.Answers, relevant []domain.Question) []string {
	keep := make(map[string]bool, len(relevant))
	for _, q := range relevant {
		keep[q.ID] = true
	}
	var removed []string
	for _, id := range answers.Keys() {
		if !keep[id] {
			delete(answers, id)
			removed = append(removed, id)
		}
	}
	return removed
}
