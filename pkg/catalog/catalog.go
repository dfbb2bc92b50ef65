package catalog

import (
	"fmt"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// Catalog is an immutable, ordered list of questions.
type Catalog struct {
	questions []domain.Question
	index     map[string]int
}

// New validates questions and builds a catalog preserving their order.
func New(questions ...domain.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog: at least one question is required")
	}

	c := &Catalog{
		questions: make([]domain.Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID == "" {
			return nil, &LoadError{Position: i, Field: "id", Err: errMissing}
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, &LoadError{QuestionID: q.ID, Position: i, Field: "id", Err: errDuplicate}
		}
		if len(q.Options) == 0 {
			return nil, &LoadError{QuestionID: q.ID, Position: i, Field: "options", Err: errMissing}
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.Value == "" {
				return nil, &LoadError{QuestionID: q.ID, Position: i, Field: "options.value", Err: errMissing}
			}
			if seen[opt.Value] {
				return nil, &LoadError{QuestionID: q.ID, Position: i, Field: "options.value", Err: fmt.Errorf("%w: %q", errDuplicate, opt.Value)}
			}
			seen[opt.Value] = true
		}
		if len(q.VisibleOptions()) == 0 {
			return nil, &LoadError{QuestionID: q.ID, Position: i, Field: "options", Err: fmt.Errorf("every option is hidden")}
		}

		c.index[q.ID] = i
		c.questions = append(c.questions, cloneQuestion(q))
	}
	return c, nil
}

// MustNew is like New but panics on invalid input. Intended for static catalogs.
func MustNew(questions ...domain.Question) *Catalog {
	c, err := New(questions...)
	if err != nil {
		panic(err)
	}
	return c
}

// Questions returns the questions in catalog order.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

// Question looks a question up by id.
func (c *Catalog) Question(id string) (domain.Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Question{}, false
	}
	return cloneQuestion(c.questions[i]), true
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// IDs returns the question ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.questions))
	for i, q := range c.questions {
		ids[i] = q.ID
	}
	return ids
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	return q
}
