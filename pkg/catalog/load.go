package catalog

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// document is the YAML layout of a catalog file.
type document struct {
	Engine    string         `mapstructure:"engine"`
	Questions []questionSpec `mapstructure:"questions"`
}

type questionSpec struct {
	ID      string       `mapstructure:"id"`
	Prompt  string       `mapstructure:"prompt"`
	When    string       `mapstructure:"when"`
	Engine  string       `mapstructure:"engine"`
	Options []optionSpec `mapstructure:"options"`
}

type optionSpec struct {
	Value       string `mapstructure:"value"`
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`
	Hidden      bool   `mapstructure:"hidden"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML catalog and compiles its relevance expressions.
func Load(r io.Reader) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	questions := make([]domain.Question, 0, len(doc.Questions))
	known := make([]string, 0, len(doc.Questions))
	for i, spec := range doc.Questions {
		q := domain.Question{
			ID:        spec.ID,
			Prompt:    spec.Prompt,
			Condition: spec.When,
			Options:   make([]domain.Option, 0, len(spec.Options)),
		}
		for _, o := range spec.Options {
			label := o.Label
			if label == "" {
				label = o.Value
			}
			q.Options = append(q.Options, domain.Option{
				Value:       o.Value,
				Label:       label,
				Description: o.Description,
				Hidden:      o.Hidden,
			})
		}

		if spec.When != "" {
			for _, ref := range References(spec.When) {
				if !slices.Contains(known, ref) {
					return nil, &LoadError{QuestionID: spec.ID, Position: i, Field: "when",
						Err: fmt.Errorf("references %q, which is not declared before it", ref)}
				}
			}

			engine := spec.Engine
			if engine == "" {
				engine = doc.Engine
			}
			eval, err := EvaluatorFor(engine)
			if err != nil {
				return nil, &LoadError{QuestionID: spec.ID, Position: i, Field: "engine", Err: err}
			}
			pred, err := eval.Compile(spec.When, slices.Clone(known))
			if err != nil {
				return nil, &LoadError{QuestionID: spec.ID, Position: i, Field: "when", Err: err}
			}
			q.Relevant = pred
		}

		questions = append(questions, q)
		known = append(known, spec.ID)
	}

	return New(questions...)
}
