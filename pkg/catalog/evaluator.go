package catalog

import (
	"fmt"
	"regexp"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	celgo "github.com/google/cel-go/cel"

	"github.com/aretw0/taxwizard/pkg/domain"
)

// Engine names accepted in the "engine" field of a YAML catalog.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
)

// Evaluator compiles a relevance expression into a Predicate.
// known lists the question ids the expression may reference; each reads as ""
// until answered.
type Evaluator interface {
	Name() string
	Compile(expression string, known []string) (domain.Predicate, error)
}

// EvaluatorFor returns the evaluator registered under name ("" selects expr).
func EvaluatorFor(name string) (Evaluator, error) {
	switch name {
	case "", EngineExpr:
		return NewExprEvaluator(), nil
	case EngineCEL:
		return NewCELEvaluator(), nil
	}
	return nil, fmt.Errorf("unknown expression engine %q", name)
}

var referencePattern = regexp.MustCompile(`(?:answers\[\s*|is\(\s*|answered\(\s*)"([^"]+)"`)

// References returns the question ids named by string literal in expression.
func References(expression string) []string {
	var ids []string
	for _, m := range referencePattern.FindAllStringSubmatch(expression, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func activation(answers domain.Answers, known []string) map[string]string {
	env := make(map[string]string, len(known)+len(answers))
	for _, id := range known {
		env[id] = ""
	}
	for k, v := range answers {
		env[k] = v
	}
	return env
}

// exprEvaluator compiles rule expressions using github.com/expr-lang/expr.
type exprEvaluator struct{}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator() Evaluator {
	return exprEvaluator{}
}

func (exprEvaluator) Name() string { return EngineExpr }

func (exprEvaluator) Compile(expression string, known []string) (domain.Predicate, error) {
	if expression == "" {
		return nil, fmt.Errorf("expr: expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(exprEnvironment(nil, nil)),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("expr: compile %q: %w", expression, err)
	}
	return exprPredicate(program, known), nil
}

func exprPredicate(program *exprvm.Program, known []string) domain.Predicate {
	return func(answers domain.Answers) bool {
		out, err := exprlang.Run(program, exprEnvironment(answers, known))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}

func exprEnvironment(answers domain.Answers, known []string) map[string]any {
	values := activation(answers, known)
	return map[string]any{
		"answers": values,
		"is": func(id, value string) bool {
			return answers.Is(id, value)
		},
		"answered": func(id string) bool {
			return answers.Has(id)
		},
	}
}

// celEvaluator compiles rule expressions using github.com/google/cel-go.
type celEvaluator struct{}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator() Evaluator {
	return celEvaluator{}
}

func (celEvaluator) Name() string { return EngineCEL }

func (celEvaluator) Compile(expression string, known []string) (domain.Predicate, error) {
	if expression == "" {
		return nil, fmt.Errorf("cel: expression must not be empty")
	}
	env, err := celgo.NewEnv(
		celgo.Variable("answers", celgo.MapType(celgo.StringType, celgo.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("cel: environment: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel: compile %q: %w", expression, issues.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, fmt.Errorf("cel: %q must evaluate to bool, got %s", expression, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel: program %q: %w", expression, err)
	}

	return func(answers domain.Answers) bool {
		out, _, err := prg.Eval(map[string]any{
			"answers": activation(answers, known),
		})
		if err != nil {
			return false
		}
		ok, _ := out.Value().(bool)
		return ok
	}, nil
}
