package props

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEvaluator is returned when no rule engine can be built.
var ErrNoEvaluator = errors.New("props: evaluator not configured")

// EvaluationError carries rule metadata alongside the engine failure.
type EvaluationError struct {
	Engine string
	Expr   string
	Key    string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	key := e.Key
	if key == "" {
		key = "<none>"
	}
	return fmt.Sprintf("props: %s rule %s key=%s: %v", e.Engine, describeExpression(e.Expr), key, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "props:") {
		return err
	}
	return fmt.Errorf("props: %s evaluator: %w", engine, err)
}

// wrapEvaluationError attaches rule metadata, filling blanks on an existing
// EvaluationError instead of nesting a second one.
func wrapEvaluationError(engine, expr, key string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Key == "" {
			evalErr.Key = key
		}
		return evalErr
	}

	return &EvaluationError{Engine: engine, Expr: expr, Key: key, Err: err}
}
