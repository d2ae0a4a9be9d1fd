package props

import (
	"fmt"
	"time"
)

// DirtyWhere returns the dirty holders for which expression evaluates to
// true. The expression sees key, forced, changed (compound names that differ
// from the baseline), names (all current compound names), size, now, args
// and metadata. The default engine is expr; see WithEvaluator.
//
//	m.DirtyWhere(`forced || any(changed, hasPrefix(#, "inventory:"))`)
//
// A result that is not a boolean is an EvaluationError.
func (m *DirtyMap[K, V]) DirtyWhere(expression string) ([]V, error) {
	start := time.Now()
	values, err := m.dirtyWhere(expression)
	m.log(TrackerLogEvent{Op: OpRule, Entries: len(m.values), Dirty: len(values), Expr: expression, Duration: time.Since(start), Err: err})
	return values, err
}

func (m *DirtyMap[K, V]) dirtyWhere(expression string) ([]V, error) {
	evaluator, err := m.ruleEvaluator()
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, "", err)
	}

	entries, err := m.scan(true)
	if err != nil {
		return nil, err
	}
	var matched []V
	now := m.cfg.clock()
	for _, entry := range entries {
		key := formatKey(entry.key)
		ctx := RuleContext{
			Entry: RuleEntry{
				Key:     key,
				Forced:  entry.forced,
				Changed: changedNames(entry.changes),
				Names:   entry.current.Names(),
			},
			Now:  &now,
			Args: m.cfg.ruleArgs,
		}
		out, err := rule.Evaluate(ctx)
		if err != nil {
			return nil, wrapEvaluationError(engine, expression, key, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return nil, wrapEvaluationError(engine, expression, key, fmt.Errorf("rule must return bool, got %T", out))
		}
		if ok {
			matched = append(matched, m.values[entry.key])
		}
	}
	return matched, nil
}

// ruleEvaluator returns the configured evaluator, building and keeping the
// default expr evaluator on first use.
func (m *DirtyMap[K, V]) ruleEvaluator() (Evaluator, error) {
	if m.cfg.evaluator != nil {
		return m.cfg.evaluator, nil
	}
	if m.evaluator != nil {
		return m.evaluator, nil
	}
	var opts []ExprEvaluatorOption
	if m.cfg.programCache != nil {
		opts = append(opts, ExprWithProgramCache(m.cfg.programCache))
	}
	if m.cfg.functions != nil {
		opts = append(opts, ExprWithFunctionRegistry(m.cfg.functions))
	}
	evaluator := NewExprEvaluator(opts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	m.evaluator = evaluator
	return evaluator, nil
}
