package props

import (
	"sort"
	"time"
)

// RuleEntry is the view of one dirty entry exposed to rule expressions.
type RuleEntry struct {
	Key     string
	Forced  bool
	Changed []string
	Names   []string
}

// RuleContext carries the inputs for evaluating a rule against one entry.
type RuleContext struct {
	Entry    RuleEntry
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

// binding returns the variables visible to every engine. Lists are never nil
// so engines see empty lists rather than null.
func (ctx RuleContext) binding() map[string]any {
	ctx = ctx.withDefaults()
	changed := append([]string{}, ctx.Entry.Changed...)
	names := append([]string{}, ctx.Entry.Names...)
	sort.Strings(changed)
	sort.Strings(names)
	return map[string]any{
		"key":      ctx.Entry.Key,
		"forced":   ctx.Entry.Forced,
		"changed":  changed,
		"names":    names,
		"size":     int64(len(names)),
		"now":      *ctx.Now,
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
}

// Evaluator runs rule expressions against an entry.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable rule program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if named, ok := e.(interface{ Engine() string }); ok {
			return named.Engine()
		}
		return "custom"
	}
}
