package props

import (
	"time"

	"github.com/goliatone/go-props/pkg/activity"
)

// Option configures a DirtyMap.
type Option func(*mapConfig)

type mapConfig struct {
	logger       TrackerLogger
	hooks        activity.Hooks
	activity     activity.Config
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	ruleArgs     map[string]any
	clock        func() time.Time
}

func applyOptions(opts []Option) mapConfig {
	cfg := mapConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopTrackerLogger{}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg
}

// WithActivityHooks attaches activity hooks notified on checkpoints, forced
// dirty marks and flushes. Nil hooks are dropped.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *mapConfig) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.hooks = append(cfg.hooks, hook)
			}
		}
		cfg.activity.Enabled = len(cfg.hooks) > 0
	}
}

// WithActivityConfig sets channel, actor and tenant defaults for emitted
// events. Emission still requires at least one hook.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *mapConfig) {
		enabled := cfg.activity.Enabled
		cfg.activity = config
		cfg.activity.Enabled = enabled
	}
}

// WithEvaluator sets the rule engine used by DirtyWhere. Defaults to expr.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *mapConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a cache for compiled rule programs used when
// the default evaluator is built.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *mapConfig) {
		cfg.programCache = cache
	}
}

// WithRuleArgs exposes args to rule expressions as `args`.
func WithRuleArgs(args map[string]any) Option {
	return func(cfg *mapConfig) {
		cfg.ruleArgs = cloneArgs(args)
	}
}

// WithClock overrides the clock used to stamp checkpoints and rule contexts.
func WithClock(clock func() time.Time) Option {
	return func(cfg *mapConfig) {
		cfg.clock = clock
	}
}

func cloneArgs(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
