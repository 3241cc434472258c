package transpile

import (
	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/dialect"
)

// Retry bounds for the rule-fetch step. retries is the number of re-fetch
// attempts after the first, so n retries means n+1 attempts total.
const (
	MinRetries = 0
	MaxRetries = 5

	// DefaultRetries balances resilience against latency for a provider
	// one network hop away.
	DefaultRetries = 2
)

// Config is the validated per-invocation configuration. Construct it with
// NewConfig; the zero value is not usable.
type Config struct {
	dialect         *dialect.Dialect
	strict          bool
	retries         int
	renderTemplates bool
	blockingKinds   map[core.WarningKind]bool
}

// Option adjusts a Config under construction.
type Option func(*Config)

// Strict makes blocking-kind warnings fatal and disables graceful
// degradation of rule-fetch and metric lookup failures.
func Strict() Option {
	return func(c *Config) { c.strict = true }
}

// Retries sets the number of rule-fetch retries. Validated by NewConfig.
func Retries(n int) Option {
	return func(c *Config) { c.retries = n }
}

// NoTemplates disables template rendering; input SQL passes to the macro
// stage unchanged.
func NoTemplates() Option {
	return func(c *Config) { c.renderTemplates = false }
}

// BlockingKinds replaces the warning kinds that strict mode promotes to
// failures. The default set contains only dangerous-statement.
func BlockingKinds(kinds ...core.WarningKind) Option {
	return func(c *Config) {
		c.blockingKinds = make(map[core.WarningKind]bool, len(kinds))
		for _, k := range kinds {
			c.blockingKinds[k] = true
		}
	}
}

// NewConfig builds a validated configuration for the named dialect.
// Unknown dialects and out-of-range retry counts fail fast rather than
// being clamped.
func NewConfig(dialectName string, opts ...Option) (Config, error) {
	d, ok := dialect.Get(dialectName)
	if !ok {
		return Config{}, core.Errorf(core.ErrConfig, "unknown dialect %q (supported: %v)", dialectName, dialect.Names())
	}

	cfg := Config{
		dialect:         d,
		retries:         DefaultRetries,
		renderTemplates: true,
		blockingKinds: map[core.WarningKind]bool{
			core.WarnDangerousStatement: true,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.retries < MinRetries || cfg.retries > MaxRetries {
		return Config{}, core.Errorf(core.ErrConfig, "retries must be in [%d,%d], got %d", MinRetries, MaxRetries, cfg.retries)
	}

	return cfg, nil
}

// Dialect returns the configured dialect.
func (c Config) Dialect() *dialect.Dialect { return c.dialect }

// Strict reports whether strict mode is enabled.
func (c Config) Strict() bool { return c.strict }

// Retries returns the configured rule-fetch retry count.
func (c Config) Retries() int { return c.retries }

// RenderTemplates reports whether template rendering is enabled.
func (c Config) RenderTemplates() bool { return c.renderTemplates }

func (c Config) blocks(kind core.WarningKind) bool {
	return c.strict && c.blockingKinds[kind]
}
