package healing

import (
	"github.com/devicelab-dev/selfheal/pkg/config"
	"go.uber.org/zap"
)

// Options controls how the Driver heals failed lookups.
type Options struct {
	// RecoverAllErrors treats every candidate failure as "try next".
	// By default only element-not-found continues the loop.
	RecoverAllErrors bool

	// HealPlural applies healing to FindElements when the primary result is empty.
	HealPlural bool

	// Logger receives healing events. Nil means the global logger.
	Logger *zap.Logger

	// Observer, if set, is called after every lookup.
	Observer Observer
}

// DefaultOptions returns narrow error recovery with plural healing enabled.
func DefaultOptions() Options {
	return Options{HealPlural: true}
}

// Option modifies Options.
type Option func(*Options)

// WithLogger sets the logger for healing events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithObserver registers fn to receive an Event after every lookup.
func WithObserver(fn Observer) Option {
	return func(o *Options) { o.Observer = fn }
}

// WithRecoverAllErrors widens candidate recovery to every error kind.
func WithRecoverAllErrors(enabled bool) Option {
	return func(o *Options) { o.RecoverAllErrors = enabled }
}

// WithPluralHealing toggles healing for FindElements.
func WithPluralHealing(enabled bool) Option {
	return func(o *Options) { o.HealPlural = enabled }
}

// FromConfig maps the healing section of the config file to options.
func FromConfig(cfg config.HealingConfig) []Option {
	return []Option{
		WithRecoverAllErrors(cfg.RecoverAllErrors),
		WithPluralHealing(cfg.HealPlural),
	}
}
