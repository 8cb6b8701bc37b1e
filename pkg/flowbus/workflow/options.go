package workflow

import (
	"log/slog"
	"slices"

	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
)

// Config controls how STATE.CHANGE values are classified.
type Config struct {
	// SuccessStates end an execution successfully.
	// Default: ["success"]
	SuccessStates []string

	// ErrorStates end an execution with an error.
	// Default: ["error", "failure"]
	ErrorStates []string
}

// DefaultConfig returns the default classification.
func DefaultConfig() Config {
	return Config{
		SuccessStates: []string{"success"},
		ErrorStates:   []string{"error", "failure"},
	}
}

// isSuccess reports whether state is a success state. Comparison is exact.
func (c Config) isSuccess(state string) bool {
	return slices.Contains(c.SuccessStates, state)
}

// isError reports whether state is an error state. Comparison is exact.
func (c Config) isError(state string) bool {
	return slices.Contains(c.ErrorStates, state)
}

func (c Config) clone() Config {
	return Config{
		SuccessStates: slices.Clone(c.SuccessStates),
		ErrorStates:   slices.Clone(c.ErrorStates),
	}
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithConfig sets the classification used by every execution.
func WithConfig(cfg Config) Option {
	return func(p *Protocol) {
		p.config = cfg.clone()
	}
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Protocol) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(p *Protocol) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used for execution spans.
func WithSpanManager(s observability.SpanManager) Option {
	return func(p *Protocol) {
		if s != nil {
			p.spans = s
		}
	}
}

// ExecOption configures a single execution.
type ExecOption func(*Config)

// WithSuccessStates replaces the success states for one execution.
func WithSuccessStates(states ...string) ExecOption {
	return func(c *Config) {
		c.SuccessStates = slices.Clone(states)
	}
}

// WithErrorStates replaces the error states for one execution.
func WithErrorStates(states ...string) ExecOption {
	return func(c *Config) {
		c.ErrorStates = slices.Clone(states)
	}
}
