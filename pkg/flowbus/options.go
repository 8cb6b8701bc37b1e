package flowbus

import (
	"log/slog"

	"github.com/randalmurphal/flowbus/pkg/flowbus/history"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
	"github.com/randalmurphal/flowbus/pkg/flowbus/topic"
)

// DefaultMaxHistorySize is the history capacity used when none is configured.
const DefaultMaxHistorySize = 100

// busConfig holds bus construction settings.
type busConfig struct {
	maxHistorySize int
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	journal        history.Journal
	onFault        func(Delivery, error)
}

func defaultBusConfig() busConfig {
	return busConfig{
		maxHistorySize: DefaultMaxHistorySize,
		logger:         slog.Default(),
		metrics:        observability.NoopMetrics{},
		spans:          observability.NoopSpanManager{},
		journal:        history.NoopJournal{},
	}
}

// Option configures a Bus.
type Option func(*busConfig)

// WithMaxHistorySize sets how many events the history ring retains.
// Default: 100. Zero disables history.
func WithMaxHistorySize(n int) Option {
	return func(c *busConfig) {
		if n >= 0 {
			c.maxHistorySize = n
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *busConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *busConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used for publish spans.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *busConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithJournal mirrors every recorded event into j. The bus closes j on Close.
func WithJournal(j history.Journal) Option {
	return func(c *busConfig) {
		if j != nil {
			c.journal = j
		}
	}
}

// WithFaultHandler registers a hook called after a listener returns an error
// or panics. The hook observes faults; it cannot propagate them to publishers.
func WithFaultHandler(fn func(d Delivery, err error)) Option {
	return func(c *busConfig) {
		c.onFault = fn
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscription)

// WithClosure attaches caller state handed back on every delivery.
func WithClosure(closure any) SubscribeOption {
	return func(s *subscription) {
		s.closure = closure
	}
}

// WithLiteralPattern makes the subscription match its pattern exactly,
// treating '*' as an ordinary character.
func WithLiteralPattern() SubscribeOption {
	return func(s *subscription) {
		s.pattern = topic.Literal(s.pattern.String())
	}
}

// WithCustomData attaches arbitrary data handed back on every delivery.
func WithCustomData(data any) SubscribeOption {
	return func(s *subscription) {
		s.customData = data
	}
}

// publishConfig holds per-publish settings.
type publishConfig struct {
	metadata map[string]any
}

// PublishOption configures a single publish.
type PublishOption func(*publishConfig)

// WithMetadata attaches metadata to the published event.
// Repeated calls merge, later keys win.
func WithMetadata(md map[string]any) PublishOption {
	return func(c *publishConfig) {
		if len(md) == 0 {
			return
		}
		if c.metadata == nil {
			c.metadata = make(map[string]any, len(md))
		}
		for k, v := range md {
			c.metadata[k] = v
		}
	}
}
