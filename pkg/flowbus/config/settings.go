package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/randalmurphal/flowbus/pkg/flowbus"
	"github.com/randalmurphal/flowbus/pkg/flowbus/history"
	"github.com/randalmurphal/flowbus/pkg/flowbus/observability"
	"github.com/randalmurphal/flowbus/pkg/flowbus/workflow"
)

// Setting keys.
const (
	KeyMaxHistorySize = "bus.max_history_size"
	KeyJournalPath    = "bus.journal_path"
	KeySuccessStates  = "workflow.success_states"
	KeyErrorStates    = "workflow.error_states"
	KeyMetrics        = "observability.metrics"
	KeyTracing        = "observability.tracing"
)

// Settings is the typed form of a flowbus configuration file.
type Settings struct {
	// MaxHistorySize bounds the in-memory history. 0 disables history.
	MaxHistorySize int

	// JournalPath enables the SQLite diagnostic journal when set.
	JournalPath string

	// SuccessStates and ErrorStates classify workflow state changes.
	SuccessStates []string
	ErrorStates   []string

	// Metrics and Tracing select the OpenTelemetry implementations.
	Metrics bool
	Tracing bool
}

// DefaultSettings returns settings matching the package defaults.
func DefaultSettings() Settings {
	wf := workflow.DefaultConfig()
	return Settings{
		MaxHistorySize: flowbus.DefaultMaxHistorySize,
		SuccessStates:  wf.SuccessStates,
		ErrorStates:    wf.ErrorStates,
	}
}

// Load reads path and converts it to Settings.
func Load(path string) (Settings, error) {
	vals, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return FromValues(vals)
}

// FromValues converts raw values to Settings. Missing keys keep their
// defaults; present keys of the wrong type are errors.
func FromValues(v Values) (Settings, error) {
	s := DefaultSettings()
	var errs []error

	if n, ok, err := v.LookupInt(KeyMaxHistorySize); err != nil {
		errs = append(errs, err)
	} else if ok {
		if n < 0 {
			errs = append(errs, fmt.Errorf("config %s: must not be negative, got %d", KeyMaxHistorySize, n))
		}
		s.MaxHistorySize = n
	}

	if p, ok, err := v.LookupString(KeyJournalPath); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.JournalPath = p
	}

	if states, ok, err := v.LookupStringSlice(KeySuccessStates); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.SuccessStates = states
	}

	if states, ok, err := v.LookupStringSlice(KeyErrorStates); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.ErrorStates = states
	}

	if b, ok, err := v.LookupBool(KeyMetrics); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.Metrics = b
	}

	if b, ok, err := v.LookupBool(KeyTracing); err != nil {
		errs = append(errs, err)
	} else if ok {
		s.Tracing = b
	}

	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// BusOptions returns bus options for these settings. When JournalPath is
// set the journal is opened here and closed by Bus.Close.
func (s Settings) BusOptions() ([]flowbus.Option, error) {
	opts := []flowbus.Option{flowbus.WithMaxHistorySize(s.MaxHistorySize)}

	if s.Metrics {
		opts = append(opts, flowbus.WithMetrics(observability.NewMetricsRecorder()))
	}
	if s.Tracing {
		opts = append(opts, flowbus.WithSpanManager(observability.NewSpanManager()))
	}
	if s.JournalPath != "" {
		journal, err := history.NewSQLiteJournal(s.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		opts = append(opts, flowbus.WithJournal(journal))
	}
	return opts, nil
}

// WorkflowOptions returns workflow protocol options for these settings.
func (s Settings) WorkflowOptions() []workflow.Option {
	opts := []workflow.Option{
		workflow.WithConfig(workflow.Config{
			SuccessStates: slices.Clone(s.SuccessStates),
			ErrorStates:   slices.Clone(s.ErrorStates),
		}),
	}
	if s.Metrics {
		opts = append(opts, workflow.WithMetrics(observability.NewMetricsRecorder()))
	}
	if s.Tracing {
		opts = append(opts, workflow.WithSpanManager(observability.NewSpanManager()))
	}
	return opts
}
