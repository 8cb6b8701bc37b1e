/*
Package config loads flowbus settings from YAML or JSON files.

# File Layout

	bus:
	  max_history_size: 200
	  journal_path: /var/lib/app/events.db
	workflow:
	  success_states: [success, done]
	  error_states: [error, failure]
	observability:
	  metrics: true
	  tracing: true

Every key is optional. Missing keys keep their defaults. $VAR and ${VAR}
references are expanded from the environment when a file is read.

# Usage

	settings, err := config.Load("flowbus.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	busOpts, err := settings.BusOptions()
	if err != nil {
	    log.Fatal(err)
	}
	bus := flowbus.New(append(busOpts, flowbus.WithLogger(logger))...)
	defer bus.Close()

	proto := workflow.New(bus, settings.WorkflowOptions()...)

# Raw Values

Values gives typed access to a decoded document by dotted path:

	vals, _ := config.FromFile("flowbus.yaml")
	size := vals.Int("bus.max_history_size", 100)

Accessors return the default when the key is missing or has another type.
The Lookup variants report type mismatches instead.
*/
package config
