// Package metrics defines the Prometheus instruments for the coordinator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatcher metrics
var (
	// CommandsDispatchedTotal tracks decoded commands routed to a handler
	CommandsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordinator_commands_dispatched_total",
			Help: "Total bus commands decoded and dispatched, by command",
		},
		[]string{"command"},
	)

	// CommandsUnknownTotal tracks messages with an unrecognized command name
	CommandsUnknownTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coordinator_commands_unknown_total",
			Help: "Total bus messages ignored due to unknown command name",
		},
	)
)

// Bus metrics
var (
	// BusPublishedTotal tracks messages published on the broadcast bus
	BusPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_messages_published_total",
			Help: "Total messages published on the broadcast bus, by command",
		},
		[]string{"command"},
	)

	// BusSubscribers tracks the current number of bus subscribers
	BusSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bus_subscribers",
			Help: "Current number of broadcast bus subscribers",
		},
	)
)

// Activity monitor metrics
var (
	// IdleTransitionsTotal tracks idle state transitions by target state
	IdleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_idle_transitions_total",
			Help: "Idle state machine transitions, by target state (idle/active)",
		},
		[]string{"state"},
	)

	// ActivityEventsDebouncedTotal tracks input events dropped by the debounce window
	ActivityEventsDebouncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_debounced_total",
			Help: "Input events dropped inside the debounce window",
		},
	)
)

// Teardown metrics
var (
	// TeardownsTotal tracks logout sequences by result
	TeardownsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teardown_sequences_total",
			Help: "Logout teardown sequences, by result (ok/partial)",
		},
		[]string{"result"},
	)

	// TeardownStoreFailuresTotal tracks individual store-clear failures
	TeardownStoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teardown_store_failures_total",
			Help: "Per-store clear failures during teardown, by store",
		},
		[]string{"store"},
	)
)

// UI metrics
var (
	// OverlaysOpenedTotal tracks overlay open requests by kind
	OverlaysOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlays_opened_total",
			Help: "Overlay open requests, by kind",
		},
		[]string{"kind"},
	)

	// OverlaysReplacedTotal tracks opens that had to close a previous overlay first
	OverlaysReplacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overlays_replaced_total",
			Help: "Overlay opens that closed a previously active overlay",
		},
	)

	// ToastsShownTotal tracks normalized toasts handed to the display layer
	ToastsShownTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toasts_shown_total",
			Help: "Normalized toasts handed to the display layer, by type",
		},
		[]string{"type"},
	)
)
