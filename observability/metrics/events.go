package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"creatorfund/core/events"
)

type eventMetrics struct {
	emitted *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

func eventCounters() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorfund",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Committed events segmented by event type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.emitted)
	})
	return eventRegistry
}

// EventCounter is an emitter that counts delivered events by type. Combine it
// with other emitters through events.Fanout.
type EventCounter struct{}

func (EventCounter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	eventType := strings.TrimSpace(evt.EventType())
	if eventType == "" {
		eventType = "unknown"
	}
	eventCounters().emitted.WithLabelValues(eventType).Inc()
}

// EmittedCount exposes the counter for eventType.
func EmittedCount(eventType string) prometheus.Counter {
	return eventCounters().emitted.WithLabelValues(eventType)
}
