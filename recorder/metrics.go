package recorder

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts Record outcomes. A nil *Metrics is valid and counts nothing.
type Metrics struct {
	recorded *prometheus.CounterVec
}

// NewMetrics registers the recorder counters with the registerer. If the counters are
// already registered (e.g. a second recorder in the same process) the existing collector is
// reused.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	recorded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uhppoted_errors_recorded_total",
			Help: "Total number of error reports processed, by outcome",
		},
		[]string{"outcome"},
	)

	if err := registerer.Register(recorded); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}

		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}

		recorded = existing
	}

	return &Metrics{
		recorded: recorded,
	}, nil
}

func (m *Metrics) observe(outcome Outcome, err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.recorded.WithLabelValues(string(Failed)).Inc()
	} else {
		m.recorded.WithLabelValues(string(outcome)).Inc()
	}
}
