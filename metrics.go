package restis

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a single attempt.
const (
	outcomeSuccess        = "success"
	outcomeCommandError   = "command_error"
	outcomeTransportError = "transport_error"
	outcomeAborted        = "aborted"
)

type metrics struct {
	requests *prometheus.CounterVec
	retries  prometheus.Counter
	duration *prometheus.HistogramVec
}

// Metrics are registered with reg; a nil registerer leaves them
// unregistered. Clients sharing a registerer share its collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restis",
		Name:      "requests_total",
		Help:      "Total number of requests sent to the proxy, by path and outcome.",
	}, []string{"path", "outcome"})

	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restis",
		Name:      "retries_total",
		Help:      "Total number of retried requests.",
	})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "restis",
		Name:      "request_duration_seconds",
		Help:      "Time spent on a single request to the proxy.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	return &metrics{
		requests: registerCollector(reg, requests).(*prometheus.CounterVec),
		retries:  registerCollector(reg, retries).(prometheus.Counter),
		duration: registerCollector(reg, duration).(*prometheus.HistogramVec),
	}
}

// Register c with reg, returning the collector already registered under
// the same descriptor when there is one.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if reg == nil {
		return c
	}

	if err := reg.Register(c); err != nil {
		var existing prometheus.AlreadyRegisteredError
		if errors.As(err, &existing) {
			return existing.ExistingCollector
		}

		panic(err)
	}

	return c
}
