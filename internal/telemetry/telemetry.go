// Package telemetry records structured events for each major pipeline
// transition and exposes prometheus metrics. A nil *Telemetry is valid and
// records nothing, so its absence never affects correctness.
package telemetry

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry provides monitoring for the question pipeline.
type Telemetry struct {
	logger       *log.Logger
	periodicLogs bool

	mu      sync.RWMutex
	metrics Metrics

	requests     *prometheus.CounterVec
	retries      prometheus.Counter
	fallbacks    prometheus.Counter
	grounding    *prometheus.CounterVec
	requestTimes prometheus.Histogram
}

// Metrics holds aggregate pipeline counters.
type Metrics struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	Retries            int64
	Fallbacks          int64
	GroundingUsed      int64
	GroundingSkipped   int64
	TotalDuration      time.Duration
}

// RequestEvent captures one orchestrated question end to end.
type RequestEvent struct {
	ID            string
	Query         string
	StartTime     time.Time
	EndTime       time.Time
	Success       bool
	Error         string
	Attempts      int
	UsedFallback  bool
	UsedGrounding bool
	MatchedGames  int
}

// NewTelemetry builds a telemetry instance and registers its collectors.
func NewTelemetry(periodicLogs bool) *Telemetry {
	t := &Telemetry{
		logger:       log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		periodicLogs: periodicLogs,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfside_requests_total",
			Help: "Orchestrated question requests by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shelfside_answer_retries_total",
			Help: "Answer attempts rejected by the quality gate and retried.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shelfside_fallback_answers_total",
			Help: "Requests answered by the deterministic fallback.",
		}),
		grounding: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelfside_grounding_total",
			Help: "Grounding lookups by whether criteria triggered one.",
		}, []string{"used"}),
		requestTimes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shelfside_request_duration_seconds",
			Help:    "End-to-end orchestration latency.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{t.requests, t.retries, t.fallbacks, t.grounding, t.requestTimes} {
		if err := prometheus.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				t.logger.Printf("collector registration failed: %v", err)
			}
		}
	}
	return t
}

// RecordRequest records a completed request event.
func (t *Telemetry) RecordRequest(evt RequestEvent) {
	if t == nil {
		return
	}
	duration := evt.EndTime.Sub(evt.StartTime)

	t.mu.Lock()
	t.metrics.TotalRequests++
	if evt.Success {
		t.metrics.SuccessfulRequests++
	} else {
		t.metrics.FailedRequests++
	}
	if evt.UsedFallback {
		t.metrics.Fallbacks++
	}
	t.metrics.TotalDuration += duration
	t.mu.Unlock()

	outcome := "ok"
	if !evt.Success {
		outcome = "error"
	} else if evt.UsedFallback {
		outcome = "fallback"
	}
	t.requests.WithLabelValues(outcome).Inc()
	if evt.UsedFallback {
		t.fallbacks.Inc()
	}
	t.requestTimes.Observe(duration.Seconds())

	if t.periodicLogs {
		t.logger.Printf("request %s: outcome=%s attempts=%d grounding=%v matches=%d in %v",
			evt.ID, outcome, evt.Attempts, evt.UsedGrounding, evt.MatchedGames, duration)
	}
}

// RecordRetry records one low-quality answer retry.
func (t *Telemetry) RecordRetry() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.metrics.Retries++
	t.mu.Unlock()
	t.retries.Inc()
}

// RecordGrounding records whether extracted criteria triggered a lookup.
func (t *Telemetry) RecordGrounding(used bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if used {
		t.metrics.GroundingUsed++
	} else {
		t.metrics.GroundingSkipped++
	}
	t.mu.Unlock()
	label := "false"
	if used {
		label = "true"
	}
	t.grounding.WithLabelValues(label).Inc()
}

// GetMetrics returns a snapshot of the aggregate counters.
func (t *Telemetry) GetMetrics() Metrics {
	if t == nil {
		return Metrics{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}
