// Package metrics exposes the wallet's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
	OutcomeDup      = "duplicate"
)

// Recorder is what the ledger services report to.
type Recorder interface {
	ObserveTransfer(outcome string, duration time.Duration)
	IncTransferRetry()
	IncFundingEvent(outcome string)
	IncLedgerEntry(category, direction string)
	IncOutboxProjection(outcome string)
	SetBreakerState(name string, state float64)
}

// Collector implements Recorder on Prometheus vectors.
type Collector struct {
	transfers        *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
	transferRetries  prometheus.Counter
	fundingEvents    *prometheus.CounterVec
	ledgerEntries    *prometheus.CounterVec
	outboxProjection *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

func NewCollector(namespace string) *Collector {
	return &Collector{
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Peer-to-peer transfers by outcome",
			},
			[]string{"outcome"},
		),
		transferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Transfer latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		transferRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfer_retries_total",
				Help:      "Transfer units of work restarted after a serialization conflict",
			},
		),
		fundingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "funding_events_total",
				Help:      "Provider funding events by outcome",
			},
			[]string{"outcome"},
		),
		ledgerEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_entries_total",
				Help:      "Committed ledger entries by category and direction",
			},
			[]string{"category", "direction"},
		),
		outboxProjection: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_projections_total",
				Help:      "Outbox messages projected into the read model by outcome",
			},
			[]string{"outcome"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Circuit breaker state per dependency (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.transfers,
		c.transferDuration,
		c.transferRetries,
		c.fundingEvents,
		c.ledgerEntries,
		c.outboxProjection,
		c.breakerState,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) ObserveTransfer(outcome string, duration time.Duration) {
	c.transfers.WithLabelValues(outcome).Inc()
	c.transferDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (c *Collector) IncTransferRetry() {
	c.transferRetries.Inc()
}

func (c *Collector) IncFundingEvent(outcome string) {
	c.fundingEvents.WithLabelValues(outcome).Inc()
}

func (c *Collector) IncLedgerEntry(category, direction string) {
	c.ledgerEntries.WithLabelValues(category, direction).Inc()
}

func (c *Collector) IncOutboxProjection(outcome string) {
	c.outboxProjection.WithLabelValues(outcome).Inc()
}

func (c *Collector) SetBreakerState(name string, state float64) {
	c.breakerState.WithLabelValues(name).Set(state)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveTransfer(string, time.Duration) {}
func (Nop) IncTransferRetry()                     {}
func (Nop) IncFundingEvent(string)                {}
func (Nop) IncLedgerEntry(string, string)         {}
func (Nop) IncOutboxProjection(string)            {}
func (Nop) SetBreakerState(string, float64)       {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
