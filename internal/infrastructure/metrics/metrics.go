package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
)

// Metrics holds all Prometheus metrics and implements usecase.Recorder.
type Metrics struct {
	// Posting metrics
	JournalsPosted  *prometheus.CounterVec
	PostingDuration prometheus.Histogram
	PostedAmount    *prometheus.CounterVec
	PostingFailures *prometheus.CounterVec

	// Governance metrics
	Verdicts   *prometheus.CounterVec
	Rejections *prometheus.CounterVec

	// Vault metrics
	VaultSignatures *prometheus.CounterVec

	// Escrow metrics
	EscrowReleases      prometheus.Counter
	EscrowReleasedTotal prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Posting metrics
		JournalsPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_journals_posted_total",
				Help: "Total journal entries posted by event type",
			},
			[]string{"event_type"},
		),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "govledger_posting_duration_seconds",
			Help:    "Duration of the posting transaction",
			Buckets: prometheus.DefBuckets,
		}),
		PostedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_posted_amount_total",
				Help: "Sum of posted entry totals in minor units by event type",
			},
			[]string{"event_type"},
		),
		PostingFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_posting_failures_total",
				Help: "Total failed postings by reason",
			},
			[]string{"reason"},
		),

		// Governance metrics
		Verdicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_governance_verdicts_total",
				Help: "Total gate chain verdicts by status",
			},
			[]string{"status"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_governance_rejections_total",
				Help: "Total rejection reasons by gate and code",
			},
			[]string{"gate", "code"},
		),

		// Vault metrics
		VaultSignatures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_vault_signatures_total",
				Help: "Total accepted vault signatures",
			},
			[]string{"executed"},
		),

		// Escrow metrics
		EscrowReleases: factory.NewCounter(prometheus.CounterOpts{
			Name: "govledger_escrow_releases_total",
			Help: "Total escrow milestones released",
		}),
		EscrowReleasedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "govledger_escrow_released_amount_total",
			Help: "Sum of released escrow allocations in minor units",
		}),

		// Outbox metrics
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "govledger_outbox_published_total",
			Help: "Total outbox events relayed to the journal stream",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "govledger_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "govledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "govledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "govledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),
	}
}

// JournalPosted records a committed posting.
func (m *Metrics) JournalPosted(eventType domain.EventType, amount decimal.Decimal, took time.Duration) {
	m.JournalsPosted.WithLabelValues(string(eventType)).Inc()
	m.PostedAmount.WithLabelValues(string(eventType)).Add(amount.InexactFloat64())
	m.PostingDuration.Observe(took.Seconds())
}

// PostingFailed records a rejected or failed posting.
func (m *Metrics) PostingFailed(reason string) {
	m.PostingFailures.WithLabelValues(reason).Inc()
}

// GovernanceVerdict records a gate chain verdict and each rejection reason.
func (m *Metrics) GovernanceVerdict(verdict domain.Verdict) {
	m.Verdicts.WithLabelValues(string(verdict.Status)).Inc()

	for _, r := range verdict.Reasons {
		m.Rejections.WithLabelValues(string(r.Gate), r.Code).Inc()
	}
}

// VaultSigned records an accepted signature.
func (m *Metrics) VaultSigned(executed bool) {
	m.VaultSignatures.WithLabelValues(strconv.FormatBool(executed)).Inc()
}

// EscrowReleased records a released milestone.
func (m *Metrics) EscrowReleased(amount decimal.Decimal) {
	m.EscrowReleases.Inc()
	m.EscrowReleasedTotal.Add(amount.InexactFloat64())
}

// OutboxEventPublished counts an event relayed to the journal stream.
func (m *Metrics) OutboxEventPublished() {
	m.OutboxPublished.Inc()
}

// OutboxEventFailed counts a failed relay attempt.
func (m *Metrics) OutboxEventFailed() {
	m.OutboxFailures.Inc()
}
