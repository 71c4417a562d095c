// Package metrics exposes Prometheus collectors for the ledger services.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "cashon"

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wallet_operation_duration_seconds",
			Help:      "Wallet operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	operationResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_operation_results_total",
			Help:      "Wallet operation outcomes",
		},
		[]string{"operation", "result"},
	)

	ledgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Committed ledger entries",
		},
		[]string{"type", "source"},
	)

	ledgerVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_volume_total",
			Help:      "Committed ledger volume in major currency units",
		},
		[]string{"type", "source"},
	)

	operationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_errors_total",
			Help:      "Wallet operation errors by code",
		},
		[]string{"operation", "code"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_cache_lookups_total",
			Help:      "Wallet cache hits and misses",
		},
		[]string{"result"},
	)

	withdrawalOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawal_outcomes_total",
			Help:      "Withdrawal processing outcomes",
		},
		[]string{"outcome"},
	)

	depositsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_webhooks_total",
			Help:      "Deposit webhook deliveries by result",
		},
		[]string{"result"},
	)

	interestAccrued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interest_accrued_total",
			Help:      "Interest accrued in major currency units",
		},
		[]string{"frequency"},
	)

	queueJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_jobs_total",
			Help:      "Background jobs by name and result",
		},
		[]string{"job", "result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)
)

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		operationDuration,
		operationResults,
		ledgerEntries,
		ledgerVolume,
		operationErrors,
		cacheLookups,
		withdrawalOutcomes,
		depositsIngested,
		interestAccrued,
		queueJobs,
		eventsPublished,
	)
}

// Registry returns the prometheus registry
func Registry() *prometheus.Registry {
	return registry
}

// Handler returns a Fiber handler for the /metrics endpoint
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}

// Middleware records request counts and latency per route.
func Middleware(skipPaths ...string) fiber.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(c.Response().StatusCode())).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordWithdrawalOutcome(outcome string) {
	withdrawalOutcomes.WithLabelValues(outcome).Inc()
}

func RecordDeposit(result string) {
	depositsIngested.WithLabelValues(result).Inc()
}

func RecordInterestAccrued(frequency string, amount decimal.Decimal) {
	interestAccrued.WithLabelValues(frequency).Add(amount.InexactFloat64())
}

func RecordQueueJob(job, result string) {
	queueJobs.WithLabelValues(job, result).Inc()
}

func RecordEventPublished(topic, result string) {
	eventsPublished.WithLabelValues(topic, result).Inc()
}
