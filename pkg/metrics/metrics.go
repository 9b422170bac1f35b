package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses (2s - 15s), chat completions live here ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// --- Extended range (15s - 120s) ---
	20000, 30000, 45000, 60000, 90000, 120000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	}
	return nil
}

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var MetricsWebhookEvents = &Metric{
	ID:          "whEvt",
	Name:        "stripe_webhook_events_total",
	Description: "Stripe webhook deliveries partitioned by event kind and reconciliation outcome.",
	Type:        "counter_vec",
	Args:        []string{"kind", "outcome"},
}

var (
	businessDur   = NewMetric(MetricsBusinessProcess, "rotbot").(*prometheus.HistogramVec)
	webhookEvents = NewMetric(MetricsWebhookEvents, "rotbot").(*prometheus.CounterVec)
)

func init() {
	MetricsBusinessProcess.MetricCollector = businessDur
	MetricsWebhookEvents.MetricCollector = webhookEvents
	prometheus.MustRegister(businessDur, webhookEvents)
}

// ObserveSince records the latency of a business step, e.g. ("llm", "chat").
func ObserveSince(typ, subtype string, start time.Time) {
	businessDur.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}

// CountWebhookEvent increments the webhook event counter.
func CountWebhookEvent(kind, outcome string) {
	webhookEvents.WithLabelValues(kind, outcome).Inc()
}

// MillisecondsSince returns elapsed milliseconds as a float.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)
