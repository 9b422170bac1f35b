package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Standard HTTP metrics, adapted from github.com/zsais/go-gin-prometheus.
var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

const defaultMetricPath = "/metrics"

type Logger interface {
	Errorf(format string, v ...interface{})
}

// RequestCounterURLLabelMappingFn controls the cardinality of the "url" label.
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus contains the metrics gathered by the instance and its path
type Prometheus struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	MetricsPath             string
	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn

	registerer    prometheus.Registerer
	gatherer      prometheus.Gatherer
	listenAddress string
	logger        Logger
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn
	Logger                  Logger
	// Registry defaults to the process-wide default registry.
	Registry *prometheus.Registry
}

// NewPrometheus creates and registers the HTTP metrics.
func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsPath:             options.MetricsPath,
		ReqCntURLLabelMappingFn: options.ReqCntURLLabelMappingFn,
		logger:                  options.Logger,
		registerer:              prometheus.DefaultRegisterer,
		gatherer:                prometheus.DefaultGatherer,
	}
	if options.Registry != nil {
		p.registerer, p.gatherer = options.Registry, options.Registry
	}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.ReqCntURLLabelMappingFn == nil {
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return "unmatched"
		}
	}

	for _, def := range []*Metric{reqCnt, reqDur, resSz, reqSz} {
		collector := NewMetric(def, options.Subsystem)
		if err := p.registerer.Register(collector); err != nil && p.logger != nil {
			p.logger.Errorf("%s could not be registered in Prometheus, err=%v", def.Name, err)
		}
		switch def {
		case reqCnt:
			p.reqCnt = collector.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = collector.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = collector.(*prometheus.SummaryVec)
		case reqSz:
			p.reqSz = collector.(*prometheus.SummaryVec)
		}
	}
	return p
}

// SetListenAddress exposes metrics on a dedicated listener instead of the API engine.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
}

// Handler serves the gathered metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// Use adds the middleware to a gin engine and mounts the metrics path.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.listenAddress == "" {
		e.GET(p.MetricsPath, gin.WrapH(p.Handler()))
		return
	}
	r := gin.New()
	r.GET(p.MetricsPath, gin.WrapH(p.Handler()))
	go func() {
		if err := r.Run(p.listenAddress); err != nil && p.logger != nil {
			p.logger.Errorf("metrics server stopped: %v", err)
		}
	}()
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSize := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.ReqCntURLLabelMappingFn(c)
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		p.reqSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(reqSize))
		p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(c.Writer.Size()))
	}
}

func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}
	s += len(r.Method)
	s += len(r.Proto)
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	s += len(r.Host)
	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}
