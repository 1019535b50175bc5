package metrics

import (
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric types accepted by Register and RegisterWithLabels.
const (
	TypeCounter   = "Counter"
	TypeGauge     = "Gauge"
	TypeHistogram = "Histogram"
)

// PrometheusMetrics implements Metrics on top of a private prometheus.Registry.
// Plain metrics and labeled vectors are kept apart, so a name is looked up in
// the map matching the call used to record it.
type PrometheusMetrics struct {
	mu            sync.RWMutex
	registry      *prometheus.Registry
	counters      map[string]prometheus.Counter
	counterVecs   map[string]*prometheus.CounterVec
	gauges        map[string]prometheus.Gauge
	gaugeVecs     map[string]*prometheus.GaugeVec
	histograms    map[string]prometheus.Histogram
	histogramVecs map[string]*prometheus.HistogramVec
	customBuckets map[string][]float64
}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		registry:      prometheus.NewRegistry(),
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		gaugeVecs:     make(map[string]*prometheus.GaugeVec),
		histograms:    make(map[string]prometheus.Histogram),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		customBuckets: make(map[string][]float64),
	}
}

// SetCustomBuckets sets the bucket bounds used when the histogram called name
// is registered later. Histograms without custom buckets get prometheus.DefBuckets.
func (p *PrometheusMetrics) SetCustomBuckets(name string, buckets []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customBuckets[name] = buckets
}

func (p *PrometheusMetrics) bucketsFor(name string) []float64 {
	if b, ok := p.customBuckets[name]; ok {
		return b
	}
	return prometheus.DefBuckets
}

// Register adds an unlabeled metric of the given type. Registering a name twice
// on the same instance panics, as prometheus.MustRegister does.
func (p *PrometheusMetrics) Register(name, metricType, help string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch metricType {
	case TypeCounter:
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		p.registry.MustRegister(c)
		p.counters[name] = c
	case TypeGauge:
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		p.registry.MustRegister(g)
		p.gauges[name] = g
	case TypeHistogram:
		h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.bucketsFor(name)})
		p.registry.MustRegister(h)
		p.histograms[name] = h
	default:
		log.Printf("Error: Attempted to register unknown metric type '%s' with name '%s'", metricType, name)
	}
}

// Record adds value to a counter, sets a gauge to value or observes value on a
// histogram. Unknown names are ignored.
func (p *PrometheusMetrics) Record(name string, value float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.counters[name]; ok {
		c.Add(value)
	} else if g, ok := p.gauges[name]; ok {
		g.Set(value)
	} else if h, ok := p.histograms[name]; ok {
		h.Observe(value)
	}
}

// RegisterWithLabels is Register for metrics partitioned by the given label keys.
func (p *PrometheusMetrics) RegisterWithLabels(name, metricType, help string, labels []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch metricType {
	case TypeCounter:
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(cv)
		p.counterVecs[name] = cv
	case TypeGauge:
		gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(gv)
		p.gaugeVecs[name] = gv
	case TypeHistogram:
		hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.bucketsFor(name)}, labels)
		p.registry.MustRegister(hv)
		p.histogramVecs[name] = hv
	default:
		log.Printf("Error: Attempted to register unknown metric type '%s' with name '%s'", metricType, name)
	}
}

// RecordWithLabels is Record for labeled metrics. labelValues must follow the
// order of the label keys given at registration.
func (p *PrometheusMetrics) RecordWithLabels(name string, value float64, labelValues ...string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cv, ok := p.counterVecs[name]; ok {
		cv.WithLabelValues(labelValues...).Add(value)
	} else if gv, ok := p.gaugeVecs[name]; ok {
		gv.WithLabelValues(labelValues...).Set(value)
	} else if hv, ok := p.histogramVecs[name]; ok {
		hv.WithLabelValues(labelValues...).Observe(value)
	}
}

// Gatherer exposes the registry backing this instance.
func (p *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Handler serves this instance's metrics in the Prometheus exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on addr. The listener is bound before
// returning so bind errors reach the caller; the caller closes the server.
func (p *PrometheusMetrics) StartMetricsServer(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
	return srv, nil
}
