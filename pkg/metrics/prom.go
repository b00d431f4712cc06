package metrics

import (
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prom implements Collector on a dedicated Prometheus registry. Metric
// vectors are registered lazily on first observation; the label-name set
// of a metric is fixed by that first observation.
type Prom struct {
	reg *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func NewProm() *Prom {
	return &Prom{
		reg:        prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Prom) IncCounter(name string, labels map[string]string, delta float64) {
	p.mu.Lock()
	c, ok := p.counters[name]
	if !ok {
		c = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames(labels))
		p.reg.MustRegister(c)
		p.counters[name] = c
	}
	p.mu.Unlock()

	c.With(labels).Add(delta)
}

func (p *Prom) SetGauge(name string, labels map[string]string, value float64) {
	p.mu.Lock()
	g, ok := p.gauges[name]
	if !ok {
		g = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labelNames(labels))
		p.reg.MustRegister(g)
		p.gauges[name] = g
	}
	p.mu.Unlock()

	g.With(labels).Set(value)
}

func (p *Prom) ObserveHistogram(name string, labels map[string]string, value float64) {
	p.mu.Lock()
	h, ok := p.histograms[name]
	if !ok {
		h = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name}, labelNames(labels))
		p.reg.MustRegister(h)
		p.histograms[name] = h
	}
	p.mu.Unlock()

	h.With(labels).Observe(value)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
