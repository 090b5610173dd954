package prometheus

import (
	"errors"
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrNilSource is returned when no metrics source is supplied.
var ErrNilSource = errors.New("nil metrics source")

// MetricsSource is satisfied by [goAuthClient.Coordinator].
type MetricsSource interface {
	MetricsSnapshot() goAuthClient.MetricsSnapshot
	AuditDropped() uint64
}

type counterDesc struct {
	id   goAuthClient.MetricID
	desc *prom.Desc
}

// Collector reads a fresh snapshot on every scrape. With metrics disabled and
// no dropped audit events it yields no samples.
type Collector struct {
	source       MetricsSource
	counters     []counterDesc
	histograms   []counterDesc
	auditDropped *prom.Desc
}

// NewCollector describes every counter and histogram in internaldefs.
func NewCollector(source MetricsSource) *Collector {
	c := &Collector{
		source:       source,
		auditDropped: prom.NewDesc(internaldefs.AuditDroppedName, "Dropped audit events due to dispatcher backpressure.", nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prom.Desc) {
	for _, d := range c.counters {
		ch <- d.desc
	}
	for _, d := range c.histograms {
		ch <- d.desc
	}
	ch <- c.auditDropped
}

func (c *Collector) Collect(ch chan<- prom.Metric) {
	if c == nil || c.source == nil {
		return
	}

	snapshot := c.source.MetricsSnapshot()
	dropped := c.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return
	}

	for _, d := range c.counters {
		ch <- prom.MustNewConstMetric(d.desc, prom.CounterValue, float64(snapshot.Counters[d.id]))
	}

	for _, d := range c.histograms {
		raw, ok := snapshot.Histograms[d.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[i]
		}
		// Snapshots carry no sum.
		ch <- prom.MustNewConstHistogram(d.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prom.MustNewConstMetric(c.auditDropped, prom.CounterValue, float64(dropped))
}

// PrometheusExporter serves a [Collector] from its own registry.
type PrometheusExporter struct {
	collector *Collector
	registry  *prom.Registry
}

// NewPrometheusExporter creates an exporter reading from coordinator.
func NewPrometheusExporter(coordinator *goAuthClient.Coordinator) (*PrometheusExporter, error) {
	if coordinator == nil {
		return nil, ErrNilSource
	}
	return NewPrometheusExporterFromSource(coordinator)
}

// NewPrometheusExporterFromSource creates an exporter reading from source.
func NewPrometheusExporterFromSource(source MetricsSource) (*PrometheusExporter, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	collector := NewCollector(source)
	registry := prom.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}
	return &PrometheusExporter{collector: collector, registry: registry}, nil
}

// Collector returns the underlying collector for registration elsewhere.
func (p *PrometheusExporter) Collector() *Collector {
	return p.collector
}

// Registry returns the private registry the collector is registered in.
func (p *PrometheusExporter) Registry() *prom.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
