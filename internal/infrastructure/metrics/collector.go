// Package metrics exposes store activity as Prometheus metrics.
package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/services"
)

// Collector holds the Prometheus metrics for one store.
type Collector struct {
	registry *prometheus.Registry

	Mutations     *prometheus.CounterVec
	ActivityItems prometheus.GaugeFunc
	Exports       *prometheus.CounterVec
	ExportBytes   prometheus.Counter
}

var _ services.ExportObserver = (*Collector)(nil)

// NewCollector creates a collector on its own registry. activityLen reports
// the current activity log size and may be nil.
func NewCollector(namespace string, activityLen func() int) *Collector {
	registry := prometheus.NewRegistry()

	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Total number of committed graph mutations",
		},
		[]string{"kind"},
	)

	if activityLen == nil {
		activityLen = func() int { return 0 }
	}
	activityItems := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_items",
			Help:      "Number of items retained in the activity log",
		},
		func() float64 { return float64(activityLen()) },
	)

	exports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of successful exports",
		},
		[]string{"format"},
	)

	exportBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_bytes_total",
			Help:      "Total bytes produced by exports",
		},
	)

	registry.MustRegister(mutations, activityItems, exports, exportBytes)

	return &Collector{
		registry:      registry,
		Mutations:     mutations,
		ActivityItems: activityItems,
		Exports:       exports,
		ExportBytes:   exportBytes,
	}
}

// Attach creates a collector for store and subscribes it to store events.
func Attach(namespace string, store *services.Store) (*Collector, func()) {
	c := NewCollector(namespace, store.Activity().Len)
	return c, store.Subscribe(c.Observe)
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe counts one committed mutation.
func (c *Collector) Observe(ev services.Event) {
	c.Mutations.WithLabelValues(string(ev.Kind)).Inc()
}

// ObserveExport counts one successful export of size bytes.
func (c *Collector) ObserveExport(format entities.ExportFormat, size int) {
	c.Exports.WithLabelValues(string(format)).Inc()
	c.ExportBytes.Add(float64(size))
}

// Sample is one gathered metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Samples gathers every non-zero metric value, sorted by name then labels.
func (c *Collector) Samples() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			if value == 0 {
				continue
			}

			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: strings.Join(pairs, ","),
				Value:  value,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}
