// Package metrics exports a run's benchmark results as a Prometheus textfile
// for node_exporter's textfile collector.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/harness"
)

var labels = []string{"api1", "api2", "package", "scale", "method"}

// Registry builds a fresh registry holding the gauges for r.
func Registry(r harness.Report) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	timeGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "safe",
		Name:      "benchmark_time_seconds",
		Help:      "Mean wall-clock time of one call at a scale.",
	}, labels)
	memGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "safe",
		Name:      "benchmark_memory_megabytes",
		Help:      "Memory delta of one call at a scale.",
	}, labels)
	substitutable := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "safe",
		Name:      "pair_substitutable",
		Help:      "1 when both APIs agree at every tested scale.",
	}, []string{"api1", "api2", "package"})
	reg.MustRegister(timeGauge, memGauge, substitutable)

	p := r.Pair
	v := 0.0
	if r.Verdict.Substitutable && r.Error == "" {
		v = 1
	}
	substitutable.WithLabelValues(p.API1, p.API2, p.Package).Set(v)

	for _, m := range r.Metrics {
		scale := strconv.Itoa(m.Scale)
		timeGauge.WithLabelValues(p.API1, p.API2, p.Package, scale, "1").Set(m.AvgTime1)
		timeGauge.WithLabelValues(p.API1, p.API2, p.Package, scale, "2").Set(m.AvgTime2)
		memGauge.WithLabelValues(p.API1, p.API2, p.Package, scale, "1").Set(m.Mem1)
		memGauge.WithLabelValues(p.API1, p.API2, p.Package, scale, "2").Set(m.Mem2)
	}
	return reg
}

// WriteTextfile writes r to path atomically.
func WriteTextfile(path string, r harness.Report) error {
	return prometheus.WriteToTextfile(path, Registry(r))
}
