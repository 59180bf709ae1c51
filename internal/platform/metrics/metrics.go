// Package metrics owns the Prometheus registry shared by every module.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the registry with process-wide collectors.
type Registry struct {
	*prometheus.Registry
	BuildInfo *prometheus.GaugeVec
}

// NewRegistry creates a registry with Go runtime and process collectors and a
// build info gauge. Module metrics register into it with their own New(reg).
func NewRegistry(version, environment string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	buildInfo := promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
		Name: "bloodbank_build_info",
		Help: "Build information; the value is always 1",
	}, []string{"version", "environment"})
	buildInfo.WithLabelValues(version, environment).Set(1)

	return &Registry{Registry: reg, BuildInfo: buildInfo}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{
		Registry:          r.Registry,
		EnableOpenMetrics: false,
	})
}
