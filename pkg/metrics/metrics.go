// Package metrics exports analysis results as Prometheus gauges for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netreclaim/reclaim/pkg/report"
)

// Registry holds the gauges for one export.
type Registry struct {
	reg *prometheus.Registry

	CategoryMembers *prometheus.GaugeVec
	Inventory       *prometheus.GaugeVec
	Total           *prometheus.GaugeVec
	GeneratedAt     *prometheus.GaugeVec
}

// NewRegistry creates an empty registry. Each export builds its own so
// devices dropped from a run disappear from the file.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.CategoryMembers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reclaim",
		Name:      "category_members",
		Help:      "Number of reclaimable objects per report category",
	}, []string{"device", "category"})

	r.Inventory = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reclaim",
		Name:      "inventory_objects",
		Help:      "Number of configured objects per kind",
	}, []string{"device", "kind"})

	r.Total = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reclaim",
		Name:      "report_total",
		Help:      "Sum of all category counts in the report",
	}, []string{"device"})

	r.GeneratedAt = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reclaim",
		Name:      "report_generated_timestamp_seconds",
		Help:      "Unix time the report was generated",
	}, []string{"device"})

	r.reg.MustRegister(r.CategoryMembers, r.Inventory, r.Total, r.GeneratedAt)
	return r
}

// Observe records every section of rep. rep.Device labels the series, with
// the identity as fallback.
func (r *Registry) Observe(rep *report.Report) {
	device := rep.Device
	if device == "" {
		device = rep.Identity
	}
	for _, sec := range rep.Sections {
		r.CategoryMembers.WithLabelValues(device, sec.Key).Set(float64(sec.Count))
	}
	inv := rep.Inventory
	for kind, n := range map[string]int{
		"bridge":      inv.Bridges,
		"bridge_port": inv.BridgePorts,
		"vlan":        inv.Vlans,
		"eoip":        inv.Eoips,
		"bonding":     inv.Bondings,
		"ppp_secret":  inv.PPPSecrets,
		"ip_address":  inv.IPAddresses,
	} {
		r.Inventory.WithLabelValues(device, kind).Set(float64(n))
	}
	r.Total.WithLabelValues(device).Set(float64(rep.Total))
	r.GeneratedAt.WithLabelValues(device).Set(float64(rep.GeneratedAt.Unix()))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes the registry to path atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// WriteTextfile observes every report and writes the result to path.
func WriteTextfile(path string, reports []*report.Report) error {
	r := NewRegistry()
	for _, rep := range reports {
		r.Observe(rep)
	}
	return r.WriteTextfile(path)
}
