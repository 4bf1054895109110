// Package metrics counts protocol events per scenario on a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/harness"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
)

const namespace = "tpe_golden"

// Collector holds the protocol counters of one generation
type Collector struct {
	registry *prometheus.Registry

	asks       *prometheus.CounterVec
	tells      *prometheus.CounterVec
	reports    *prometheus.CounterVec
	runs       *prometheus.CounterVec
	pendingMax *prometheus.GaugeVec

	mu       sync.Mutex
	maxDepth map[string]int
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		asks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asks_total",
			Help:      "Trials asked from the sampler",
		}, []string{"scenario"}),
		tells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tells_total",
			Help:      "Outcomes told to the sampler",
		}, []string{"scenario", "state"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Intermediate values reported to the sampler",
		}, []string{"scenario"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed scenario runs",
		}, []string{"scenario"}),
		pendingMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_max",
			Help:      "Deepest pending-tell queue seen in any run of the scenario",
		}, []string{"scenario"}),
		maxDepth: make(map[string]int),
	}
	c.registry.MustRegister(c.asks, c.tells, c.reports, c.runs, c.pendingMax)
	return c
}

// Registry exposes the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observer returns a harness.Observer feeding this collector
func (c *Collector) Observer() harness.Observer {
	return (*observer)(c)
}

type observer Collector

func (o *observer) OnAsk(run harness.RunInfo, _ int) {
	o.asks.WithLabelValues(run.Scenario).Inc()
}

func (o *observer) OnReport(run harness.RunInfo, _, _ int, _ float64) {
	o.reports.WithLabelValues(run.Scenario).Inc()
}

func (o *observer) OnTell(run harness.RunInfo, _ int, state models.TrialState, _ int) {
	o.tells.WithLabelValues(run.Scenario, string(state)).Inc()
}

func (o *observer) OnRunComplete(run harness.RunInfo, maxDepth int) {
	o.runs.WithLabelValues(run.Scenario).Inc()

	o.mu.Lock()
	defer o.mu.Unlock()
	if prev, ok := o.maxDepth[run.Scenario]; !ok || maxDepth > prev {
		o.maxDepth[run.Scenario] = maxDepth
		o.pendingMax.WithLabelValues(run.Scenario).Set(float64(maxDepth))
	}
}

// Totals are the protocol counters summed over every scenario
type Totals struct {
	Asks    int
	Tells   int
	Reports int
	Runs    int
}

// Totals gathers the registry and sums each counter family
func (c *Collector) Totals() (Totals, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return Totals{}, fmt.Errorf("gather metrics: %w", err)
	}
	var t Totals
	for _, mf := range families {
		sum := int(sumCounters(mf))
		switch mf.GetName() {
		case namespace + "_asks_total":
			t.Asks = sum
		case namespace + "_tells_total":
			t.Tells = sum
		case namespace + "_reports_total":
			t.Reports = sum
		case namespace + "_runs_total":
			t.Runs = sum
		}
	}
	return t, nil
}

func sumCounters(mf *dto.MetricFamily) float64 {
	if mf.GetType() != dto.MetricType_COUNTER {
		return 0
	}
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}

// WriteText renders the registry in the Prometheus text exposition format
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile renders the text exposition to path, creating parent
// directories as needed.
func (c *Collector) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
