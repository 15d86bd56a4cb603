// Package metrics exposes Prometheus counters for a simulation run so
// long-running batch sweeps can be scraped while they execute.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles every scheduler metric behind one registry, so
// parallel simulations in tests do not trip duplicate registration.
type Collector struct {
	registry *prometheus.Registry

	decisions *prometheus.CounterVec
	syscalls  *prometheus.CounterVec

	processesCreated prometheus.Counter
	processesExited  prometheus.Counter

	virtualTime prometheus.Gauge
	idleTime    prometheus.Gauge
}

// NewCollector creates and registers all metrics on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sched_decisions_total",
			Help: "Scheduling decisions by kind (Run, Sleep, Done, Deadlock, Panic)",
		}, []string{"kind"}),
		syscalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sched_syscalls_total",
			Help: "Syscall stops by kind (Fork, Sleep, Wait, Signal, Exit)",
		}, []string{"kind"}),
		processesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sched_processes_created_total",
			Help: "Processes created, bootstrap and forks alike",
		}),
		processesExited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sched_processes_exited_total",
			Help: "Processes that exited",
		}),
		virtualTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sched_virtual_time_ticks",
			Help: "Current virtual time of the simulation",
		}),
		idleTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sched_idle_time_ticks",
			Help: "Cumulative virtual time the CPU spent idle",
		}),
	}

	c.registry.MustRegister(c.decisions)
	c.registry.MustRegister(c.syscalls)
	c.registry.MustRegister(c.processesCreated)
	c.registry.MustRegister(c.processesExited)
	c.registry.MustRegister(c.virtualTime)
	c.registry.MustRegister(c.idleTime)

	return c
}

// RecordDecision counts one Next outcome.
func (c *Collector) RecordDecision(kind string) {
	c.decisions.WithLabelValues(kind).Inc()
}

// RecordSyscall counts one syscall stop.
func (c *Collector) RecordSyscall(kind string) {
	c.syscalls.WithLabelValues(kind).Inc()
}

// RecordCreated counts one process creation.
func (c *Collector) RecordCreated() {
	c.processesCreated.Inc()
}

// RecordExited counts one process exit.
func (c *Collector) RecordExited() {
	c.processesExited.Inc()
}

// SetVirtualTime publishes the harness clock.
func (c *Collector) SetVirtualTime(ticks int64) {
	c.virtualTime.Set(float64(ticks))
}

// SetIdleTime publishes the scheduler's cumulative idle time.
func (c *Collector) SetIdleTime(ticks int64) {
	c.idleTime.Set(float64(ticks))
}

// Handler serves the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
