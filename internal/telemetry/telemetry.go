// Package telemetry exposes Stream Weaver's Prometheus metrics: a small
// fixed set of counters and gauges for the renderer and worker pool,
// grounded on oriys-nova/internal/metrics/prometheus.go's collector style
// but scaled down to this runtime's much narrower observability surface.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RenderChunksTotal counts HTML chunks flushed to the response stream.
	RenderChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "render",
		Name:      "chunks_total",
		Help:      "Total number of HTML chunks flushed by the streaming renderer.",
	})

	// RenderExecutableTokensTotal counts the signal-valued children the
	// renderer walks, labelled suspense, node, or computed (the label used
	// for every other signal kind, state included).
	RenderExecutableTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "render",
		Name:      "executable_tokens_total",
		Help:      "Total number of executable tokens processed by the streaming renderer, by kind.",
	}, []string{"kind"})

	// WorkerPoolCapacity is the configured number of long-lived worker
	// goroutines.
	WorkerPoolCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "weaver",
		Subsystem: "worker_pool",
		Name:      "capacity",
		Help:      "Configured worker pool capacity.",
	})

	// WorkerPoolActive is the number of worker goroutines currently
	// executing a task.
	WorkerPoolActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "weaver",
		Subsystem: "worker_pool",
		Name:      "active",
		Help:      "Number of worker pool goroutines currently busy.",
	})

	// WorkerPoolTasksTotal counts dispatched worker tasks by outcome.
	WorkerPoolTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weaver",
		Subsystem: "worker_pool",
		Name:      "tasks_total",
		Help:      "Total worker pool tasks dispatched, by outcome.",
	}, []string{"outcome"})
)
