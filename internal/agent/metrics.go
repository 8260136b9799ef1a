package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "agent_runs_total",
			Help:      "Total agent runs",
		},
		[]string{"status"}, // "success", "error"
	)

	runRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "outreach",
			Name:      "agent_run_rounds",
			Help:      "Model rounds consumed per agent run",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "llm_calls_total",
			Help:      "Total LLM API calls made by the agent loop",
		},
		[]string{"status"},
	)

	llmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "outreach",
			Name:      "llm_duration_seconds",
			Help:      "Duration of LLM API calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "tool_calls_total",
			Help:      "Total tool executions",
		},
		[]string{"tool", "status"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "outreach",
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool executions in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	draftsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "drafts_persisted_total",
			Help:      "Posted drafts written to the content store at run end",
		},
		[]string{"platform"},
	)
)
