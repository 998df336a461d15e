package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caretriage_routing_decisions_total",
		Help: "Routing decisions by intent and mode.",
	}, []string{"intent", "mode"})

	requestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "caretriage_backend_latency_ms",
		Help:    "Backend call latency in milliseconds.",
		Buckets: prometheus.ExponentialBuckets(50, 2, 10),
	})

	tokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caretriage_tokens_total",
		Help: "Total tokens consumed across backend calls.",
	})

	phiDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caretriage_phi_detections_total",
		Help: "PHI redactions by category.",
	}, []string{"category"})

	safetyBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caretriage_safety_blocks_total",
		Help: "Requests rejected by guardrails, by risk level.",
	}, []string{"risk_level"})
)

func observeDecision(rec Record) {
	decisionsTotal.WithLabelValues(rec.Intent, rec.Mode).Inc()
	requestLatency.Observe(rec.LatencyMS)
	tokensTotal.Add(float64(rec.Tokens.TotalTokens))
}

func observePHI(categories []string) {
	for _, c := range categories {
		phiDetections.WithLabelValues(c).Inc()
	}
}

func observeBlock(riskLevel string) {
	safetyBlocks.WithLabelValues(riskLevel).Inc()
}
