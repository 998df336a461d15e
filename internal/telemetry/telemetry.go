package telemetry

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
)

// TokenUsage reports token consumption for one backend call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Record is the audit artifact assembled for every routing decision. It is
// append-only: once created it is handed to the sink and never mutated.
type Record struct {
	ID                string                 `json:"id"`
	Timestamp         time.Time              `json:"timestamp"`
	Intent            string                 `json:"intent"`
	Mode              string                 `json:"routing_mode"`
	ModelChosen       string                 `json:"model_chosen"`
	Tokens            TokenUsage             `json:"tokens"`
	LatencyMS         float64                `json:"latency_ms"`
	Rationale         string                 `json:"rationale"`
	HasPHI            bool                   `json:"has_phi"`
	HasImage          bool                   `json:"has_image"`
	AdditionalContext map[string]interface{} `json:"additional_context,omitempty"`
}

// Sink accepts finished audit records. Implementations must tolerate
// concurrent appends without interleaving individual records.
type Sink interface {
	Append(rec Record) error
}

// Recorder assembles and emits audit records. Emission is best-effort: a
// failing sink never fails the request, and the assembled record is always
// returned to the caller.
type Recorder struct {
	enabled bool
	sink    Sink
	logger  *log.Logger
}

// NewRecorder builds a Recorder writing to the given sink. Pass a nil sink to
// only log.
func NewRecorder(cfg config.TelemetryConfig, sink Sink) *Recorder {
	w := log.Writer()
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = f
		}
	}
	return &Recorder{
		enabled: cfg.Enabled,
		sink:    sink,
		logger:  log.New(w, "[ROUTER] ", log.LstdFlags),
	}
}

// Record finalizes a routing decision: stamps ID and timestamp, updates
// metrics, logs it, and appends it to the sink. Never fails.
func (r *Recorder) Record(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.LatencyMS = math.Round(rec.LatencyMS*100) / 100

	if !r.enabled {
		return rec
	}

	observeDecision(rec)

	if raw, err := json.Marshal(rec); err == nil {
		r.logger.Printf("ROUTING_DECISION: %s", raw)
	}
	if r.sink != nil {
		if err := r.sink.Append(rec); err != nil {
			r.logger.Printf("audit sink append failed: %v", err)
		}
	}
	return rec
}

// RecordError logs an out-of-band failure (safety block, backend failure)
// with the same non-blocking guarantee as Record.
func (r *Recorder) RecordError(kind, message string, context map[string]interface{}) {
	if !r.enabled {
		return
	}
	payload := map[string]interface{}{
		"timestamp":     time.Now().UTC().Format(time.RFC3339Nano),
		"error_type":    kind,
		"error_message": message,
		"context":       context,
	}
	if raw, err := json.Marshal(payload); err == nil {
		r.logger.Printf("ERROR: %s", raw)
	}
}

// RecordPHIDetection audits a redaction event. Only lengths and category
// tags are logged; the original text never reaches the log.
func (r *Recorder) RecordPHIDetection(originalLen, redactedLen int, categories []string) {
	if !r.enabled {
		return
	}
	observePHI(categories)
	payload := map[string]interface{}{
		"timestamp":          time.Now().UTC().Format(time.RFC3339Nano),
		"phi_types_detected": categories,
		"redaction_applied":  true,
		"original_length":    originalLen,
		"redacted_length":    redactedLen,
	}
	if raw, err := json.Marshal(payload); err == nil {
		r.logger.Printf("PHI_DETECTED: %s", raw)
	}
}

// RecordSafetyBlock counts a guardrail rejection. Blocks are expected
// outcomes, audited separately from system errors.
func (r *Recorder) RecordSafetyBlock(riskLevel string) {
	if !r.enabled {
		return
	}
	observeBlock(riskLevel)
}
