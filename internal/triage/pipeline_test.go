package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/telemetry"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/provider"
)

type stubBackend struct {
	reply    string
	model    string
	err      error
	messages []provider.Message
	opts     provider.Options
	calls    int
}

func (b *stubBackend) Chat(ctx context.Context, messages []provider.Message, opts provider.Options) (provider.Completion, error) {
	b.calls++
	b.messages = messages
	b.opts = opts
	if b.err != nil {
		return provider.Completion{}, b.err
	}
	return provider.Completion{
		Text:      b.reply,
		Model:     b.model,
		Usage:     provider.Usage{PromptTokens: 40, CompletionTokens: 60, TotalTokens: 100},
		LatencyMS: 12.345,
	}, nil
}

type stubRetriever struct {
	docs  []kb.Document
	err   error
	query string
}

func (r *stubRetriever) Search(ctx context.Context, query string, topK int) ([]kb.Document, error) {
	r.query = query
	if r.err != nil {
		return nil, r.err
	}
	return r.docs, nil
}

func testProviderConfig(useRouter bool) config.ProviderConfig {
	return config.ProviderConfig{
		UseRouter: useRouter,
		Deployments: config.Deployments{
			Router:   "model-router",
			Admin:    "gpt-35-turbo",
			Clinical: "gpt-4",
			Vision:   "gpt-4-vision",
		},
	}
}

func newTestPipeline(backend provider.Backend, retriever kb.Retriever, useRouter bool) (*Pipeline, *telemetry.MemorySink) {
	sink := telemetry.NewMemorySink()
	rec := telemetry.NewRecorder(config.TelemetryConfig{Enabled: true}, sink)
	return NewPipeline(backend, retriever, rec, testProviderConfig(useRouter), 3), sink
}

func TestPipelineAdminQuery(t *testing.T) {
	backend := &stubBackend{reply: "We are open 8am to 6pm.", model: "gpt-4o-mini"}
	retriever := &stubRetriever{docs: []kb.Document{{Title: "should not be used"}}}
	pipe, sink := newTestPipeline(backend, retriever, true)

	res, err := pipe.Run(context.Background(), Request{Message: "what are your office hours?", Mode: "cost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Response != backend.reply {
		t.Fatalf("admin response altered: %q", res.Response)
	}
	if retriever.query != "" {
		t.Fatalf("admin queries must not hit retrieval, searched %q", retriever.query)
	}
	if res.Citations != nil {
		t.Fatalf("unexpected citations: %v", res.Citations)
	}
	if backend.opts.Deployment != "model-router" || backend.opts.RoutingMode != "cost" {
		t.Fatalf("opts = %+v", backend.opts)
	}
	if backend.opts.MaxTokens != 500 {
		t.Fatalf("cost mode max tokens = %d, want 500", backend.opts.MaxTokens)
	}

	recs := sink.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Intent != "admin" || rec.Mode != "cost" || rec.ModelChosen != "gpt-4o-mini" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ID == "" || rec.Timestamp.IsZero() {
		t.Fatalf("record missing identity: %+v", rec)
	}
	if rec.Tokens.TotalTokens != 100 {
		t.Fatalf("tokens = %+v", rec.Tokens)
	}
}

func TestPipelineClinicalRAG(t *testing.T) {
	backend := &stubBackend{reply: "Flu hits fast [Source 1].", model: "gpt-4"}
	retriever := &stubRetriever{docs: []kb.Document{
		{Title: "Cold vs Flu", Source: "kb/cold-flu", Category: "clinical", Content: "Colds come on gradually."},
	}}
	pipe, sink := newTestPipeline(backend, retriever, true)

	res, err := pipe.Run(context.Background(), Request{Message: "fever and cough, cold or flu?", Mode: "quality"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backend.messages) != 1 || !strings.Contains(backend.messages[0].Content, "[Source 1: Cold vs Flu]") {
		t.Fatalf("prompt not augmented: %q", backend.messages[0].Content)
	}
	if got := res.Citations["1"]; got.Title != "Cold vs Flu" {
		t.Fatalf("citations = %v", res.Citations)
	}
	if !strings.Contains(res.Response, "not a substitute for professional medical advice") {
		t.Fatalf("clinical disclaimer missing: %q", res.Response)
	}

	rec := sink.Records()[0]
	if rec.AdditionalContext["documents_retrieved"] != 1 {
		t.Fatalf("additional context = %v", rec.AdditionalContext)
	}
}

func TestPipelineRetrievalDegrades(t *testing.T) {
	backend := &stubBackend{reply: "General guidance only.", model: "gpt-4"}
	retriever := &stubRetriever{err: errors.New("index offline")}
	pipe, _ := newTestPipeline(backend, retriever, true)

	res, err := pipe.Run(context.Background(), Request{Message: "treatment options for a sinus infection"})
	if err != nil {
		t.Fatalf("retrieval failure must not fail the request: %v", err)
	}
	if strings.Contains(backend.messages[0].Content, "MEDICAL KNOWLEDGE BASE SOURCES") {
		t.Fatalf("expected fallback prompt, got %q", backend.messages[0].Content)
	}
	if res.Citations != nil {
		t.Fatalf("citations without documents: %v", res.Citations)
	}
}

func TestPipelineBlocked(t *testing.T) {
	backend := &stubBackend{reply: "never"}
	pipe, sink := newTestPipeline(backend, nil, true)

	_, err := pipe.Run(context.Background(), Request{Message: "where can I buy illegal drugs"})
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("err = %v, want BlockedError", err)
	}
	if blocked.Verdict.Risk != RiskProhibited {
		t.Fatalf("verdict = %+v", blocked.Verdict)
	}
	if backend.calls != 0 {
		t.Fatalf("blocked request reached the backend")
	}
	if len(sink.Records()) != 0 {
		t.Fatalf("blocked requests must not produce routing records: %v", sink.Records())
	}
}

func TestPipelineEmergencyWarning(t *testing.T) {
	backend := &stubBackend{reply: "Please seek urgent care.", model: "gpt-4"}
	pipe, _ := newTestPipeline(backend, nil, true)

	res, err := pipe.Run(context.Background(), Request{Message: "sudden chest pain, what should I do"})
	if err != nil {
		t.Fatalf("emergency messages must pass through: %v", err)
	}
	if !strings.Contains(res.Warning, "call 911") {
		t.Fatalf("warning = %q", res.Warning)
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls = %d", backend.calls)
	}
}

func TestPipelineEmergencyContraction(t *testing.T) {
	backend := &stubBackend{reply: "Call emergency services now.", model: "gpt-4"}
	pipe, sink := newTestPipeline(backend, nil, true)

	// The apostrophe must survive sanitization or the keyword never matches.
	res, err := pipe.Run(context.Background(), Request{Message: "help, I can't breathe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Warning, "call 911") {
		t.Fatalf("warning = %q, want emergency notice", res.Warning)
	}
	sent := backend.messages[0].Content
	if !strings.Contains(sent, "can't breathe") || strings.Contains(sent, "&#39;") {
		t.Fatalf("backend received escaped text: %q", sent)
	}
	rec := sink.Records()[0]
	if rec.AdditionalContext["risk_level"] != "high" {
		t.Fatalf("risk level = %v, want high", rec.AdditionalContext["risk_level"])
	}
}

func TestPipelineVision(t *testing.T) {
	backend := &stubBackend{reply: "The image shows a rash.", model: "gpt-4-vision"}
	pipe, sink := newTestPipeline(backend, nil, false)

	res, err := pipe.Run(context.Background(), Request{
		Message: "what is this?",
		Mode:    "quality",
		Image:   "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.opts.Deployment != "gpt-4-vision" {
		t.Fatalf("deployment = %q", backend.opts.Deployment)
	}
	if backend.opts.RoutingMode != "" {
		t.Fatalf("vision calls bypass the router, routing mode = %q", backend.opts.RoutingMode)
	}
	msg := backend.messages[0]
	if msg.ImageURL == "" || !strings.Contains(msg.Content, "Analyze this medical image") {
		t.Fatalf("vision message = %+v", msg)
	}
	if !strings.Contains(res.Response, "image analysis is for educational purposes only") {
		t.Fatalf("vision disclaimer missing: %q", res.Response)
	}
	rec := sink.Records()[0]
	if !rec.HasImage || rec.Intent != "vision" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestPipelinePHIRedactedBeforeBackend(t *testing.T) {
	backend := &stubBackend{reply: "Noted.", model: "gpt-4"}
	pipe, sink := newTestPipeline(backend, nil, true)

	_, err := pipe.Run(context.Background(), Request{
		Message: "My name is John Smith and I have a fever, call 555-123-4567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := backend.messages[0].Content
	for _, frag := range []string{"John Smith", "555-123-4567"} {
		if strings.Contains(sent, frag) {
			t.Fatalf("raw PHI reached the backend: %q", sent)
		}
	}
	if !sink.Records()[0].HasPHI {
		t.Fatalf("record missing PHI flag")
	}
}

func TestPipelineBackendFailure(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("upstream 503")}
	pipe, sink := newTestPipeline(backend, nil, true)

	_, err := pipe.Run(context.Background(), Request{Message: "what are your office hours?"})
	if err == nil || !strings.Contains(err.Error(), "backend call:") {
		t.Fatalf("err = %v", err)
	}
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		t.Fatalf("backend failure must not look like a policy block")
	}
	if len(sink.Records()) != 0 {
		t.Fatalf("failed calls must not produce routing records")
	}
}

func TestPipelineDegradedDeployments(t *testing.T) {
	backend := &stubBackend{reply: "ok", model: "gpt-35-turbo"}
	pipe, _ := newTestPipeline(backend, nil, false)

	if _, err := pipe.Run(context.Background(), Request{Message: "reschedule my appointment"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.opts.Deployment != "gpt-35-turbo" {
		t.Fatalf("admin deployment = %q, want gpt-35-turbo", backend.opts.Deployment)
	}

	if _, err := pipe.Run(context.Background(), Request{Message: "medication options for high blood pressure"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.opts.Deployment != "gpt-4" {
		t.Fatalf("clinical deployment = %q, want gpt-4", backend.opts.Deployment)
	}
}
