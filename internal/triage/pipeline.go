package triage

import (
	"context"
	"fmt"
	"log"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/telemetry"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/provider"
)

// Request is the raw pipeline input. Image, when present, is a base64 or
// data-URL encoded attachment.
type Request struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
	Image   string `json:"image,omitempty"`
}

// Result is the pipeline output for an accepted request.
type Result struct {
	Response  string                 `json:"response"`
	Telemetry telemetry.Record       `json:"telemetry"`
	Citations map[string]CitationRef `json:"citations,omitempty"`
	Warning   string                 `json:"warning,omitempty"`
}

// BlockedError reports a request rejected by the guardrails. It is an
// expected policy outcome, distinct from internal failures, and is surfaced
// to the caller with the verdict's warning text.
type BlockedError struct {
	Verdict SafetyVerdict
}

func (e *BlockedError) Error() string {
	return e.Verdict.Warning
}

// Pipeline runs the full triage sequence for one request: sanitize, redact,
// guardrails, intent, routing, optional retrieval, backend call, citation
// extraction, disclaimer, audit record. A single Pipeline serves many
// concurrent requests; all per-request state stays on the stack.
type Pipeline struct {
	backend   provider.Backend
	retriever kb.Retriever
	recorder  *telemetry.Recorder
	router    *Router
	deploy    config.Deployments
	topK      int
	logger    *log.Logger
}

// NewPipeline wires the pipeline's collaborators together.
func NewPipeline(backend provider.Backend, retriever kb.Retriever, recorder *telemetry.Recorder, cfg config.ProviderConfig, topK int) *Pipeline {
	if retriever == nil {
		retriever = kb.NoopRetriever{}
	}
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		backend:   backend,
		retriever: retriever,
		recorder:  recorder,
		router:    NewRouter(cfg.UseRouter),
		deploy:    cfg.Deployments,
		topK:      topK,
		logger:    log.New(log.Writer(), "[TRIAGE] ", log.LstdFlags),
	}
}

// Run executes the triage sequence. It returns a *BlockedError when the
// guardrails reject the message and a wrapped backend error when the model
// call fails; the text-only stages never fail.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	hasImage := req.Image != ""
	original := req.Message

	clean := SanitizeMessage(original)

	red := Redact(clean)
	if red.PHIDetected {
		p.recorder.RecordPHIDetection(len(original), len(red.SanitizedText), categoryStrings(red.Categories))
	}

	verdict := CheckSafety(red.SanitizedText)
	if !verdict.Allowed {
		p.recorder.RecordSafetyBlock(string(verdict.Risk))
		p.recorder.RecordError("safety_violation", "request blocked by guardrails", map[string]interface{}{
			"risk_level": string(verdict.Risk),
			"reason":     verdict.Reason,
		})
		return nil, &BlockedError{Verdict: verdict}
	}

	intent, intentReason := DetectIntent(red.SanitizedText, hasImage)
	mode := ParseMode(req.Mode)
	decision := p.router.SelectRoute(intent, mode, hasImage)
	sampling := SamplingFor(mode)
	prefs := PreferencesFor(mode)

	messages, documents := p.composeMessages(ctx, intent, decision.Capability, red.SanitizedText, req.Image)

	opts := provider.Options{
		Deployment:  p.deploymentFor(decision.Capability),
		MaxTokens:   sampling.MaxTokens,
		Temperature: sampling.Temperature,
	}
	if decision.Capability == CapabilityRouter {
		opts.RoutingMode = string(mode)
	}

	completion, err := p.backend.Chat(ctx, messages, opts)
	if err != nil {
		p.recorder.RecordError("backend_failure", err.Error(), map[string]interface{}{
			"intent": string(intent),
			"mode":   string(mode),
		})
		return nil, fmt.Errorf("backend call: %w", err)
	}

	var citations map[string]CitationRef
	if len(documents) > 0 {
		citations = ExtractCitations(completion.Text, documents)
	}

	response := AddDisclaimer(completion.Text, intent)

	rec := p.recorder.Record(telemetry.Record{
		Intent:      string(intent),
		Mode:        string(mode),
		ModelChosen: completion.Model,
		Tokens: telemetry.TokenUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
		LatencyMS: completion.LatencyMS,
		Rationale: decision.Rationale,
		HasPHI:    red.PHIDetected,
		HasImage:  hasImage,
		AdditionalContext: map[string]interface{}{
			"intent_reason":       intentReason,
			"risk_level":          string(verdict.Risk),
			"routing_preferences": prefs,
			"capability":          string(decision.Capability),
			"documents_retrieved": len(documents),
		},
	})

	return &Result{
		Response:  response,
		Telemetry: rec,
		Citations: citations,
		Warning:   verdict.Warning,
	}, nil
}

// composeMessages builds the backend conversation for the selected route.
// Clinical text requests go through retrieval; a retriever error is treated
// as an empty result so the fallback prompt path runs transparently.
func (p *Pipeline) composeMessages(ctx context.Context, intent Intent, capability Capability, sanitized, image string) ([]provider.Message, []kb.Document) {
	if capability == CapabilityVision {
		return []provider.Message{{Role: "user", Content: VisionPrompt(sanitized), ImageURL: image}}, nil
	}

	if intent == IntentClinical {
		documents, err := p.retriever.Search(ctx, sanitized, p.topK)
		if err != nil {
			p.logger.Printf("retrieval degraded, using fallback prompt: %v", err)
			documents = nil
		}
		return []provider.Message{{Role: "user", Content: BuildPrompt(sanitized, documents)}}, documents
	}

	return []provider.Message{{Role: "user", Content: sanitized}}, nil
}

func (p *Pipeline) deploymentFor(capability Capability) string {
	switch capability {
	case CapabilityVision:
		return p.deploy.Vision
	case CapabilityAdminFast:
		return p.deploy.Admin
	case CapabilityClinicalQuality:
		return p.deploy.Clinical
	default:
		return p.deploy.Router
	}
}

func categoryStrings(cats []PHICategory) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
