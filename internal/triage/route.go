package triage

// Mode is the caller-supplied cost/quality preference. Unrecognized values
// are treated as balanced rather than rejected.
type Mode string

const (
	ModeCost     Mode = "cost"
	ModeBalanced Mode = "balanced"
	ModeQuality  Mode = "quality"
)

// ParseMode normalizes a free-form mode string to the closed enumeration.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeCost:
		return ModeCost
	case ModeQuality:
		return ModeQuality
	default:
		return ModeBalanced
	}
}

// Capability is an abstract backend target, decoupled from deployment names.
type Capability string

const (
	CapabilityVision          Capability = "vision"
	CapabilityRouter          Capability = "router"
	CapabilityAdminFast       Capability = "admin-fast"
	CapabilityClinicalQuality Capability = "clinical-quality"
)

// RouteDecision names the backend capability to invoke and why.
type RouteDecision struct {
	Capability Capability
	Rationale  string
}

// Router plans which backend capability serves a request. When useRouter is
// false the service runs degraded: per-intent fixed deployments replace the
// generic model-router capability.
type Router struct {
	useRouter bool
}

func NewRouter(useRouter bool) *Router {
	return &Router{useRouter: useRouter}
}

// SelectRoute picks a capability from intent, mode, and image presence.
// Invariant: an image or a vision intent always selects the vision
// capability regardless of mode.
func (r *Router) SelectRoute(intent Intent, mode Mode, hasImage bool) RouteDecision {
	if hasImage || intent == IntentVision {
		return RouteDecision{
			Capability: CapabilityVision,
			Rationale:  "Image present - routing to vision-capable model",
		}
	}

	if r.useRouter {
		var rationale string
		switch mode {
		case ModeCost:
			rationale = "Cost-optimized routing via Model Router"
		case ModeQuality:
			rationale = "Quality-optimized routing via Model Router"
		default:
			rationale = "Balanced routing via Model Router"
		}
		return RouteDecision{Capability: CapabilityRouter, Rationale: rationale}
	}

	switch intent {
	case IntentAdmin:
		return RouteDecision{
			Capability: CapabilityAdminFast,
			Rationale:  "Administrative query - using fast, cost-effective model",
		}
	case IntentClinical:
		return RouteDecision{
			Capability: CapabilityClinicalQuality,
			Rationale:  "Clinical query - using high-quality model",
		}
	default:
		return RouteDecision{Capability: CapabilityRouter, Rationale: "Default routing via Model Router"}
	}
}

// Sampling bounds forwarded to the backend for one call.
type Sampling struct {
	MaxTokens   int
	Temperature float64
}

const (
	baseMaxTokens    = 1000
	baseTemperature  = 0.7
	maxTokensCap     = 2000
	maxTokensFloor   = 256
	temperatureCap   = 1.0
	temperatureFloor = 0.2
)

// SamplingFor adjusts the token budget and temperature per mode: quality
// raises both up to fixed caps, cost lowers both down to fixed floors, and
// balanced leaves the defaults untouched.
func SamplingFor(mode Mode) Sampling {
	switch mode {
	case ModeQuality:
		tokens := baseMaxTokens * 2
		if tokens > maxTokensCap {
			tokens = maxTokensCap
		}
		temp := baseTemperature + 0.2
		if temp > temperatureCap {
			temp = temperatureCap
		}
		return Sampling{MaxTokens: tokens, Temperature: temp}
	case ModeCost:
		tokens := baseMaxTokens / 2
		if tokens < maxTokensFloor {
			tokens = maxTokensFloor
		}
		temp := baseTemperature - 0.4
		if temp < temperatureFloor {
			temp = temperatureFloor
		}
		return Sampling{MaxTokens: tokens, Temperature: temp}
	default:
		return Sampling{MaxTokens: baseMaxTokens, Temperature: baseTemperature}
	}
}

// RoutingPreferences are hints forwarded to the model router alongside a
// request.
type RoutingPreferences struct {
	RoutingMode   string `json:"routing_mode"`
	AllowFallback bool   `json:"allow_fallback"`
	PreferFast    bool   `json:"prefer_fast"`
}

// PreferencesFor maps a mode onto router preference hints.
func PreferencesFor(mode Mode) RoutingPreferences {
	switch mode {
	case ModeCost:
		return RoutingPreferences{RoutingMode: "cost_optimized", AllowFallback: true, PreferFast: true}
	case ModeQuality:
		return RoutingPreferences{RoutingMode: "quality_optimized", AllowFallback: false, PreferFast: false}
	default:
		return RoutingPreferences{RoutingMode: "balanced", AllowFallback: true, PreferFast: false}
	}
}
