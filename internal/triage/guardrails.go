package triage

import "strings"

// RiskLevel grades how dangerous a message is.
type RiskLevel string

const (
	RiskLow        RiskLevel = "low"
	RiskHigh       RiskLevel = "high"
	RiskProhibited RiskLevel = "prohibited"
)

// SafetyVerdict is the outcome of the guardrail scan. When Allowed is false
// the request must not reach the backend; Warning carries the user-facing
// explanation (the rejection message, or an emergency notice overlay).
type SafetyVerdict struct {
	Allowed bool
	Warning string
	Risk    RiskLevel
	Reason  string
}

const blockedMessage = "This request cannot be processed due to prohibited content."

const emergencyMessage = "⚠️ **Emergency Detected**: If this is a medical emergency, " +
	"please call 911 or visit your nearest emergency room immediately. " +
	"This is a demonstration tool and cannot provide emergency care."

// safetyRule pairs a keyword set with its verdict. Rules are evaluated
// top-to-bottom with first-match-wins semantics, which makes the
// prohibited-over-high-risk precedence explicit.
type safetyRule struct {
	name     string
	keywords []string
	verdict  SafetyVerdict
}

var safetyRules = []safetyRule{
	{
		name: "prohibited_content",
		keywords: []string{
			"illegal drugs", "fake prescription", "forge",
			"abuse medication", "sell prescription",
		},
		verdict: SafetyVerdict{
			Allowed: false,
			Warning: blockedMessage,
			Risk:    RiskProhibited,
			Reason:  "prohibited_content",
		},
	},
	{
		name: "high_risk_emergency",
		keywords: []string{
			"suicide", "kill myself", "end my life", "self-harm",
			"overdose", "emergency", "chest pain", "can't breathe",
			"severe bleeding", "unconscious", "stroke",
		},
		verdict: SafetyVerdict{
			Allowed: true,
			Warning: emergencyMessage,
			Risk:    RiskHigh,
			Reason:  "requires_emergency_warning",
		},
	},
}

// CheckSafety scans the sanitized message against the guardrail rules. This
// is a blocklist, not a scored classifier: unlisted dangerous phrasings pass
// through, and exactly one risk level is ever reported.
func CheckSafety(message string) SafetyVerdict {
	lower := strings.ToLower(message)
	for _, rule := range safetyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.verdict
			}
		}
	}
	return SafetyVerdict{Allowed: true, Risk: RiskLow}
}

const clinicalDisclaimer = "\n\n---\n" +
	"*This is a demonstration tool and not a substitute for professional medical advice, " +
	"diagnosis, or treatment. Always seek the advice of your physician or qualified " +
	"health provider with any questions regarding a medical condition.*"

const visionDisclaimer = "\n\n---\n" +
	"*This image analysis is for educational purposes only and should not be used " +
	"for diagnostic decisions. Consult a qualified healthcare professional for " +
	"medical image interpretation.*"

// AddDisclaimer appends the intent-appropriate disclaimer to a generated
// response. Administrative answers go out unchanged.
func AddDisclaimer(response string, intent Intent) string {
	switch intent {
	case IntentClinical:
		return response + clinicalDisclaimer
	case IntentVision:
		return response + visionDisclaimer
	default:
		return response
	}
}
