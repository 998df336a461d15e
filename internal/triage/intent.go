package triage

import (
	"fmt"
	"strings"
)

// Intent is the coarse request category driving routing and disclaimers.
type Intent string

const (
	IntentAdmin    Intent = "admin"
	IntentClinical Intent = "clinical"
	IntentVision   Intent = "vision"
)

var adminKeywords = []string{
	"appointment", "schedule", "billing", "insurance", "cost", "price",
	"hours", "location", "doctor availability", "reschedule", "cancel",
	"registration", "forms", "paperwork", "contact", "office",
}

var clinicalKeywords = []string{
	"symptom", "diagnosis", "treatment", "medication", "prescription",
	"pain", "fever", "cough", "headache", "nausea", "infection",
	"disease", "condition", "procedure", "surgery", "test", "lab",
	"vitals", "blood pressure", "heart rate", "medical history",
}

var visionKeywords = []string{
	"image", "photo", "picture", "scan", "x-ray", "mri", "ct scan",
	"look at this", "see this", "analyze", "examine",
}

// DetectIntent classifies a sanitized message. The cascade is strictly
// ordered: an attached image always wins, then vision keywords, then the
// clinical-vs-admin keyword comparison. Ambiguous or signal-free messages
// fall back to clinical, since clinical answers carry the stronger
// disclaimers.
func DetectIntent(message string, hasImage bool) (Intent, string) {
	if hasImage {
		return IntentVision, "Image attached - routed to vision model"
	}

	lower := strings.ToLower(message)

	if score := countHits(lower, visionKeywords); score > 0 {
		return IntentVision, fmt.Sprintf("Vision keywords detected (score: %d)", score)
	}

	clinicalScore := countHits(lower, clinicalKeywords)
	adminScore := countHits(lower, adminKeywords)

	switch {
	case clinicalScore > adminScore:
		return IntentClinical, fmt.Sprintf("Clinical keywords detected (score: %d)", clinicalScore)
	case adminScore > 0:
		return IntentAdmin, fmt.Sprintf("Administrative keywords detected (score: %d)", adminScore)
	default:
		return IntentClinical, "Default to clinical for healthcare context"
	}
}

func countHits(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
