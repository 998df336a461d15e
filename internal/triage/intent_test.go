package triage

import (
	"strings"
	"testing"
)

func TestDetectIntentImageWins(t *testing.T) {
	t.Parallel()
	// An attached image overrides any keyword signal.
	intent, reason := DetectIntent("when can I schedule an appointment about my billing", true)
	if intent != IntentVision {
		t.Fatalf("intent = %s, want vision", intent)
	}
	if !strings.Contains(reason, "Image attached") {
		t.Fatalf("reason = %q", reason)
	}
}

func TestDetectIntentCascade(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		message string
		want    Intent
	}{
		{"vision keyword", "can you look at this x-ray for me", IntentVision},
		{"vision beats clinical", "analyze this scan of my infection", IntentVision},
		{"clinical", "I have a fever and a bad cough", IntentClinical},
		{"admin", "what are your office hours and location", IntentAdmin},
		{"clinical beats admin", "how much does treatment for this infection cost, any symptom relief", IntentClinical},
		{"tie goes admin", "appointment for my pain", IntentAdmin},
		{"default clinical", "hello there, quick question", IntentClinical},
		{"empty message", "", IntentClinical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, reason := DetectIntent(tc.message, false)
			if intent != tc.want {
				t.Fatalf("intent = %s (%s), want %s", intent, reason, tc.want)
			}
		})
	}
}

func TestDetectIntentDefaultReason(t *testing.T) {
	t.Parallel()
	_, reason := DetectIntent("hi", false)
	if reason != "Default to clinical for healthcare context" {
		t.Fatalf("reason = %q", reason)
	}
}
