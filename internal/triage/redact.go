package triage

import (
	"regexp"
	"sort"
	"strings"
)

// PHICategory tags the kind of protected health information a rule detects.
type PHICategory string

const (
	PHIPhone       PHICategory = "phone"
	PHISSN         PHICategory = "ssn"
	PHIEmail       PHICategory = "email"
	PHIMRN         PHICategory = "mrn"
	PHIDateOfBirth PHICategory = "date_of_birth"
	PHIAddress     PHICategory = "address"
	PHIName        PHICategory = "name"
)

// RedactionResult carries the sanitized text and which PHI kinds were found.
// Categories preserve detection order and suppress duplicates.
type RedactionResult struct {
	SanitizedText string
	PHIDetected   bool
	Categories    []PHICategory
}

type redactionRule struct {
	category PHICategory
	pattern  *regexp.Regexp
}

// phiRules is the fixed, ordered table of PHI patterns. Matching is
// case-insensitive; each match is replaced with [REDACTED_<CATEGORY>].
var phiRules = []redactionRule{
	{PHIPhone, regexp.MustCompile(`(?i)\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{PHISSN, regexp.MustCompile(`(?i)\b\d{3}-\d{2}-\d{4}\b`)},
	{PHIEmail, regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{PHIMRN, regexp.MustCompile(`(?i)\b(?:MRN|medical record number)[\s:]?\d{6,10}\b`)},
	{PHIDateOfBirth, regexp.MustCompile(`(?i)\b(?:DOB|date of birth)[\s:]?\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{PHIAddress, regexp.MustCompile(`(?i)\b\d+\s+[\w\s]+(?:street|st|avenue|ave|road|rd|lane|ln|drive|dr|boulevard|blvd)\b`)},
}

// namePhrases reveal a personal name through context. Only the captured name
// span is replaced, not the whole phrase. The introducing phrase matches any
// casing; the name itself must be capitalized to avoid swallowing ordinary
// words after "I'm".
var namePhrases = []*regexp.Regexp{
	regexp.MustCompile(`\b(?i:my name is|i am|i'm)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`),
	regexp.MustCompile(`\b(?i:patient):\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`),
}

// span is a candidate replacement over the original text.
type span struct {
	start, end int
	category   PHICategory
	rule       int
}

// Redact removes PHI from text. All rules are evaluated against the original
// text in one pass; overlapping candidate spans are resolved by earliest
// start, then longest match, then rule order, so no byte range is processed
// twice. Pure function: no side effects, never fails.
func Redact(text string) RedactionResult {
	var candidates []span
	for i, rule := range phiRules {
		for _, loc := range rule.pattern.FindAllStringIndex(text, -1) {
			candidates = append(candidates, span{start: loc[0], end: loc[1], category: rule.category, rule: i})
		}
	}
	for i, phrase := range namePhrases {
		for _, loc := range phrase.FindAllStringSubmatchIndex(text, -1) {
			// loc[2], loc[3] bound the first capture group: the name itself.
			if len(loc) >= 4 && loc[2] >= 0 {
				candidates = append(candidates, span{start: loc[2], end: loc[3], category: PHIName, rule: len(phiRules) + i})
			}
		}
	}

	if len(candidates) == 0 {
		return RedactionResult{SanitizedText: text}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		if candidates[i].end != candidates[j].end {
			return candidates[i].end > candidates[j].end
		}
		return candidates[i].rule < candidates[j].rule
	})

	var (
		b        strings.Builder
		seen     = make(map[PHICategory]struct{})
		cats     []PHICategory
		lastEnd  int
		accepted int
	)
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		b.WriteString(text[lastEnd:c.start])
		b.WriteString(placeholder(c.category))
		lastEnd = c.end
		accepted++
		if _, ok := seen[c.category]; !ok {
			seen[c.category] = struct{}{}
			cats = append(cats, c.category)
		}
	}
	b.WriteString(text[lastEnd:])

	return RedactionResult{
		SanitizedText: b.String(),
		PHIDetected:   accepted > 0,
		Categories:    cats,
	}
}

func placeholder(cat PHICategory) string {
	return "[REDACTED_" + strings.ToUpper(string(cat)) + "]"
}
