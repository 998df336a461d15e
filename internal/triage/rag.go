package triage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"
)

const ragPromptTemplate = `You are a helpful healthcare assistant. Answer the following question based on the provided medical knowledge base sources.

IMPORTANT GUIDELINES:
1. Base your answer on the provided sources
2. Include citations in the format [Source N] where N is the source number
3. If the sources don't contain sufficient information, clearly state this
4. Always include a disclaimer that this is for educational purposes only
5. Never provide diagnostic conclusions or specific medical advice
6. Encourage users to consult healthcare professionals

MEDICAL KNOWLEDGE BASE SOURCES:
%s

USER QUESTION:
%s

Please provide a helpful, well-cited response with appropriate medical disclaimers.`

const fallbackPromptTemplate = `You are a helpful healthcare assistant. Answer the following question to the best of your ability.

IMPORTANT GUIDELINES:
1. Provide general, educational information only
2. Never provide diagnostic conclusions or specific medical advice
3. Always encourage users to consult healthcare professionals
4. Include appropriate medical disclaimers

USER QUESTION:
%s

Please provide a helpful response with appropriate medical disclaimers.`

const visionPromptTemplate = `Analyze this medical image and provide an educational description.

User Question: %s

Please provide:
1. A detailed description of what you observe
2. Educational information about relevant anatomy or conditions
3. Appropriate confidence levels and limitations
4. Safety language emphasizing this is not a diagnostic tool

Remember: This is for educational purposes only, not for diagnosis.`

// BuildPrompt augments a user query with retrieved documents. Documents are
// numbered 1..N in the order given; the retriever's relevance ranking is
// authoritative and never re-ordered here. With no documents the fallback
// template is returned instead.
func BuildPrompt(userQuery string, documents []kb.Document) string {
	if len(documents) == 0 {
		return FallbackPrompt(userQuery)
	}

	var parts []string
	for i, doc := range documents {
		parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, doc.Title, doc.Content))
	}
	return fmt.Sprintf(ragPromptTemplate, strings.Join(parts, "\n"), userQuery)
}

// FallbackPrompt is used when retrieval is unavailable or empty.
func FallbackPrompt(userQuery string) string {
	return fmt.Sprintf(fallbackPromptTemplate, userQuery)
}

// VisionPrompt wraps a user question for the vision-capable model.
func VisionPrompt(userQuery string) string {
	return fmt.Sprintf(visionPromptTemplate, userQuery)
}

// CitationRef resolves a citation marker back to its document metadata.
type CitationRef struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

var citationPattern = regexp.MustCompile(`\[Source (\d+)\]`)

// ExtractCitations scans generated text for [Source N] markers and maps each
// distinct number back to the document it cites. Numbers outside the document
// range are silently dropped: the model may hallucinate a citation, and that
// must degrade gracefully rather than fail the request.
func ExtractCitations(generated string, documents []kb.Document) map[string]CitationRef {
	matches := citationPattern.FindAllStringSubmatch(generated, -1)
	if len(matches) == 0 {
		return map[string]CitationRef{}
	}

	out := make(map[string]CitationRef)
	for _, m := range matches {
		num := m[1]
		if _, ok := out[num]; ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(documents) {
			continue
		}
		doc := documents[idx]
		out[num] = CitationRef{Title: doc.Title, Source: doc.Source, Category: doc.Category}
	}
	return out
}
