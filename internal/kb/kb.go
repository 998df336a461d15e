package kb

import "context"

// Document is one retrieved knowledge-base record, relevance-ranked.
type Document struct {
	Content  string  `json:"content"`
	Title    string  `json:"title"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Retriever searches the medical knowledge base. Implementations must return
// an empty slice, not an error, when the backing index is unreachable or
// unconfigured; retrieval degradation is never a request failure.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}

// NoopRetriever is used when search is disabled. It always returns nothing,
// which pushes the pipeline onto the fallback prompt path.
type NoopRetriever struct{}

func (NoopRetriever) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	return nil, nil
}
