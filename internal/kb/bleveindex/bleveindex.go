package bleveindex

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"
)

// Index is a local bleve-backed medical knowledge base implementing
// kb.Retriever.
type Index struct {
	idx bleve.Index
}

// indexedDoc is the stored shape of one knowledge-base record.
type indexedDoc struct {
	Content  string `json:"content"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// Open opens the index at path, creating it when it does not exist yet.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open knowledge base index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// InMemory builds an ephemeral index. Test and demo use.
func InMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx}, nil
}

// Add indexes a single document under the given id.
func (i *Index) Add(id string, doc kb.Document) error {
	return i.idx.Index(id, indexedDoc{
		Content:  doc.Content,
		Title:    doc.Title,
		Source:   doc.Source,
		Category: doc.Category,
	})
}

// AddBatch indexes documents in one batch, ids assigned sequentially.
func (i *Index) AddBatch(docs []kb.Document) error {
	batch := i.idx.NewBatch()
	for n, doc := range docs {
		if err := batch.Index(strconv.Itoa(n+1), indexedDoc{
			Content:  doc.Content,
			Title:    doc.Title,
			Source:   doc.Source,
			Category: doc.Category,
		}); err != nil {
			return err
		}
	}
	return i.idx.Batch(batch)
}

// Search runs a relevance-ranked match query. Per the retriever contract it
// degrades to an empty result set instead of surfacing index errors; the
// pipeline falls back to the plain prompt path transparently.
func (i *Index) Search(ctx context.Context, query string, topK int) ([]kb.Document, error) {
	if topK <= 0 {
		topK = 3
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = []string{"content", "title", "source", "category"}

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, nil
	}

	out := make([]kb.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, kb.Document{
			Content:  fieldString(hit.Fields, "content"),
			Title:    fieldString(hit.Fields, "title"),
			Source:   fieldString(hit.Fields, "source"),
			Category: fieldString(hit.Fields, "category"),
			Score:    hit.Score,
		})
	}
	return out, nil
}

// DocCount reports how many documents are indexed.
func (i *Index) DocCount() (uint64, error) {
	return i.idx.DocCount()
}

func (i *Index) Close() error {
	return i.idx.Close()
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
