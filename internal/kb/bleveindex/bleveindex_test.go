package bleveindex

import (
	"context"
	"testing"
)

func newSeededIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := InMemory()
	if err != nil {
		t.Fatalf("in-memory index: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	if err := idx.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return idx
}

func TestSeedAndCount(t *testing.T) {
	idx := newSeededIndex(t)
	n, err := idx.DocCount()
	if err != nil {
		t.Fatalf("doc count: %v", err)
	}
	if want := uint64(len(SeedDocuments())); n != want {
		t.Fatalf("doc count = %d, want %d", n, want)
	}
}

func TestSearchRelevance(t *testing.T) {
	idx := newSeededIndex(t)
	docs, err := idx.Search(context.Background(), "cold or flu symptoms", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) == 0 {
		t.Fatalf("expected hits for flu query")
	}
	if docs[0].Title == "" || docs[0].Content == "" {
		t.Fatalf("stored fields missing: %+v", docs[0])
	}
	if docs[0].Score <= 0 {
		t.Fatalf("score = %v", docs[0].Score)
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].Score > docs[i-1].Score {
			t.Fatalf("hits not relevance-ordered: %v > %v", docs[i].Score, docs[i-1].Score)
		}
	}
}

func TestSearchTopK(t *testing.T) {
	idx := newSeededIndex(t)
	docs, err := idx.Search(context.Background(), "appointment", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) > 1 {
		t.Fatalf("topK not honored: %d hits", len(docs))
	}
}

func TestSearchNoHits(t *testing.T) {
	idx := newSeededIndex(t)
	docs, err := idx.Search(context.Background(), "zzzzqqqq", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("unexpected hits: %v", docs)
	}
}
