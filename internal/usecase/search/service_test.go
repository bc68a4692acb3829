package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
)

func TestSearch_RanksByKeyword(t *testing.T) {
	lister := &mockLister{chunks: testChunks()}
	svc := New(lister, newRecordingScorer(t), nil, nil)

	resp, err := svc.Search(context.Background(), "leyes", Request{Query: "arrendamiento"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Candidates != 4 || len(resp.Results) != 4 {
		t.Fatalf("expected 4 candidates and results, got %d/%d", resp.Candidates, len(resp.Results))
	}
	top := resp.Results[0].ID
	if top != "a" && top != "c" {
		t.Errorf("expected an arrendamiento chunk first, got %q", top)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].RelevanceScore > resp.Results[i-1].RelevanceScore {
			t.Fatalf("results not sorted at %d", i)
		}
	}
}

func TestSearch_StatsCachedUntilInvalidated(t *testing.T) {
	lister := &mockLister{chunks: testChunks()}
	sc := newRecordingScorer(t)
	cache := NewStatsCache()
	svc := New(lister, sc, cache, nil)
	ctx := context.Background()

	for range 2 {
		if _, err := svc.Search(ctx, "leyes", Request{Query: "ley"}); err != nil {
			t.Fatal(err)
		}
	}
	if sc.stats[0] == nil || sc.stats[0] != sc.stats[1] {
		t.Fatal("expected the same snapshot to be reused")
	}

	lister.chunks = testChunks()[:2]
	cache.Invalidate("leyes")
	if _, err := svc.Search(ctx, "leyes", Request{Query: "ley"}); err != nil {
		t.Fatal(err)
	}
	if sc.stats[2] == sc.stats[1] || sc.stats[2].TotalDocuments != 2 {
		t.Errorf("expected a rebuilt snapshot of 2 documents, got %+v", sc.stats[2])
	}
}

func TestSearch_IngestDuringLoadDoesNotPublishStaleStats(t *testing.T) {
	cache := NewStatsCache()
	grown := append(testChunks(), chunk.Chunk{
		ID: "e", DocumentID: "doc-e", Content: "Nueva ley de amparo sobre usufructo y servidumbre.",
	})
	lister := &ingestingLister{
		before: testChunks(),
		after:  grown,
		during: func() { cache.Invalidate("leyes") },
	}
	sc := newRecordingScorer(t)
	svc := New(lister, sc, cache, nil)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "leyes", Request{Query: "usufructo"}); err != nil {
		t.Fatal(err)
	}
	if sc.stats[0] == nil || sc.stats[0].TotalDocuments != 4 {
		t.Fatalf("first query must score against the corpus it loaded, got %+v", sc.stats[0])
	}
	if cached, _ := cache.Get("leyes"); cached != nil {
		t.Fatalf("stale snapshot of %d documents was published", cached.TotalDocuments)
	}

	resp, err := svc.Search(ctx, "leyes", Request{Query: "usufructo"})
	if err != nil {
		t.Fatal(err)
	}
	cached, _ := cache.Get("leyes")
	if cached == nil || cached.TotalDocuments != 5 {
		t.Fatalf("expected a published snapshot of 5 documents, got %+v", cached)
	}
	if resp.Results[0].ID != "e" || resp.Results[0].Breakdown.Keyword == 0 {
		t.Errorf("new document must be found by its terms, got %+v", resp.Results[0])
	}
}

func TestStatsCache_StalePutRejected(t *testing.T) {
	c := NewStatsCache()
	_, gen := c.Get("leyes")
	c.Invalidate("leyes")

	if c.Put("leyes", gen, &scoring.DocumentStats{TotalDocuments: 9}) {
		t.Fatal("expected put with a stale generation to be rejected")
	}
	if s, _ := c.Get("leyes"); s != nil {
		t.Errorf("expected no snapshot, got %+v", s)
	}

	_, gen = c.Get("leyes")
	if !c.Put("leyes", gen, &scoring.DocumentStats{TotalDocuments: 1}) {
		t.Fatal("expected fresh put to succeed")
	}
}

func TestStatsCache_Concurrent(t *testing.T) {
	c := NewStatsCache()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, gen := c.Get("leyes")
			c.Put("leyes", gen, &scoring.DocumentStats{TotalDocuments: i})
		}()
		go func() {
			defer wg.Done()
			c.Invalidate("leyes")
		}()
	}
	wg.Wait()
}

func TestSearch_LimitAndMinScore(t *testing.T) {
	svc := New(&mockLister{chunks: testChunks()}, newRecordingScorer(t), nil, nil).WithLimits(2, 3)
	ctx := context.Background()

	resp, err := svc.Search(ctx, "leyes", Request{Query: "arrendamiento"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("expected default limit 2, got %d", len(resp.Results))
	}

	resp, err = svc.Search(ctx, "leyes", Request{Query: "arrendamiento", Limit: 3, MinScore: 0.99})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range resp.Results {
		if r.RelevanceScore < 0.99 {
			t.Errorf("result %s below min score: %v", r.ID, r.RelevanceScore)
		}
	}

	if _, err := svc.Search(ctx, "leyes", Request{Query: "x", Limit: 4}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for limit over max, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		req        Request
	}{
		{"empty query", "leyes", Request{Query: "  "}},
		{"bad collection", "a b", Request{Query: "x"}},
		{"negative limit", "leyes", Request{Query: "x", Limit: -1}},
		{"min score above one", "leyes", Request{Query: "x", MinScore: 1.5}},
		{"both rerankers", "leyes", Request{
			Query:   "x",
			Context: scoring.SearchContext{EnableDiversity: true, EnableMMR: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &mockLister{chunks: testChunks()}
			svc := New(lister, newRecordingScorer(t), nil, nil)
			_, err := svc.Search(context.Background(), tt.collection, tt.req)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			if lister.calls != 0 {
				t.Error("invalid requests must not load the collection")
			}
		})
	}
}

func TestSearch_CollectionNotFound(t *testing.T) {
	lister := &mockLister{err: domain.ErrCollectionNotFound}
	svc := New(lister, newRecordingScorer(t), nil, nil)

	if _, err := svc.Search(context.Background(), "nada", Request{Query: "x"}); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestSearch_MMRRespectsLimit(t *testing.T) {
	svc := New(&mockLister{chunks: testChunks()}, newRecordingScorer(t), nil, nil)

	resp, err := svc.Search(context.Background(), "leyes", Request{
		Query:   "arrendamiento ley",
		Limit:   3,
		Context: scoring.SearchContext{EnableMMR: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(resp.Results))
	}
	seen := map[string]bool{}
	for _, r := range resp.Results {
		if seen[r.ID] {
			t.Errorf("duplicate result %s", r.ID)
		}
		seen[r.ID] = true
	}
}
