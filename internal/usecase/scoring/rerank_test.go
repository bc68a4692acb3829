package scoring

import (
	"testing"

	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/textutil"
)

func item(id string, score float64, content string, meta legal.Metadata) ranked {
	return ranked{
		ScoredDocument: ScoredDocument{
			Candidate:      Candidate{ID: id, Content: content, Metadata: meta},
			RelevanceScore: score,
		},
		terms: textutil.TermSet(textutil.Tokenize(content)),
	}
}

func ids(items []ranked) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func TestMMR_PrefersNovelDocuments(t *testing.T) {
	items := []ranked{
		item("a", 0.9, "contrato de locación de inmuebles urbanos", legal.Metadata{}),
		item("b", 0.88, "contrato de locación de inmuebles urbanos", legal.Metadata{}),
		item("c", 0.7, "régimen penal juvenil", legal.Metadata{}),
	}

	got := ids(mmr(items, 0.7, 20))
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mmr order=%v, want %v", got, want)
		}
	}
}

func TestMMR_LambdaOneIsRelevanceOrder(t *testing.T) {
	items := []ranked{
		item("a", 0.9, "uno dos tres", legal.Metadata{}),
		item("b", 0.8, "uno dos tres", legal.Metadata{}),
		item("c", 0.1, "cuatro cinco", legal.Metadata{}),
	}
	got := ids(mmr(items, 1, 20))
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("lambda=1 should keep relevance order, got %v", got)
	}
}

func TestMMR_Limits(t *testing.T) {
	if mmr(nil, 0.7, 20) != nil {
		t.Error("empty input should yield nil")
	}
	items := []ranked{item("a", 0.9, "x", legal.Metadata{}), item("b", 0.5, "y", legal.Metadata{})}
	if got := mmr(items, 0.7, 1); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("limit 1 should return the top document, got %v", ids(got))
	}
}

func TestDiversify_PenaltyComposition(t *testing.T) {
	national := legal.Metadata{Type: "ley", Jurisdiction: "nacional", LegalArea: "civil"}
	items := []ranked{
		item("first", 1, "a", national),
		item("repeat", 1, "b", national),
		item("typeOnly", 1, "c", legal.Metadata{Type: "ley", Jurisdiction: "municipal", LegalArea: "penal"}),
		item("absent", 1, "d", legal.Metadata{}),
		item("absent2", 1, "e", legal.Metadata{}),
	}

	diversify(items)
	got := make(map[string]float64)
	for _, it := range items {
		got[it.ID] = it.RelevanceScore
	}

	want := map[string]float64{
		"first":    1,
		"repeat":   1 - (penaltyType + penaltyJurisdiction + penaltyArea),
		"typeOnly": 1 - penaltyType,
		"absent":   1,
		"absent2":  1,
	}
	for id, w := range want {
		if !approx(got[id], w) {
			t.Errorf("%s: score=%f, want %f", id, got[id], w)
		}
	}
	if items[len(items)-1].ID != "repeat" {
		t.Errorf("most penalized document should sort last, got %v", ids(items))
	}
}
