package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Artículo 5.- La LEY de Tránsito, año 2020!")
	want := []string{"artículo", "ley", "tránsito", "año", "2020"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := Tokenize("a, b; de"); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestJaccard(t *testing.T) {
	a := TermSet([]string{"ley", "civil", "código"})
	b := TermSet([]string{"ley", "penal"})

	got := Jaccard(a, b)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Jaccard = %f, want 0.25", got)
	}
	if Jaccard(nil, nil) != 0 {
		t.Error("Jaccard of empty sets should be 0")
	}
	if Jaccard(a, a) != 1 {
		t.Error("Jaccard of identical sets should be 1")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5}
	b := []float32{1.1, 0.2, -0.7}

	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("cosine similarity must be symmetric")
	}
	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("self similarity = %f, want 1", got)
	}
	if got := CosineSimilarity(a, []float32{-0.3, 1.2, -4.5}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite similarity = %f, want -1", got)
	}
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"empty", nil, nil},
		{"length mismatch", []float32{1, 2}, []float32{1}},
		{"zero vector", []float32{0, 0}, []float32{1, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CosineSimilarity(tc.a, tc.b); got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
		})
	}
}

func TestKeywordDensity(t *testing.T) {
	tokens := []string{"decreto", "regula", "obligaciones", "del", "tribunal"}
	got := KeywordDensity(tokens, []string{"decret", "obligaci", "tribunal"})
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("KeywordDensity = %f, want 0.6", got)
	}
	if KeywordDensity(nil, []string{"ley"}) != 0 {
		t.Error("empty tokens should yield 0")
	}
}
