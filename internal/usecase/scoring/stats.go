package scoring

import (
	"math"

	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// DocumentStats is an immutable corpus snapshot for BM25 and IDF.
// Build a new one when the corpus changes; never mutate a published snapshot.
type DocumentStats struct {
	TotalDocuments          int            `json:"total_documents"`
	AverageDocumentLength   float64        `json:"average_document_length"`
	DocumentLengths         map[string]int `json:"document_lengths"`
	TermDocumentFrequencies map[string]int `json:"term_document_frequencies"`
}

// BuildStats tokenizes every candidate once and records lengths and document frequencies.
func BuildStats(docs []Candidate) *DocumentStats {
	s := &DocumentStats{
		DocumentLengths:         make(map[string]int, len(docs)),
		TermDocumentFrequencies: make(map[string]int),
	}

	var total int
	for _, d := range docs {
		tokens := textutil.Tokenize(d.Content)
		s.DocumentLengths[d.ID] = len(tokens)
		total += len(tokens)
		for term := range textutil.TermSet(tokens) {
			s.TermDocumentFrequencies[term]++
		}
	}

	s.TotalDocuments = len(docs)
	if len(docs) > 0 {
		s.AverageDocumentLength = float64(total) / float64(len(docs))
	}
	return s
}

// IDF returns ln((N+1)/(df+1)) + 1 for known terms and 0 for terms absent from the corpus.
func (s *DocumentStats) IDF(term string) float64 {
	df, ok := s.TermDocumentFrequencies[term]
	if !ok || df == 0 {
		return 0
	}
	return math.Log(float64(s.TotalDocuments+1)/float64(df+1)) + 1
}
