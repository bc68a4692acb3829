package chunker

import (
	"math"

	"github.com/kailas-cloud/lexdex/internal/domain/chunk"
	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// Importance factor weights.
const (
	weightLevel    = 0.5
	weightPosition = 0.2
	weightCitation = 0.1
	weightKeywords = 0.2
)

// neutralCitation stands in for citation counts, which are not computed here.
const neutralCitation = 0.5

// neutralImportance is assigned when the importance pass is disabled.
const neutralImportance = 0.5

// legalKeywords are lowercase stems counted by the keyword-density factor.
var legalKeywords = []string{
	"artícul", "articul", "decret", "ley", "leyes", "tribunal", "corte", "sentencia", "juez", "juzgad",
	"obligaci", "derecho", "deber", "resoluci", "norma", "jurisprudencia", "demanda", "contrat",
	"sanci", "pena", "recurso", "apelaci", "constituci", "código", "codigo", "reglament", "disposici",
	"procedimiento", "competencia",
}

// scoreImportance fills Importance for every chunk of a document.
func scoreImportance(chunks []chunk.Chunk) {
	n := len(chunks)
	for i := range chunks {
		level := math.Max(0, 1-float64(chunks[i].Level)/10)
		position := positionFactor(i, n)
		density := textutil.KeywordDensity(textutil.Tokenize(chunks[i].Content), legalKeywords)
		keywords := math.Min(1, density*10)

		score := weightLevel*level + weightPosition*position + weightCitation*neutralCitation + weightKeywords*keywords
		chunks[i].Importance = math.Max(0, math.Min(1, score))
	}
}

// positionFactor is U-shaped: openings matter most, closings slightly less.
func positionFactor(i, n int) float64 {
	if n <= 0 {
		return 0.5
	}
	rel := float64(i) / float64(n)
	switch {
	case rel < 0.2:
		return 1.0
	case rel >= 0.8:
		return 0.9
	default:
		return 0.5
	}
}
