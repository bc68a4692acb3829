package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// Metadata bonuses.
const (
	bonusType         = 0.3
	bonusDate         = 0.2
	bonusJurisdiction = 0.2
	bonusArea         = 0.3
	bonusKeywords     = 0.2
)

// Authority blend.
const (
	authorityBase        = 0.5
	authorityPerCitation = 0.05
	authorityMaxCitation = 0.3
	authorityCitationMix = 0.6
	authorityTableMix    = 0.4
)

const (
	neutralRecency     = 0.5
	recencyDecayDays   = 365.0
	tfidfScale         = 10.0
	jaccardSpread      = 0.5
	defaultAuthority   = 0.5
	defaultAreaWeight  = 1.0
	sigmoidSteepness   = 5.0
	sigmoidMidpointOff = 2.5
)

// view is a candidate tokenized once per scoring pass.
type view struct {
	doc       Candidate
	tokens    []string
	tf        map[string]int
	terms     map[string]struct{}
	embedding []float32
}

func newView(c Candidate) view {
	tokens := textutil.Tokenize(c.Content)
	return view{
		doc:       c,
		tokens:    tokens,
		tf:        textutil.TermFrequency(tokens),
		terms:     textutil.TermSet(tokens),
		embedding: c.Embedding,
	}
}

// semantic uses the vectors when both exist with matching dimensions, otherwise token overlap.
func semantic(f *queryFeatures, v *view) float64 {
	if len(f.embedding) > 0 && len(f.embedding) == len(v.embedding) {
		return clamp01((textutil.CosineSimilarity(f.embedding, v.embedding) + 1) / 2)
	}
	return math.Pow(textutil.Jaccard(f.termSet, v.terms), jaccardSpread)
}

// keyword is BM25 when corpus stats exist and averaged TF-IDF otherwise.
func (s *Scorer) keyword(f *queryFeatures, v *view, stats *DocumentStats) float64 {
	if len(f.terms) == 0 || len(v.tokens) == 0 {
		return 0
	}
	if stats != nil {
		return s.bm25(f, v, stats)
	}
	return tfidf(f, v)
}

func (s *Scorer) bm25(f *queryFeatures, v *view, stats *DocumentStats) float64 {
	k1, b := s.cfg.K1, s.cfg.B
	avg := stats.AverageDocumentLength
	if avg <= 0 {
		avg = 1
	}
	dl := float64(len(v.tokens))

	var score float64
	for _, term := range f.terms {
		tf := float64(v.tf[term])
		if tf == 0 {
			continue
		}
		score += f.idf[term] * tf * (k1 + 1) / (tf + k1*(1-b+b*dl/avg))
	}
	return math.Min(1, score/(float64(len(f.terms))*s.cfg.BM25Normalization))
}

func tfidf(f *queryFeatures, v *view) float64 {
	dl := float64(len(v.tokens))
	var sum float64
	for _, term := range f.terms {
		sum += float64(v.tf[term]) / dl * f.idf[term]
	}
	return math.Min(1, sum/float64(len(f.terms))*tfidfScale)
}

// metadata adds bonuses for every query hint the document's metadata satisfies.
func (s *Scorer) metadata(f *queryFeatures, m legal.Metadata) float64 {
	var score float64

	if t := m.DocumentType(); t != "" {
		if _, ok := f.docTypes[t]; ok {
			score += bonusType
		}
	}
	if f.dates != nil && m.HasDate() && f.dates.contains(*m.Date) {
		score += bonusDate
	}
	if j := m.CanonicalJurisdiction(); j != "" {
		if _, ok := f.jurisdictions[j]; ok {
			score += bonusJurisdiction
		}
	}
	if a := m.CanonicalArea(); a != "" {
		if _, ok := f.areas[a]; ok {
			w, known := s.cfg.AreaWeights[a]
			if !known {
				w = defaultAreaWeight
			}
			score += bonusArea * w
		}
	}
	if len(f.termSet) > 0 && len(m.Keywords) > 0 {
		declared := textutil.TermSet(textutil.Tokenize(strings.Join(m.Keywords, " ")))
		var hits int
		for term := range f.termSet {
			if _, ok := declared[term]; ok {
				hits++
			}
		}
		score += bonusKeywords * float64(hits) / float64(len(f.termSet))
	}

	return math.Min(1, score)
}

// recency decays exponentially with age when requested; future dates count as brand new.
func recency(sc SearchContext, m legal.Metadata, now time.Time) float64 {
	if !sc.PreferRecent {
		return neutralRecency
	}
	if !m.HasDate() {
		return 0
	}
	days := now.Sub(*m.Date).Hours() / 24
	if days <= 0 {
		return 1
	}
	return math.Exp(-days / recencyDecayDays)
}

// authority blends citation count with the per-source trust table.
func (s *Scorer) authority(m legal.Metadata) float64 {
	citations := authorityBase + math.Min(authorityMaxCitation, authorityPerCitation*float64(len(m.CitedBy)))

	w, ok := s.cfg.AuthorityWeights[legal.NormalizeSourceType(m.SourceType)]
	if !ok {
		if w, ok = s.cfg.AuthorityWeights[legal.SourceOther]; !ok {
			w = defaultAuthority
		}
	}
	return clamp01(authorityCitationMix*citations + authorityTableMix*w)
}

// combine applies the weight vector and spreads the sum with sigmoid(5x - 2.5).
func combine(b ScoreBreakdown, w Weights) float64 {
	x := b.Semantic*w.Semantic +
		b.Keyword*w.Keyword +
		b.Metadata*w.Metadata +
		b.Recency*w.Recency +
		b.Authority*w.Authority
	return 1 / (1 + math.Exp(-(sigmoidSteepness*x - sigmoidMidpointOff)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
