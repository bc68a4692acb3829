package scoring

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain/legal"
	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// neutralIDF is used for every term while no corpus stats are available.
const neutralIDF = 1.0

var (
	phraseRe     = regexp.MustCompile(`"([^"]+)"`)
	yearRangeRe  = regexp.MustCompile(`desde\s+(?:el\s+)?(?:año\s+)?(\d{4})\s+hasta\s+(?:el\s+)?(?:año\s+)?(\d{4})`)
	singleYearRe = regexp.MustCompile(`año\s+(\d{4})`)
)

// dateRange is inclusive on both ends.
type dateRange struct {
	from time.Time
	to   time.Time
}

func (r *dateRange) contains(t time.Time) bool {
	return !t.Before(r.from) && !t.After(r.to)
}

type queryFeatures struct {
	terms       []string
	termSet     map[string]struct{}
	phrases     []string
	idf         map[string]float64
	embedding   []float32
	embedFailed bool

	docTypes      map[string]struct{}
	jurisdictions map[string]struct{}
	areas         map[string]struct{}
	dates         *dateRange
}

// extractFeatures never fails: a missing embedding only disables the vector path.
func (s *Scorer) extractFeatures(ctx context.Context, query string, stats *DocumentStats) queryFeatures {
	terms := textutil.Tokenize(query)
	lower := strings.ToLower(query)

	f := queryFeatures{
		terms:         terms,
		termSet:       textutil.TermSet(terms),
		idf:           make(map[string]float64, len(terms)),
		docTypes:      matchTerms(lower, legal.DocumentTypeTerms),
		jurisdictions: matchTerms(lower, legal.JurisdictionTerms),
		areas:         matchTerms(lower, legal.AreaTerms),
		dates:         extractDateRange(lower),
	}

	for _, m := range phraseRe.FindAllStringSubmatch(query, -1) {
		if p := strings.TrimSpace(m[1]); p != "" {
			f.phrases = append(f.phrases, p)
		}
	}

	for _, t := range terms {
		if stats == nil {
			f.idf[t] = neutralIDF
			continue
		}
		f.idf[t] = stats.IDF(t)
	}

	if s.queryEmbedder != nil && len(terms) > 0 {
		res, err := s.queryEmbedder.Embed(ctx, query)
		if err != nil {
			s.logger.Warn("Query embedding failed, using lexical similarity", zap.Error(err))
			f.embedFailed = true
		} else {
			f.embedding = res.Embedding
		}
	}

	return f
}

// matchTerms returns the canonical values whose stem occurs anywhere in the lowercased query,
// so hints inside compound words count too.
func matchTerms(lower string, vocab []legal.Term) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range vocab {
		if strings.Contains(lower, t.Stem) {
			out[t.Canonical] = struct{}{}
		}
	}
	return out
}

func extractDateRange(lower string) *dateRange {
	if m := yearRangeRe.FindStringSubmatch(lower); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if from > to {
			from, to = to, from
		}
		return yearsRange(from, to)
	}
	if m := singleYearRe.FindStringSubmatch(lower); m != nil {
		y, _ := strconv.Atoi(m[1])
		return yearsRange(y, y)
	}
	return nil
}

func yearsRange(from, to int) *dateRange {
	return &dateRange{
		from: time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC),
		to:   time.Date(to, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
}
