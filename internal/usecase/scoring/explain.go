package scoring

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	bandHigh     = 0.7
	bandModerate = 0.3
)

const fallbackExplanation = "Moderate relevance to the query"

// explain describes the factors that cleared a band. Recency is only described when it was
// requested; authority only in the high band since its floor already sits above moderate.
func explain(b ScoreBreakdown, sc SearchContext, phrases []string) string {
	var parts []string

	parts = appendBand(parts, b.Semantic, "high semantic similarity", "moderate semantic similarity")
	parts = appendBand(parts, b.Keyword, "strong keyword match", "partial keyword match")
	parts = appendBand(parts, b.Metadata, "metadata closely matches the query", "some metadata matches the query")
	if sc.PreferRecent {
		parts = appendBand(parts, b.Recency, "recent publication", "fairly recent publication")
	}
	parts = appendBand(parts, b.Authority, "authoritative source", "")

	for _, p := range phrases {
		parts = append(parts, fmt.Sprintf("contains the phrase %q", p))
	}

	if len(parts) == 0 {
		return fallbackExplanation
	}
	return capitalize(strings.Join(parts, "; "))
}

func appendBand(parts []string, v float64, high, moderate string) []string {
	switch {
	case v > bandHigh:
		return append(parts, high)
	case v > bandModerate && moderate != "":
		return append(parts, moderate)
	default:
		return parts
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
