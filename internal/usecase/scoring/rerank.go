package scoring

import (
	"math"
	"sort"

	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// Diversity penalties.
const (
	penaltyType         = 0.1
	penaltyJurisdiction = 0.05
	penaltyArea         = 0.05
	penaltyMax          = 0.3
)

// ranked pairs a scored document with the token set used for MMR similarity.
type ranked struct {
	ScoredDocument
	terms map[string]struct{}
}

func sortByScore(items []ranked) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}

// diversify walks the relevance order once, penalizing metadata already seen, then re-sorts.
// Absent fields are never recorded as seen.
func diversify(items []ranked) {
	seenTypes := make(map[string]struct{})
	seenJurisdictions := make(map[string]struct{})
	seenAreas := make(map[string]struct{})

	for i := range items {
		m := items[i].Metadata
		var penalty float64
		if observe(seenTypes, m.DocumentType()) {
			penalty += penaltyType
		}
		if observe(seenJurisdictions, m.CanonicalJurisdiction()) {
			penalty += penaltyJurisdiction
		}
		if observe(seenAreas, m.CanonicalArea()) {
			penalty += penaltyArea
		}
		items[i].RelevanceScore *= 1 - math.Min(penalty, penaltyMax)
	}

	sortByScore(items)
}

// observe records v and reports whether it had been seen before.
func observe(seen map[string]struct{}, v string) bool {
	if v == "" {
		return false
	}
	if _, ok := seen[v]; ok {
		return true
	}
	seen[v] = struct{}{}
	return false
}

// mmr greedily selects up to limit documents maximizing
// lambda*relevance - (1-lambda)*max Jaccard similarity to the selection.
// items must be sorted by relevance.
func mmr(items []ranked, lambda float64, limit int) []ranked {
	if len(items) == 0 || limit <= 0 {
		return nil
	}

	selected := make([]ranked, 0, min(limit, len(items)))
	selected = append(selected, items[0])
	remaining := append([]ranked(nil), items[1:]...)

	for len(selected) < limit && len(remaining) > 0 {
		best, bestScore := 0, math.Inf(-1)
		for i := range remaining {
			var maxSim float64
			for j := range selected {
				if sim := textutil.Jaccard(remaining[i].terms, selected[j].terms); sim > maxSim {
					maxSim = sim
				}
			}
			if score := lambda*remaining[i].RelevanceScore - (1-lambda)*maxSim; score > bestScore {
				best, bestScore = i, score
			}
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return selected
}
