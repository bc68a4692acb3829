package scoring

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/legal"
)

// Weights combine the five factors. They need not sum to 1.
type Weights struct {
	Semantic  float64
	Keyword   float64
	Metadata  float64
	Recency   float64
	Authority float64
}

// Config holds the scorer tunables.
type Config struct {
	Weights Weights

	// BM25 saturation and length normalization.
	K1 float64
	B  float64
	// BM25Normalization divides the raw BM25 sum together with the query length.
	// It is a heuristic squeeze into [0,1], not a calibrated constant.
	BM25Normalization float64

	MMRLambda     float64
	MMRMaxResults int

	// AllowOnDemandEmbedding embeds candidates that arrive without a vector.
	AllowOnDemandEmbedding bool

	// AuthorityWeights maps canonical source types to a trust weight.
	// Unknown source types use the legal.SourceOther entry.
	AuthorityWeights map[string]float64
	// AreaWeights scales the legal-area metadata bonus per canonical area.
	AreaWeights map[string]float64

	// Now is the clock used by the recency factor. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns placeholder weights pending calibration on a real corpus.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Semantic:  0.4,
			Keyword:   0.25,
			Metadata:  0.15,
			Recency:   0.1,
			Authority: 0.1,
		},
		K1:                     1.2,
		B:                      0.75,
		BM25Normalization:      10,
		MMRLambda:              0.7,
		MMRMaxResults:          20,
		AllowOnDemandEmbedding: true,
		AuthorityWeights:       DefaultAuthorityWeights(),
		AreaWeights:            DefaultAreaWeights(),
	}
}

// DefaultAuthorityWeights separates primary sources from secondary ones.
func DefaultAuthorityWeights() map[string]float64 {
	return map[string]float64{
		legal.SourceOfficialGazette:     1.0,
		legal.SourceConstitutionalCourt: 1.0,
		legal.SourceSupremeCourt:        0.95,
		legal.SourceLegislature:         0.9,
		legal.SourceMinistry:            0.85,
		legal.SourceCourt:               0.8,
		legal.SourceAcademic:            0.6,
		legal.SourceOther:               0.5,
		legal.SourceNews:                0.4,
	}
}

// DefaultAreaWeights returns the per-area metadata bonus scale.
func DefaultAreaWeights() map[string]float64 {
	return map[string]float64{
		legal.AreaConstitutional: 1.0,
		legal.AreaCriminal:       0.95,
		legal.AreaCivil:          0.9,
		legal.AreaAdministrative: 0.9,
		legal.AreaLabor:          0.85,
		legal.AreaTax:            0.85,
		legal.AreaCommercial:     0.8,
		legal.AreaEnvironmental:  0.8,
		legal.AreaFamily:         0.8,
	}
}

// Validate checks value ranges. Missing tables are filled by New.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"semantic": w.Semantic, "keyword": w.Keyword, "metadata": w.Metadata,
		"recency": w.Recency, "authority": w.Authority,
	} {
		if v < 0 {
			return fmt.Errorf("%s weight must not be negative: %w", name, domain.ErrInvalidConfig)
		}
	}
	if w.Semantic+w.Keyword+w.Metadata+w.Recency+w.Authority == 0 {
		return fmt.Errorf("at least one factor weight must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.K1 < 0 || c.B < 0 || c.B > 1 {
		return fmt.Errorf("bm25 parameters out of range (k1=%g, b=%g): %w", c.K1, c.B, domain.ErrInvalidConfig)
	}
	if c.BM25Normalization <= 0 {
		return fmt.Errorf("bm25 normalization must be positive: %w", domain.ErrInvalidConfig)
	}
	if c.MMRLambda < 0 || c.MMRLambda > 1 {
		return fmt.Errorf("mmr lambda %g outside [0,1]: %w", c.MMRLambda, domain.ErrInvalidConfig)
	}
	if c.MMRMaxResults <= 0 {
		return fmt.Errorf("mmr max results must be positive: %w", domain.ErrInvalidConfig)
	}
	for k, v := range c.AuthorityWeights {
		if v < 0 || v > 1 {
			return fmt.Errorf("authority weight %q=%g outside [0,1]: %w", k, v, domain.ErrInvalidConfig)
		}
	}
	for k, v := range c.AreaWeights {
		if v < 0 || v > 1 {
			return fmt.Errorf("area weight %q=%g outside [0,1]: %w", k, v, domain.ErrInvalidConfig)
		}
	}
	return nil
}

// SearchContext selects per-query behavior. Diversity and MMR are mutually exclusive.
type SearchContext struct {
	PreferRecent    bool `json:"prefer_recent"`
	EnableDiversity bool `json:"enable_diversity"`
	EnableMMR       bool `json:"enable_mmr"`
}

// Validate rejects contexts that request both re-ranking strategies.
func (sc SearchContext) Validate() error {
	if sc.EnableDiversity && sc.EnableMMR {
		return fmt.Errorf("diversity and mmr re-ranking are mutually exclusive: %w", domain.ErrInvalidConfig)
	}
	return nil
}

func (sc SearchContext) rerankLabel() string {
	switch {
	case sc.EnableMMR:
		return "mmr"
	case sc.EnableDiversity:
		return "diversity"
	default:
		return "none"
	}
}
