package chunker

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/domain"
)

// SectionType is the structural role of a section.
type SectionType string

// Section types recognised by the parser.
const (
	TypeTitle        SectionType = "title"
	TypeChapter      SectionType = "chapter"
	TypeSection      SectionType = "section"
	TypeArticle      SectionType = "article"
	TypeParagraph    SectionType = "paragraph"
	TypeClause       SectionType = "clause"
	TypeConsidering  SectionType = "considering"
	TypeResolves     SectionType = "resolves"
	TypePreamble     SectionType = "preamble"
	TypeTransitional SectionType = "transitional"
	TypeFinal        SectionType = "final"
	TypeDerogatory   SectionType = "derogatory"
)

var knownTypes = map[SectionType]struct{}{
	TypeTitle: {}, TypeChapter: {}, TypeSection: {}, TypeArticle: {}, TypeParagraph: {}, TypeClause: {},
	TypeConsidering: {}, TypeResolves: {}, TypePreamble: {}, TypeTransitional: {}, TypeFinal: {}, TypeDerogatory: {},
}

// Rule detects a section boundary. The first capture group, when present and non-empty,
// identifies the section (e.g. the article number).
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Level   int
	Type    SectionType
}

type ruleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Level   int    `yaml:"level"`
	Type    string `yaml:"type"`
}

// defaultRuleSpecs is the Spanish legal vocabulary, in priority order.
// Provision headers come before articles so "Artículo transitorio" is not read as an article.
var defaultRuleSpecs = []ruleSpec{
	{"preamble", `(?i)^PRE[ÁA]MBULO\b`, 0, string(TypePreamble)},
	{"transitional", `(?i)^(?:DISPOSICI[ÓO]N(?:ES)?\s+TRANSITORIAS?|ART[ÍI]CULOS?\s+TRANSITORIOS?)\s*([A-ZÁÉÍÓÚ]+|\d+)?`, 1, string(TypeTransitional)},
	{"final", `(?i)^DISPOSICI[ÓO]N(?:ES)?\s+FINAL(?:ES)?\s*([A-ZÁÉÍÓÚ]+|\d+)?`, 1, string(TypeFinal)},
	{"derogatory", `(?i)^DISPOSICI[ÓO]N(?:ES)?\s+DEROGATORIAS?\s*([A-ZÁÉÍÓÚ]+|\d+)?`, 1, string(TypeDerogatory)},
	{"title", `(?i)^T[ÍI]TULO\s+([IVXLCDM]+|\d+|PRELIMINAR|[ÚU]NICO)\b`, 1, string(TypeTitle)},
	{"chapter", `(?i)^CAP[ÍI]TULO\s+([IVXLCDM]+|\d+|PRELIMINAR|[ÚU]NICO)\b`, 2, string(TypeChapter)},
	{"section", `(?i)^SECCI[ÓO]N\s+([IVXLCDM]+|\d+|[ÚU]NICA)\b`, 3, string(TypeSection)},
	{"article", `(?i)^(?:ART[ÍI]CULO|ART\.)\s*(\d+(?:\s*(?:bis|ter|quater))?)\s*[°º]?`, 4, string(TypeArticle)},
	{"clause", `(?i)^CL[ÁA]USULA\s+([A-ZÁÉÍÓÚ]+|\d+)`, 4, string(TypeClause)},
	{"paragraph", `(?i)^(?:§\s*|P[ÁA]RRAFO\s+|PAR[ÁA]GRAFO\s+)(\d+)`, 5, string(TypeParagraph)},
	{"considering", `^CONSIDERANDOS?\b:?`, 1, string(TypeConsidering)},
	{"resolves", `^(?:SE\s+)?(?:RESUELVE|DECRETA|ORDENA)\b:?`, 1, string(TypeResolves)},
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	rules, err := compileRules(defaultRuleSpecs)
	if err != nil {
		panic(fmt.Sprintf("default chunker rules: %v", err))
	}
	return rules
}

// LoadRules reads a YAML rule table: a list of {name, pattern, level, type}.
// Patterns are matched against trimmed lines in list order.
func LoadRules(r io.Reader) ([]Rule, error) {
	var specs []ruleSpec
	if err := yaml.NewDecoder(r).Decode(&specs); err != nil {
		return nil, fmt.Errorf("decode rules: %w: %w", domain.ErrInvalidConfig, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("rule table is empty: %w", domain.ErrInvalidConfig)
	}
	return compileRules(specs)
}

func compileRules(specs []ruleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		typ := SectionType(s.Type)
		if _, ok := knownTypes[typ]; !ok {
			return nil, fmt.Errorf("rule %d (%s): unknown section type %q: %w", i, s.Name, s.Type, domain.ErrInvalidConfig)
		}
		if s.Level < 0 {
			return nil, fmt.Errorf("rule %d (%s): negative level: %w", i, s.Name, domain.ErrInvalidConfig)
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w: %w", i, s.Name, domain.ErrInvalidConfig, err)
		}
		name := s.Name
		if name == "" {
			name = s.Type
		}
		rules = append(rules, Rule{Name: name, Pattern: re, Level: s.Level, Type: typ})
	}
	return rules, nil
}
