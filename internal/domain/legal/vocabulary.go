package legal

import "strings"

// Canonical document types.
const (
	TypeLaw        = "law"
	TypeDecree     = "decree"
	TypeResolution = "resolution"
	TypeRuling     = "ruling"
	TypeAgreement  = "agreement"
	TypeOrdinance  = "ordinance"
)

// Canonical jurisdictions.
const (
	JurisdictionNational   = "national"
	JurisdictionProvincial = "provincial"
	JurisdictionMunicipal  = "municipal"
)

// Canonical legal areas.
const (
	AreaConstitutional = "constitutional"
	AreaCriminal       = "criminal"
	AreaCivil          = "civil"
	AreaAdministrative = "administrative"
	AreaLabor          = "labor"
	AreaTax            = "tax"
	AreaCommercial     = "commercial"
	AreaEnvironmental  = "environmental"
	AreaFamily         = "family"
)

// Canonical source types for the authority table.
const (
	SourceOfficialGazette     = "official_gazette"
	SourceConstitutionalCourt = "constitutional_court"
	SourceSupremeCourt        = "supreme_court"
	SourceLegislature         = "legislature"
	SourceCourt               = "court"
	SourceMinistry            = "ministry"
	SourceAcademic            = "academic"
	SourceNews                = "news"
	SourceOther               = "other"
)

// Term maps a lowercase stem to a canonical value. Order matters: first match wins.
type Term struct {
	Stem      string
	Canonical string
}

// DocumentTypeTerms are the Spanish (and English) stems recognised as document types.
var DocumentTypeTerms = []Term{
	{"ley", TypeLaw}, {"law", TypeLaw},
	{"decreto", TypeDecree}, {"decree", TypeDecree},
	{"resoluci", TypeResolution}, {"resolution", TypeResolution},
	{"sentencia", TypeRuling}, {"fallo", TypeRuling}, {"ruling", TypeRuling},
	{"acuerdo", TypeAgreement}, {"convenio", TypeAgreement}, {"agreement", TypeAgreement},
	{"ordenanza", TypeOrdinance}, {"ordinance", TypeOrdinance},
}

// JurisdictionTerms are the stems recognised as jurisdictions.
var JurisdictionTerms = []Term{
	{"nacional", JurisdictionNational}, {"federal", JurisdictionNational}, {"national", JurisdictionNational},
	{"provincial", JurisdictionProvincial}, {"provincia", JurisdictionProvincial},
	{"municipal", JurisdictionMunicipal}, {"municipio", JurisdictionMunicipal},
}

// AreaTerms are the stems recognised as legal areas.
var AreaTerms = []Term{
	{"constitucional", AreaConstitutional}, {"constitutional", AreaConstitutional},
	{"penal", AreaCriminal}, {"criminal", AreaCriminal},
	{"civil", AreaCivil},
	{"administrativ", AreaAdministrative}, {"administrative", AreaAdministrative},
	{"laboral", AreaLabor}, {"trabajo", AreaLabor}, {"labor", AreaLabor},
	{"tributari", AreaTax}, {"fiscal", AreaTax}, {"impuesto", AreaTax}, {"tax", AreaTax},
	{"comercial", AreaCommercial}, {"mercantil", AreaCommercial}, {"commercial", AreaCommercial},
	{"ambiental", AreaEnvironmental}, {"environmental", AreaEnvironmental},
	{"familia", AreaFamily}, {"family", AreaFamily},
}

var sourceTypes = map[string]string{
	"official_gazette":     SourceOfficialGazette,
	"boletin_oficial":      SourceOfficialGazette,
	"gaceta_oficial":       SourceOfficialGazette,
	"constitutional_court": SourceConstitutionalCourt,
	"corte_constitucional": SourceConstitutionalCourt,
	"supreme_court":        SourceSupremeCourt,
	"corte_suprema":        SourceSupremeCourt,
	"legislature":          SourceLegislature,
	"congreso":             SourceLegislature,
	"court":                SourceCourt,
	"tribunal":             SourceCourt,
	"ministry":             SourceMinistry,
	"ministerio":           SourceMinistry,
	"academic":             SourceAcademic,
	"doctrina":             SourceAcademic,
	"news":                 SourceNews,
	"prensa":               SourceNews,
}

// NormalizeDocumentType maps a free-form label to a canonical document type.
func NormalizeDocumentType(s string) string { return normalize(s, DocumentTypeTerms) }

// NormalizeJurisdiction maps a free-form label to a canonical jurisdiction.
func NormalizeJurisdiction(s string) string { return normalize(s, JurisdictionTerms) }

// NormalizeArea maps a free-form label to a canonical legal area.
func NormalizeArea(s string) string { return normalize(s, AreaTerms) }

// NormalizeSourceType maps a label to a canonical source type; unknown or empty labels map to SourceOther.
func NormalizeSourceType(s string) string {
	key := strings.ReplaceAll(fold(s), " ", "_")
	if v, ok := sourceTypes[key]; ok {
		return v
	}
	return SourceOther
}

func normalize(s string, terms []Term) string {
	f := fold(s)
	if f == "" {
		return ""
	}
	for _, t := range terms {
		if strings.HasPrefix(f, t.Stem) {
			return t.Canonical
		}
	}
	return ""
}
