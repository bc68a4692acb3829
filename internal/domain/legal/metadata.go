// Package legal describes the metadata attached to legal documents.
// Every field is optional: a zero value means "absent" and never matches anything.
package legal

import (
	"strings"
	"time"
)

// Metadata is the structured record persisted alongside a legal document.
type Metadata struct {
	Title        string            `json:"title,omitempty"`
	Type         string            `json:"type,omitempty"`
	Date         *time.Time        `json:"date,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	LegalArea    string            `json:"legal_area,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	CitedBy      []string          `json:"cited_by,omitempty"`
	SourceType   string            `json:"source_type,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// DocumentType returns the canonical document type, or "" when absent or unknown.
func (m Metadata) DocumentType() string { return NormalizeDocumentType(m.Type) }

// CanonicalJurisdiction returns the canonical jurisdiction, or "" when absent or unknown.
func (m Metadata) CanonicalJurisdiction() string { return NormalizeJurisdiction(m.Jurisdiction) }

// CanonicalArea returns the canonical legal area, or "" when absent or unknown.
func (m Metadata) CanonicalArea() string { return NormalizeArea(m.LegalArea) }

// HasDate reports whether a publication date is set.
func (m Metadata) HasDate() bool { return m.Date != nil && !m.Date.IsZero() }

// Clone returns a deep copy so chunks never share slices with their source document.
func (m Metadata) Clone() Metadata {
	c := m
	if m.Date != nil {
		d := *m.Date
		c.Date = &d
	}
	if m.Keywords != nil {
		c.Keywords = append([]string(nil), m.Keywords...)
	}
	if m.CitedBy != nil {
		c.CitedBy = append([]string(nil), m.CitedBy...)
	}
	if m.Extra != nil {
		c.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func fold(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
