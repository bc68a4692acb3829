package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// legalAbbreviations end in a period that never closes a sentence.
// Matched case-sensitively against the word preceding the period.
var legalAbbreviations = map[string]struct{}{
	"Art": {}, "Arts": {}, "art": {}, "arts": {},
	"Inc": {}, "inc": {},
	"Dr": {}, "Dra": {}, "Sr": {}, "Sra": {}, "Srta": {}, "Lic": {}, "Ing": {},
	"núm": {}, "Núm": {}, "No": {}, "Nro": {}, "nro": {},
	"pág": {}, "págs": {}, "p": {}, "pp": {},
	"etc": {}, "cfr": {}, "Cfr": {}, "vid": {}, "ss": {},
	"Ltda": {}, "Cía": {}, "Exp": {}, "exp": {}, "Res": {}, "Dec": {},
	"S.A": {}, "S.R.L": {}, "S.A.S": {}, "S.L": {}, "C.C": {}, "C.P": {}, "C.N": {},
}

// SplitSentences splits text at a '.', '!' or '?' that is followed by whitespace and an
// uppercase letter, unless the period belongs to a known abbreviation.
// Spans cover the text contiguously; trailing whitespace stays with the sentence before it.
func SplitSentences(text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size
		if r != '.' && r != '!' && r != '?' {
			i = next
			continue
		}

		j := next
		for j < len(text) {
			w, ws := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(w) {
				break
			}
			j += ws
		}
		if j == next || j >= len(text) {
			i = next
			continue
		}
		up, _ := utf8.DecodeRuneInString(text[j:])
		if !unicode.IsUpper(up) {
			i = next
			continue
		}
		if r == '.' && isAbbreviation(text[start:i]) {
			i = next
			continue
		}

		spans = append(spans, Span{Start: start, End: j})
		start = j
		i = j
	}

	if start < len(text) {
		spans = append(spans, Span{Start: start, End: len(text)})
	}
	return spans
}

// Sentences returns the trimmed, non-empty sentences of text.
func Sentences(text string) []string {
	spans := SplitSentences(text)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		if t := strings.TrimSpace(text[s.Start:s.End]); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// isAbbreviation reports whether the word right before a period is a protected abbreviation.
func isAbbreviation(prefix string) bool {
	idx := strings.LastIndexFunc(prefix, unicode.IsSpace)
	word := prefix[idx+1:]
	word = strings.TrimLeft(word, "(\"'«")
	if word == "" {
		return false
	}
	if _, ok := legalAbbreviations[word]; ok {
		return true
	}
	// Single capital initials ("J. Pérez").
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(r)
	}
	return false
}
