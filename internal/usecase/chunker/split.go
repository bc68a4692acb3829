package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/lexdex/internal/textutil"
)

// avgWordLen converts the overlap character budget into a word count.
const avgWordLen = 6

// maxOverlapShare caps the overlap at a fraction of the closed chunk's words.
const maxOverlapShare = 0.2

// draft is a chunk before ids and relationships are assigned.
// start/end cover the section text consumed by this chunk, excluding the overlap prefix.
type draft struct {
	content string
	start   int
	end     int
	overlap bool
}

// splitText cuts one section's text into drafts. Text that fits is returned whole;
// otherwise sentences are packed greedily and every chunk after the first is seeded
// with a word tail of the previous one.
func (c *Chunker) splitText(text string) []draft {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runeLen(text) <= c.cfg.MaxChunkSize {
		return []draft{{content: text, start: 0, end: len(text)}}
	}

	s := &splitter{text: text, cfg: c.cfg}
	queue := s.pieces()
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if rest, ok := s.add(p); ok {
			queue = append([]textutil.Span{rest}, queue...)
		}
	}
	s.flush()
	return s.out
}

type splitter struct {
	text string
	cfg  Config

	seed      string
	bodyStart int
	bodyEnd   int
	hasBody   bool

	out []draft
}

// add consumes piece p. When only a prefix of p fits, the remainder is returned.
func (s *splitter) add(p textutil.Span) (textutil.Span, bool) {
	if !s.hasBody {
		for s.seed != "" && runeLen(s.compose(p.Start, p.End)) > s.cfg.MaxChunkSize {
			s.seed = dropFirstWord(s.seed)
		}
		s.bodyStart, s.bodyEnd, s.hasBody = p.Start, p.End, true
		return textutil.Span{}, false
	}

	if runeLen(s.compose(s.bodyStart, p.End)) <= s.cfg.MaxChunkSize {
		s.bodyEnd = p.End
		return textutil.Span{}, false
	}

	if runeLen(s.compose(s.bodyStart, s.bodyEnd)) >= s.cfg.MinChunkSize {
		s.flush()
		return p, true
	}

	// Buffer is still below the minimum: take as many leading words of p as fit.
	cut := s.fitPrefix(p)
	if cut > p.Start {
		s.bodyEnd = cut
		s.flush()
		return textutil.Span{Start: cut, End: p.End}, true
	}
	s.flush()
	return p, true
}

func (s *splitter) compose(start, end int) string {
	body := strings.TrimSpace(s.text[start:end])
	if s.seed == "" {
		return body
	}
	return s.seed + " " + body
}

func (s *splitter) flush() {
	if !s.hasBody {
		return
	}
	content := s.compose(s.bodyStart, s.bodyEnd)
	s.out = append(s.out, draft{
		content: content,
		start:   s.bodyStart,
		end:     s.bodyEnd,
		overlap: s.seed != "",
	})
	s.seed = s.overlapTail(content)
	s.hasBody = false
}

// overlapTail returns roughly OverlapSize/avgWordLen trailing words of content,
// capped at maxOverlapShare of its words.
func (s *splitter) overlapTail(content string) string {
	if s.cfg.OverlapSize <= 0 {
		return ""
	}
	words := strings.Fields(content)
	n := s.cfg.OverlapSize / avgWordLen
	if limit := int(float64(len(words)) * maxOverlapShare); n > limit {
		n = limit
	}
	if n == 0 && len(words) > 1 {
		n = 1
	}
	if n == 0 {
		return ""
	}
	return strings.Join(words[len(words)-n:], " ")
}

// fitPrefix returns the largest word start inside p such that the buffer extended up
// to it still fits, or p.Start when not even one word fits.
func (s *splitter) fitPrefix(p textutil.Span) int {
	best := p.Start
	for _, w := range wordStarts(s.text, p) {
		if runeLen(s.compose(s.bodyStart, w)) > s.cfg.MaxChunkSize {
			break
		}
		best = w
	}
	return best
}

// pieces returns the sentence spans of the text, with sentences too long to share a
// chunk with an overlap prefix broken at word boundaries.
func (s *splitter) pieces() []textutil.Span {
	limit := s.cfg.MaxChunkSize - s.cfg.OverlapSize
	if limit < s.cfg.MaxChunkSize/2 {
		limit = s.cfg.MaxChunkSize / 2
	}
	if limit < 1 {
		limit = 1
	}

	var out []textutil.Span
	for _, sp := range textutil.SplitSentences(s.text) {
		if runeLen(strings.TrimSpace(s.text[sp.Start:sp.End])) <= limit {
			out = append(out, sp)
			continue
		}
		out = append(out, breakSpan(s.text, sp, limit)...)
	}
	return out
}

// breakSpan splits sp into word-aligned sub-spans of at most limit runes (trimmed).
// A single word longer than limit is cut by runes.
func breakSpan(text string, sp textutil.Span, limit int) []textutil.Span {
	var out []textutil.Span
	start := sp.Start
	for start < sp.End {
		if runeLen(strings.TrimSpace(text[start:sp.End])) <= limit {
			out = append(out, textutil.Span{Start: start, End: sp.End})
			break
		}
		end := start
		for _, w := range wordStarts(text, textutil.Span{Start: start, End: sp.End}) {
			if runeLen(strings.TrimSpace(text[start:w])) > limit {
				break
			}
			end = w
		}
		if end == start {
			end = advanceRunes(text, start, limit)
		}
		out = append(out, textutil.Span{Start: start, End: end})
		start = end
	}
	return out
}

// wordStarts returns the byte offsets inside p (after p.Start) where a word begins.
func wordStarts(text string, p textutil.Span) []int {
	var starts []int
	prevSpace := false
	for i, r := range text[p.Start:p.End] {
		space := unicode.IsSpace(r)
		if !space && prevSpace && i > 0 {
			starts = append(starts, p.Start+i)
		}
		prevSpace = space
	}
	return starts
}

func advanceRunes(text string, start, n int) int {
	i := start
	for k := 0; k < n && i < len(text); k++ {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

func dropFirstWord(s string) string {
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[idx+1:]
	}
	return ""
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
