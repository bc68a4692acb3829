package chunker

import (
	"fmt"
	"strings"
	"unicode"
)

// NoParent marks a top-level section.
const NoParent = -1

// Section is a node of the structural parse. Parent and Children are indexes into
// DocumentStructure.Sections.
type Section struct {
	ID        string      `json:"id"`
	Type      SectionType `json:"type"`
	Level     int         `json:"level"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	StartLine int         `json:"start_line"`
	EndLine   int         `json:"end_line"`
	Parent    int         `json:"parent"`
	Children  []int       `json:"children,omitempty"`
}

// Text is what gets chunked: the heading line followed by the section body.
func (s *Section) Text() string {
	switch {
	case s.Title == "":
		return s.Content
	case s.Content == "":
		return s.Title
	default:
		return s.Title + "\n" + s.Content
	}
}

// HierarchyNode is one node of the rebuilt section forest.
type HierarchyNode struct {
	Section  int             `json:"section"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// DocumentStructure is the parse result for one document.
type DocumentStructure struct {
	Title     string          `json:"title"`
	Sections  []Section       `json:"sections"`
	Hierarchy []HierarchyNode `json:"hierarchy"`
}

// Roots returns the indexes of top-level sections in document order.
func (d *DocumentStructure) Roots() []int {
	roots := make([]int, 0, len(d.Hierarchy))
	for _, n := range d.Hierarchy {
		roots = append(roots, n.Section)
	}
	return roots
}

// parser accumulates sections while scanning lines.
type parser struct {
	rules       []Rule
	sections    []Section
	current     *Section
	lines       []string
	hasPreamble bool
	seenIDs     map[string]struct{}
}

// parseStructure never fails: lines that match no rule fold into the open section
// or into a single synthetic preamble.
func parseStructure(content string, rules []Rule) DocumentStructure {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	p := &parser{rules: rules, seenIDs: make(map[string]struct{})}
	for i, line := range lines {
		p.consume(i, line)
	}
	p.close()

	sections := p.sections
	buildHierarchy(sections)

	return DocumentStructure{
		Title:     documentTitle(lines),
		Sections:  sections,
		Hierarchy: forest(sections),
	}
}

func (p *parser) consume(idx int, line string) {
	trimmed := strings.TrimSpace(line)

	if trimmed != "" {
		for _, rule := range p.rules {
			m := rule.Pattern.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			marker := ""
			if len(m) > 1 {
				marker = m[1]
			}
			p.open(idx, trimmed, marker, rule)
			return
		}
	}

	if p.current != nil {
		p.lines = append(p.lines, line)
		p.current.EndLine = idx
		return
	}

	if trimmed == "" || p.hasPreamble {
		return
	}

	p.hasPreamble = true
	p.current = &Section{
		ID:        p.uniqueID(string(TypePreamble), "", idx),
		Type:      TypePreamble,
		Level:     0,
		StartLine: idx,
		EndLine:   idx,
		Parent:    NoParent,
	}
	p.lines = []string{line}
}

func (p *parser) open(idx int, heading, marker string, rule Rule) {
	p.close()

	title := heading
	var first []string
	if rule.Type == TypeArticle {
		// "Artículo 5.- El texto..." keeps the heading and seeds the opening sentence.
		if cut := strings.Index(heading, ".-"); cut >= 0 {
			title = strings.TrimSpace(heading[:cut+2])
			if rest := strings.TrimSpace(heading[cut+2:]); rest != "" {
				first = []string{rest}
			}
		}
	}
	if rule.Type == TypePreamble {
		p.hasPreamble = true
	}

	p.current = &Section{
		ID:        p.uniqueID(string(rule.Type), marker, idx),
		Type:      rule.Type,
		Level:     rule.Level,
		Title:     title,
		StartLine: idx,
		EndLine:   idx,
		Parent:    NoParent,
	}
	p.lines = first
}

func (p *parser) close() {
	if p.current == nil {
		return
	}
	p.current.Content = strings.TrimSpace(strings.Join(p.lines, "\n"))
	p.sections = append(p.sections, *p.current)
	p.current = nil
	p.lines = nil
}

// uniqueID builds "<type>-<marker>", falling back to the line index when the marker
// is empty or already taken.
func (p *parser) uniqueID(typ, marker string, idx int) string {
	slug := slugify(marker)
	id := fmt.Sprintf("%s-%s", typ, slug)
	if slug == "" {
		id = fmt.Sprintf("%s-l%d", typ, idx)
	}
	if _, dup := p.seenIDs[id]; dup {
		id = fmt.Sprintf("%s-l%d", id, idx)
	}
	p.seenIDs[id] = struct{}{}
	return id
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// buildHierarchy links sections with a level stack: a section becomes the child of the
// nearest preceding section with a strictly smaller level.
func buildHierarchy(sections []Section) {
	stack := make([]int, 0, 8)
	for i := range sections {
		for len(stack) > 0 && sections[stack[len(stack)-1]].Level >= sections[i].Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			sections[i].Parent = parent
			sections[parent].Children = append(sections[parent].Children, i)
		}
		stack = append(stack, i)
	}
}

func forest(sections []Section) []HierarchyNode {
	var build func(idx int) HierarchyNode
	build = func(idx int) HierarchyNode {
		node := HierarchyNode{Section: idx}
		for _, c := range sections[idx].Children {
			node.Children = append(node.Children, build(c))
		}
		return node
	}

	var roots []HierarchyNode
	for i := range sections {
		if sections[i].Parent == NoParent {
			roots = append(roots, build(i))
		}
	}
	return roots
}

func documentTitle(lines []string) string {
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}
