package outline

import "strings"

// Extractor runs the local, deterministic extraction path:
// detect -> reconcile candidates -> fallback if empty -> build tree.
type Extractor struct {
	Matcher   *Matcher
	Proximity int
}

// NewExtractor returns an extractor over the given matcher. A nil matcher
// selects DefaultMatcher.
func NewExtractor(m *Matcher, proximity int) *Extractor {
	if m == nil {
		m = defaultMatcher
	}
	if proximity <= 0 {
		proximity = DefaultProximity
	}
	return &Extractor{Matcher: m, Proximity: proximity}
}

// TagHeading tags candidates that come from explicit headings of a
// formatted source rather than from a family match.
const TagHeading = "heading"

// HeadingHint returns the candidate for an explicit heading at offset.
// Levels deeper than 3 are clamped to 3.
func HeadingHint(offset, level int, title string) Candidate {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return Candidate{Offset: offset, RawTitle: title, Level: level, Tag: TagHeading}
}

// Candidates returns the final, ordered heading candidates for text. Hints
// are merged with the detected candidates before collapsing.
func (e *Extractor) Candidates(text string, hints ...Candidate) []Candidate {
	detected := e.Matcher.Detect(text)
	for _, h := range hints {
		if h.Offset >= 0 && h.Offset < len(text) {
			detected = append(detected, h)
		}
	}
	candidates := ReconcileCandidatesWithin(detected, e.Proximity)
	if len(candidates) == 0 {
		candidates = Fallback(text)
	}
	return candidates
}

// Extract returns the local section tree for text. Blank text yields an
// empty tree; non-blank text in which neither detection path finds a heading
// yields a single level-1 node spanning the whole text.
func (e *Extractor) Extract(text string, hints ...Candidate) []SectionNode {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	candidates := e.Candidates(text, hints...)
	if len(candidates) == 0 {
		candidates = []Candidate{{Offset: 0, Level: 1, Tag: TagDocument}}
	}
	return BuildTree(text, candidates)
}

// ExtractLocalStructure runs the default extractor over text.
func ExtractLocalStructure(text string) []SectionNode {
	return NewExtractor(nil, DefaultProximity).Extract(text)
}
