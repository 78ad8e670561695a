package outline

import (
	"strconv"
	"strings"
)

// Tags of nodes the builder manufactures itself.
const (
	TagPreamble = "preamble"
	TagDocument = "document"
)

type stackEntry struct {
	id    string
	level int
}

// BuildTree slices text into contiguous spans between consecutive candidates
// and links each node to the nearest preceding node of a strictly smaller
// level. Candidates must be offset-sorted and deduplicated.
//
// Text before the first candidate becomes a level-1 preamble node when it
// holds anything but whitespace; otherwise it is folded into the first span.
// The Start/End spans of the result partition text exactly.
func BuildTree(text string, candidates []Candidate) []SectionNode {
	if len(candidates) == 0 {
		return nil
	}

	if first := candidates[0].Offset; first > 0 && strings.TrimSpace(text[:first]) != "" {
		withPreamble := make([]Candidate, 0, len(candidates)+1)
		withPreamble = append(withPreamble, Candidate{Offset: 0, Level: 1, Tag: TagPreamble})
		candidates = append(withPreamble, candidates...)
	}

	nodes := make([]SectionNode, 0, len(candidates))
	var stack []stackEntry

	for i, c := range candidates {
		start := c.Offset
		if i == 0 {
			start = 0
		}
		end := len(text)
		if i+1 < len(candidates) {
			end = candidates[i+1].Offset
		}

		title, body := splitSpan(text[start:end])
		if title == "" {
			title = c.RawTitle
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= c.Level {
			stack = stack[:len(stack)-1]
		}
		var parentID string
		if len(stack) > 0 {
			parentID = stack[len(stack)-1].id
		}

		id := c.Tag + "-" + strconv.Itoa(i+1)
		nodes = append(nodes, SectionNode{
			ID:       id,
			Title:    title,
			Level:    c.Level,
			ParentID: parentID,
			Content:  body,
			Start:    start,
			End:      end,
		})
		stack = append(stack, stackEntry{id: id, level: c.Level})
	}
	return nodes
}

// splitSpan returns the first non-blank line of span as the title and the
// trimmed remainder as the body.
func splitSpan(span string) (title, body string) {
	span = strings.TrimLeft(span, " \t\r\n")
	line, rest, _ := strings.Cut(span, "\n")
	return strings.TrimSpace(line), strings.TrimSpace(rest)
}
