package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SystemPrompt instructs the service to return the outline as JSON.
const SystemPrompt = `You analyse the structure of Vietnamese pedagogical reports (sáng kiến kinh nghiệm, báo cáo, luận văn). Return the document outline as a JSON array. Each element must have these fields:

- "id": short unique identifier (string), e.g. "s1", "s2"
- "title": the heading exactly as it appears in the document, including its marker ("PHẦN I.", "1.", "1.1.", "a)", "Giải pháp 1:")
- "level": 1 for parts, chapters and named top sections (MỤC LỤC, TÀI LIỆU THAM KHẢO, PHỤ LỤC), 2 for numbered sections "1.", 3 for "1.1", lettered items and "Giải pháp N" / "Biện pháp N" / "Bước N"
- "parentId": id of the enclosing section, or null for top-level sections

Rules:
- List headings in reading order
- Do not invent headings that are not in the text
- Do not include section content
- Return an empty array [] if the text has no headings

Respond with ONLY the JSON array, no other text.`

// BuildStructurePrompt creates the user prompt for one document. Text beyond
// maxChars runes is cut at a rune boundary; zero disables the limit.
func BuildStructurePrompt(title, text string, maxChars int) string {
	text, cut := TruncateRunes(text, maxChars)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document: %q\n", title))
	if cut {
		sb.WriteString("(text truncated; outline only what is shown)\n")
	}
	sb.WriteString("---\n")
	sb.WriteString(text)
	return sb.String()
}

// TruncateRunes returns the first max runes of s and whether anything was
// cut.
func TruncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
