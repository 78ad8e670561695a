package outline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fallbackMarkers are the canonical top-level markers searched when no
// family produced a heading, in search order: part one through part eight
// in roman form, then in ordinal-word form.
var fallbackMarkers = []string{
	"phần i", "phần ii", "phần iii", "phần iv",
	"phần v", "phần vi", "phần vii", "phần viii",
	"phần thứ nhất", "phần thứ hai", "phần thứ ba", "phần thứ tư",
	"phần thứ năm", "phần thứ sáu", "phần thứ bảy", "phần thứ tám",
}

// fallbackMaxTitle bounds a fallback title, in runes, when the marker has no
// newline after it.
const fallbackMaxTitle = 100

var fallbackPatterns = compileFallback(fallbackMarkers)

func compileFallback(markers []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(markers))
	for i, m := range markers {
		// Case-insensitive literal; whitespace inside the marker may be any run
		// of blanks in degraded text.
		parts := strings.Fields(m)
		for j := range parts {
			parts[j] = regexp.QuoteMeta(parts[j])
		}
		out[i] = regexp.MustCompile(`(?i)` + strings.Join(parts, `[ \t]+`))
	}
	return out
}

// Fallback scans for the canonical top-level markers anywhere in text and
// returns one level-1 candidate per marker found (its first bounded
// occurrence), sorted by offset.
func Fallback(text string) []Candidate {
	var out []Candidate
	seen := make(map[int]bool)
	for i, re := range fallbackPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if !boundedAfter(text, loc[1]) {
				continue
			}
			if seen[loc[0]] {
				continue
			}
			seen[loc[0]] = true
			out = append(out, Candidate{
				Offset:   loc[0],
				RawTitle: fallbackTitle(text, loc[0]),
				Level:    1,
				Tag:      "fallback" + strconv.Itoa(i+1),
			})
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// boundedAfter reports whether the marker ending at end is not followed by a
// letter, so "phần i" does not fire inside "phần ii" or "phần in".
func boundedAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !unicode.IsLetter(r)
}

func fallbackTitle(text string, from int) string {
	if i := strings.IndexByte(text[from:], '\n'); i >= 0 {
		return strings.TrimSpace(text[from : from+i])
	}
	rest := text[from:]
	n := 0
	for i := range rest {
		if n == fallbackMaxTitle {
			return strings.TrimSpace(rest[:i])
		}
		n++
	}
	return strings.TrimSpace(rest)
}
