package outline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// TitlePrefixLen is the number of leading runes compared by TitlesMatch.
const TitlePrefixLen = 30

// titleKey case-folds and NFC-normalizes a title, collapses whitespace and
// keeps the leading TitlePrefixLen runes.
func titleKey(title string) string {
	s := norm.NFC.String(title)
	s = cases.Fold().String(s)
	s = strings.Join(strings.Fields(s), " ")
	n := 0
	for i := range s {
		if n == TitlePrefixLen {
			return s[:i]
		}
		n++
	}
	return s
}

// TitlesMatch reports whether two titles name the same section: the folded
// leading prefix of either is contained in the other's. Blank titles never
// match.
func TitlesMatch(a, b string) bool {
	return keysMatch(titleKey(a), titleKey(b))
}

func keysMatch(ka, kb string) bool {
	if ka == "" || kb == "" {
		return false
	}
	return strings.Contains(ka, kb) || strings.Contains(kb, ka)
}
