package outline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Family is one heading convention: a marker pattern anchored at line start,
// the level it implies and the tag used to name its nodes.
type Family struct {
	Tag   string `yaml:"tag" json:"tag"`
	Level int    `yaml:"level" json:"level"`

	// Pattern must match the heading marker at the start of a line, e.g.
	// `(?m)^[ \t]*\d+\.[ \t]+`. The candidate offset is the match start.
	Pattern string `yaml:"pattern" json:"pattern"`

	// MinTitle is the minimum number of letters that must follow the marker
	// on the same line. Zero disables the guard.
	MinTitle int `yaml:"min_title" json:"min_title"`
}

// Validate checks the family definition without compiling it.
func (f Family) Validate() error {
	if f.Tag == "" {
		return fmt.Errorf("family tag is required")
	}
	if f.Level < 1 || f.Level > 3 {
		return fmt.Errorf("family %q: level %d out of range 1..3", f.Tag, f.Level)
	}
	if f.Pattern == "" {
		return fmt.Errorf("family %q: pattern is required", f.Tag)
	}
	if f.MinTitle < 0 {
		return fmt.Errorf("family %q: min_title must not be negative", f.Tag)
	}
	return nil
}

// roman matches I..XXXIX, leaving C, D, L and M alone so that multiple
// choice answers ("C. ...", "D. ...") are not taken for headings.
const roman = `(?:X{1,3}(?:IX|IV|V?I{0,3})|IX|IV|V?I{1,3}|V)`

// DefaultFamilies returns the built-in heading conventions of Vietnamese
// pedagogical reports, ordered from most to least structurally significant.
func DefaultFamilies() []Family {
	return []Family{
		{Tag: "part", Level: 1, Pattern: `(?im)^[ \t]*phần[ \t]+(?:` + roman + `|thứ[ \t]+\p{L}+|\d{1,2})(?:[ \t.:\-–]|$)`},
		{Tag: "roman", Level: 1, Pattern: `(?m)^[ \t]*` + roman + `\.(?:[ \t]|$)`},
		{Tag: "chapter", Level: 1, Pattern: `(?im)^[ \t]*chương[ \t]+(?:\d{1,2}|` + roman + `)(?:[ \t.:\-–]|$)`},
		{Tag: "named", Level: 1, Pattern: `(?im)^[ \t]*(?:mục lục|tài liệu tham khảo|phụ lục|lời cảm ơn|kết luận và (?:khuyến nghị|kiến nghị|đề xuất))(?:[ \t.:\d]|$)`},
		{Tag: "sec", Level: 2, Pattern: `(?m)^[ \t]*\d{1,3}\.[ \t]+`, MinTitle: 5},
		{Tag: "sub", Level: 3, Pattern: `(?m)^[ \t]*\d{1,3}(?:\.\d{1,3})+\.?[ \t]+\p{L}`},
		{Tag: "solution", Level: 3, Pattern: `(?im)^[ \t]*(?:giải pháp|biện pháp|bước)[ \t]+\d+`},
		{Tag: "item", Level: 3, Pattern: `(?m)^[ \t]*[a-zđ]\)[ \t]+`, MinTitle: 5},
	}
}

type compiledFamily struct {
	Family
	re *regexp.Regexp
}

// Matcher scans text with a fixed set of heading families.
type Matcher struct {
	families []compiledFamily
}

// NewMatcher compiles the given families. Families run independently, so
// their order only affects the order of the unsorted candidate list.
func NewMatcher(families ...Family) (*Matcher, error) {
	m := &Matcher{families: make([]compiledFamily, 0, len(families))}
	for _, f := range families {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("family %q: compile pattern: %w", f.Tag, err)
		}
		m.families = append(m.families, compiledFamily{Family: f, re: re})
	}
	return m, nil
}

var defaultMatcher = mustMatcher(DefaultFamilies()...)

func mustMatcher(families ...Family) *Matcher {
	m, err := NewMatcher(families...)
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultMatcher returns the matcher built from DefaultFamilies.
func DefaultMatcher() *Matcher {
	return defaultMatcher
}

// Families returns the families the matcher was built from.
func (m *Matcher) Families() []Family {
	out := make([]Family, len(m.families))
	for i, f := range m.families {
		out[i] = f.Family
	}
	return out
}

// Detect returns every heading candidate of every family, unsorted and with
// overlaps between families left in place.
func (m *Matcher) Detect(text string) []Candidate {
	var out []Candidate
	for _, f := range m.families {
		for _, loc := range f.re.FindAllStringIndex(text, -1) {
			lineEnd := endOfLine(text, loc[1])
			if f.MinTitle > 0 && countLetters(text[loc[1]:lineEnd]) < f.MinTitle {
				continue
			}
			out = append(out, Candidate{
				Offset:   loc[0],
				RawTitle: strings.TrimSpace(text[loc[0]:lineEnd]),
				Level:    f.Level,
				Tag:      f.Tag,
			})
		}
	}
	return out
}

// Detect runs the default matcher over text.
func Detect(text string) []Candidate {
	return defaultMatcher.Detect(text)
}

// endOfLine returns the index of the newline at or after from, or len(s).
func endOfLine(s string, from int) int {
	if from >= len(s) {
		return len(s)
	}
	if i := strings.IndexByte(s[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(s)
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
