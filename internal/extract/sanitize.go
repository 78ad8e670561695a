package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// MaxLevel is the deepest level accepted from a service.
const MaxLevel = 6

// RawSection is one section as a service returned it. Every field tolerates
// the wrong JSON type and decodes it as empty.
type RawSection struct {
	ID       looseString `json:"id"`
	Title    looseString `json:"title"`
	Level    looseInt    `json:"level"`
	ParentID looseString `json:"parentId"`
	Content  looseString `json:"content"`
}

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	*s = ""
	return nil
}

type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseInt(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			*n = looseInt(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// SanitizeSections turns raw service output into section nodes. Sections
// without a title are dropped, missing ids become "n<i>", duplicate ids are
// suffixed, levels are clamped to 1..MaxLevel and parent links that do not
// point at an earlier shallower section are cleared.
func SanitizeSections(raw []RawSection) []outline.SectionNode {
	nodes := make([]outline.SectionNode, 0, len(raw))
	for i, r := range raw {
		title := strings.TrimSpace(string(r.Title))
		if title == "" {
			continue
		}
		id := strings.TrimSpace(string(r.ID))
		if id == "" {
			id = "n" + strconv.Itoa(i+1)
		}
		level := int(r.Level)
		if level <= 0 {
			level = 1
		}
		if level > MaxLevel {
			level = MaxLevel
		}
		nodes = append(nodes, outline.SectionNode{
			ID:       id,
			Title:    title,
			Level:    level,
			ParentID: strings.TrimSpace(string(r.ParentID)),
			Content:  strings.TrimSpace(string(r.Content)),
		})
	}
	return outline.Normalize(nodes)
}

// ParseSections extracts the section list from a service reply. It accepts a
// bare JSON array, an object with a "sections" array, either wrapped in a
// code fence or surrounded by prose.
func ParseSections(reply string) ([]outline.SectionNode, error) {
	reply = stripCodeBlock(reply)
	raw, err := decodeSections([]byte(reply))
	if err != nil {
		js := findFirstJSON(reply)
		if js == "" {
			return nil, fmt.Errorf("no JSON found in reply: %w (raw: %s)", err, truncate(reply, 200))
		}
		raw, err = decodeSections([]byte(js))
		if err != nil {
			return nil, fmt.Errorf("parse sections json: %w (raw: %s)", err, truncate(js, 200))
		}
	}
	return SanitizeSections(raw), nil
}

func decodeSections(data []byte) ([]RawSection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty reply")
	}

	var elems []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, err
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		list, ok := obj["sections"]
		if !ok {
			return nil, fmt.Errorf("object has no sections field")
		}
		if err := json.Unmarshal(list, &elems); err != nil {
			return nil, fmt.Errorf("sections: %w", err)
		}
	default:
		return nil, fmt.Errorf("reply is not JSON")
	}

	raw := make([]RawSection, 0, len(elems))
	for _, e := range elems {
		var r RawSection
		if err := json.Unmarshal(e, &r); err != nil {
			// Not an object; skip the element.
			continue
		}
		raw = append(raw, r)
	}
	return raw, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// findFirstJSON returns the first balanced JSON array or object in s.
func findFirstJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
