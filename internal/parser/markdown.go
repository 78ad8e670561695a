package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings become heading lines with structural hints; list markers are kept
// so numbered section lines still read as "1. ...".
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var b textBuilder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			b.heading(h.Level, inlineText(h, src))
			continue
		}
		b.paragraph(blockText(n, src))
	}
	return b.document(titleFromFilename(filename)), nil
}

// blockText gets the text content of a goldmark block node.
func blockText(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())

	case *ast.List:
		var parts []string
		num := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "-"
			if node.IsOrdered() {
				marker = strconv.Itoa(num) + string(node.Marker)
				num++
			}
			if t := blockText(item, src); t != "" {
				parts = append(parts, marker+" "+t)
			}
		}
		return strings.Join(parts, "\n")
	}

	if first := n.FirstChild(); first != nil && first.Type() == ast.TypeInline {
		return strings.TrimSpace(inlineText(n, src))
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// inlineText concatenates the inline children of n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			// Emphasis, links and code spans.
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
