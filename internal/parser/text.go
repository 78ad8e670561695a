package parser

import (
	"fmt"
	"io"
)

// TextParser handles plain text files. The text is kept as is apart from
// normalization, so outline offsets refer to the uploaded content.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return &Document{
		Title: titleFromFilename(filename),
		Text:  NormalizeText(string(data)),
	}, nil
}
