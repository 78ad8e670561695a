// Package extract talks to external structure extraction services and turns
// their loosely typed answers into outline sections.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// StructureExtractor proposes a section tree for a document. Results are
// untrusted; callers reconcile them with the local tree.
type StructureExtractor interface {
	ExtractStructure(ctx context.Context, title, text string) ([]outline.SectionNode, error)
	Name() string
}

// ErrDisabled is returned by the noop extractor.
var ErrDisabled = errors.New("structure extraction disabled")

// Noop is the extractor used when no service is configured. It always fails
// with ErrDisabled, which reconciles as an empty external tree.
type Noop struct{}

func (Noop) ExtractStructure(ctx context.Context, title, text string) ([]outline.SectionNode, error) {
	return nil, ErrDisabled
}

func (Noop) Name() string { return "off" }

// Provider names accepted by New.
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOff    = "off"
)

// Options configure New.
type Options struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	GoogleAPIKey    string
	GeminiModel     string
	MaxChars        int
	Stats           *LLMStats
}

// New builds the extractor selected by opts.Provider.
func New(ctx context.Context, opts Options) (StructureExtractor, error) {
	switch strings.ToLower(opts.Provider) {
	case ProviderClaude:
		if opts.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("claude extractor requires ANTHROPIC_API_KEY")
		}
		c := NewClaudeClient(opts.AnthropicAPIKey, opts.AnthropicModel)
		c.MaxChars = opts.MaxChars
		c.Stats = opts.Stats
		opts.Stats.SetSource(ProviderClaude, c.Model())
		return c, nil
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, opts.GoogleAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, err
		}
		g.MaxChars = opts.MaxChars
		g.Stats = opts.Stats
		opts.Stats.SetSource(ProviderGemini, g.Model())
		return g, nil
	case ProviderOff, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (want claude, gemini or off)", opts.Provider)
	}
}
