package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"

	"github.com/dgallion1/docoutline/internal/outline"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient asks a Gemini model for the outline, requesting a JSON reply.
type GeminiClient struct {
	client *genai.Client
	model  string

	// MaxChars bounds the document text sent per call, in runes.
	MaxChars int
	// Stats, when set, records the latency of every call.
	Stats *LLMStats
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini extractor requires GOOGLE_API_KEY")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: c, model: model}, nil
}

// Model returns the model name sent with each request.
func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Name() string { return ProviderGemini }

// ExtractStructure asks Gemini for the outline of one document.
func (g *GeminiClient) ExtractStructure(ctx context.Context, title, text string) ([]outline.SectionNode, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(BuildStructurePrompt(title, text, g.MaxChars), genai.RoleUser),
	}

	start := time.Now()
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.Stats.RecordFailure()
		return nil, classifyGeminiError(err)
	}
	g.Stats.Record(time.Since(start).Milliseconds())

	reply := res.Text()
	if reply == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}
	return ParseSections(reply)
}

// classifyGeminiError marks quota and server errors as retryable.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isRetryableStatus(apiErr.Code) {
		return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini api: %w", err)
}
