package categorizer

import (
	"context"
	"errors"
	"testing"

	"triage/internal/config"
	"triage/internal/costtracker"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	resp      *genai.GenerateContentResponse
	err       error
	lastParts []genai.Part
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.lastParts = parts
	return f.resp, f.err
}

func geminiResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, len(texts))
	for i, t := range texts {
		parts[i] = genai.Text(t)
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeminiCategorizer_Categorize(t *testing.T) {
	gen := &fakeGenerator{resp: geminiResponse(`{"category": `, `"Archived", "confidence": 0.7}`)}
	categorizer := NewGeminiCategorizerWithGenerator(gen, LLMConfig{
		Model:          "gemini-test",
		PromptTemplate: "{{TEXT}}",
		Categories:     testCategories,
	})

	result, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "old invoices"})

	require.NoError(t, err)
	assert.Equal(t, "Archived", result.Category)
	assert.Equal(t, 0.7, result.Confidence)
	require.Len(t, gen.lastParts, 1)
	assert.Equal(t, genai.Text("old invoices"), gen.lastParts[0])
}

func TestGeminiCategorizer_Categorize_APIError(t *testing.T) {
	apiErr := errors.New("quota exceeded")
	categorizer := NewGeminiCategorizerWithGenerator(&fakeGenerator{err: apiErr}, LLMConfig{Model: "gemini-test"})

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "x"})

	assert.ErrorIs(t, err, apiErr)
}

func TestGeminiCategorizer_Categorize_NoCandidates(t *testing.T) {
	categorizer := NewGeminiCategorizerWithGenerator(
		&fakeGenerator{resp: &genai.GenerateContentResponse{}},
		LLMConfig{Model: "gemini-test"},
	)

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates returned from Gemini")
}

func TestGeminiCategorizer_Categorize_UnknownCategory(t *testing.T) {
	categorizer := NewGeminiCategorizerWithGenerator(
		&fakeGenerator{resp: geminiResponse(`{"category": "Spam"}`)},
		LLMConfig{Model: "gemini-test", Categories: testCategories},
	)

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "x"})

	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestGeminiCategorizer_Categorize_RecordsCost(t *testing.T) {
	resp := geminiResponse(`{"category": "Standard"}`)
	resp.UsageMetadata = &genai.UsageMetadata{PromptTokenCount: 200, CandidatesTokenCount: 20, TotalTokenCount: 220}
	tracker := costtracker.NewMemoryTracker()
	categorizer := NewGeminiCategorizerWithGenerator(&fakeGenerator{resp: resp}, LLMConfig{
		Model:       "gemini-test",
		CostTracker: tracker,
		Pricing:     map[string]config.PricingInfo{"gemini-test": {InputPerToken: 0.001, OutputPerToken: 0.002}},
	})

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "x"})
	require.NoError(t, err)

	total, err := tracker.TotalCost(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.24, total, 1e-9)
	assert.Equal(t, "gemini", tracker.Events()[0].Provider)
}

func TestNewGeminiCategorizer_RequiresKey(t *testing.T) {
	_, err := NewGeminiCategorizer(context.Background(), "", LLMConfig{Model: "gemini-test"})

	assert.Error(t, err)
}

func TestGeminiCategorizer_DefaultsToDiscardingTracker(t *testing.T) {
	resp := geminiResponse(`{"category": "Standard"}`)
	resp.UsageMetadata = &genai.UsageMetadata{PromptTokenCount: 5, CandidatesTokenCount: 1}
	categorizer := NewGeminiCategorizerWithGenerator(&fakeGenerator{resp: resp}, LLMConfig{
		Model:   "gemini-test",
		Pricing: map[string]config.PricingInfo{"gemini-test": {InputPerToken: 1, OutputPerToken: 1}},
	})
	require.NotNil(t, categorizer.costTracker)

	_, err := categorizer.Categorize(context.Background(), CategorizationRequest{Text: "x"})

	require.NoError(t, err)
}
