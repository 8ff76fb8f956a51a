package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"triage/internal/config"
	"triage/internal/costtracker"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ContentGenerator is the part of *genai.GenerativeModel the categorizer needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiCategorizer implements ContentCategorizer using the Google Gemini API.
type GeminiCategorizer struct {
	generator ContentGenerator
	client    *genai.Client
	model     string
	prompt    promptConfig

	costTracker costtracker.CostTracker
	pricing     map[string]config.PricingInfo
}

// NewGeminiCategorizer creates a Gemini client for apiKey and wraps cfg.Model.
func NewGeminiCategorizer(ctx context.Context, apiKey string, cfg LLMConfig) (*GeminiCategorizer, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key not provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	c := NewGeminiCategorizerWithGenerator(model, cfg)
	c.client = client
	return c, nil
}

// NewGeminiCategorizerWithGenerator wraps an existing generator.
func NewGeminiCategorizerWithGenerator(gen ContentGenerator, cfg LLMConfig) *GeminiCategorizer {
	return &GeminiCategorizer{
		generator:   gen,
		model:       cfg.Model,
		prompt:      newPromptConfig(cfg.PromptTemplate, cfg.Categories, cfg.MaxSentences),
		costTracker: cfg.costTracker(),
		pricing:     cfg.Pricing,
	}
}

func (g *GeminiCategorizer) Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error) {
	if g.generator == nil {
		return CategorizationResult{}, fmt.Errorf("Gemini categorizer is not initialized")
	}

	resp, err := g.generator.GenerateContent(ctx, genai.Text(g.prompt.render(req.Text)))
	if err != nil {
		return CategorizationResult{}, fmt.Errorf("Gemini API error generating classification: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		return CategorizationResult{}, fmt.Errorf("no candidates returned from Gemini")
	}

	if resp.UsageMetadata != nil {
		g.recordCost(ctx, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}

	return g.prompt.parse(content)
}

// Close cleans up the Gemini client resources.
func (g *GeminiCategorizer) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// responseText concatenates the text parts of the first candidate that has content.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func (g *GeminiCategorizer) recordCost(ctx context.Context, inputTokens, outputTokens int) {
	if inputTokens+outputTokens == 0 {
		return
	}
	priceInfo, ok := g.pricing[g.model]
	if !ok {
		log.Warnf("Pricing info not found for model '%s'. Cannot record cost for classification.", g.model)
		return
	}
	event := costtracker.CostEvent{
		Operation:    "classification",
		Provider:     "gemini",
		Model:        g.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		AmountUSD:    costtracker.TokenCost(inputTokens, outputTokens, priceInfo.InputPerToken, priceInfo.OutputPerToken),
	}
	if err := g.costTracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record AI usage for classification: %v", err)
	}
}
