package categorizer

import (
	"context"
	"fmt"

	"triage/internal/config"
	"triage/internal/costtracker"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// ChatCompletionCreator is the part of the OpenAI client the categorizer needs.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMConfig configures the LLM-backed categorizers.
type LLMConfig struct {
	Model          string
	PromptTemplate string // empty uses DefaultPromptTemplate
	Categories     []string
	MaxSentences   int

	// Optional cost tracking; nil discards cost events.
	CostTracker costtracker.CostTracker
	Pricing     map[string]config.PricingInfo // keyed by model
}

// costTracker returns the configured tracker, or one that discards events.
func (cfg LLMConfig) costTracker() costtracker.CostTracker {
	if cfg.CostTracker == nil {
		return costtracker.New()
	}
	return cfg.CostTracker
}

// LLMCategorizer implements ContentCategorizer on top of an
// OpenAI-compatible chat completion API.
type LLMCategorizer struct {
	client ChatCompletionCreator
	model  string
	prompt promptConfig

	costTracker costtracker.CostTracker
	pricing     map[string]config.PricingInfo
}

// NewLLMCategorizer creates a new categorizer using an OpenAI-compatible client.
func NewLLMCategorizer(client ChatCompletionCreator, cfg LLMConfig) *LLMCategorizer {
	return &LLMCategorizer{
		client:      client,
		model:       cfg.Model,
		prompt:      newPromptConfig(cfg.PromptTemplate, cfg.Categories, cfg.MaxSentences),
		costTracker: cfg.costTracker(),
		pricing:     cfg.Pricing,
	}
}

func (c *LLMCategorizer) Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error) {
	if c.client == nil {
		return CategorizationResult{}, fmt.Errorf("LLM categorizer is not initialized with an OpenAI client")
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: c.prompt.render(req.Text),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return CategorizationResult{}, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return CategorizationResult{}, fmt.Errorf("no choices returned from OpenAI")
	}

	c.recordCost(ctx, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return c.prompt.parse(resp.Choices[0].Message.Content)
}

func (c *LLMCategorizer) recordCost(ctx context.Context, inputTokens, outputTokens int) {
	if inputTokens+outputTokens == 0 {
		return
	}
	priceInfo, ok := c.pricing[c.model]
	if !ok {
		log.Warnf("Pricing info not found for model '%s'. Cannot record cost for classification.", c.model)
		return
	}

	event := costtracker.CostEvent{
		Operation:    "classification",
		Provider:     "openai",
		Model:        c.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		AmountUSD:    costtracker.TokenCost(inputTokens, outputTokens, priceInfo.InputPerToken, priceInfo.OutputPerToken),
	}
	if err := c.costTracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record AI usage for classification: %v", err)
		return
	}
	log.Debugf("Recorded AI usage: Provider=%s, Model=%s, InputTokens=%d, OutputTokens=%d, Cost=%.8f",
		event.Provider, event.Model, event.InputTokens, event.OutputTokens, event.AmountUSD)
}
