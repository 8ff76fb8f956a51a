package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage/internal/config"
	"triage/internal/costtracker"
	"triage/pkg/categorizer"
)

func baseConfig() *config.Config {
	return &config.Config{
		Batch: config.BatchConfig{Concurrency: 2},
		Classifier: config.ClassifierConfig{
			Type:             "keyword",
			Provider:         "openai",
			Model:            "gpt-4o-mini",
			Categories:       []string{"High-Priority", "Archived", "Standard"},
			FallbackCategory: "Standard",
		},
	}
}

func TestNewApp_KeywordDefaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a, err := NewApp(context.Background(), baseConfig(), logger)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, ClassifierKeyword, a.ClassifierName)
	kc, ok := a.Categorizer.(*categorizer.KeywordCategorizer)
	require.True(t, ok)
	assert.Equal(t, categorizer.CategoryHighPriority, kc.Match("urgent"))

	body, status := a.BatchHandler.Handle(context.Background(), []byte(`{"values":[{"recordId":"1","data":{"text":"old"}}]}`))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"values":[{"recordId":"1","data":{"category":"Archived"}}]}`, string(body))
}

func TestNewApp_KeywordCustomRules(t *testing.T) {
	cfg := baseConfig()
	cfg.Classifier.Rules = []config.KeywordRule{{Category: "Billing", Keywords: []string{"invoice"}}}
	cfg.Classifier.FallbackCategory = "Other"
	logger, _ := test.NewNullLogger()

	a, err := NewApp(context.Background(), cfg, logger)
	require.NoError(t, err)

	kc := a.Categorizer.(*categorizer.KeywordCategorizer)
	assert.Equal(t, "Billing", kc.Match("Invoice #4"))
	assert.Equal(t, "Other", kc.Match("urgent"))
}

func TestNewApp_OpenAI(t *testing.T) {
	cfg := baseConfig()
	cfg.Classifier.Type = "llm"
	cfg.Classifier.OpenaiApiKey = "sk-test"
	cfg.Classifier.OpenaiBaseURL = "http://127.0.0.1:1/v1"
	logger, _ := test.NewNullLogger()

	a, err := NewApp(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, "llm/openai/gpt-4o-mini", a.ClassifierName)
	assert.IsType(t, &categorizer.LLMCategorizer{}, a.Categorizer)
}

func TestNewApp_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown type", func(c *config.Config) { c.Classifier.Type = "oracle" }},
		{"openai without key", func(c *config.Config) { c.Classifier.Type = "llm" }},
		{"gemini without key", func(c *config.Config) {
			c.Classifier.Type = "llm"
			c.Classifier.Provider = "gemini"
		}},
		{"unknown provider", func(c *config.Config) {
			c.Classifier.Type = "llm"
			c.Classifier.Provider = "anthropic"
		}},
		{"missing prompt file", func(c *config.Config) {
			c.Classifier.Type = "llm"
			c.Classifier.OpenaiApiKey = "sk-test"
			c.Classifier.PromptTemplate = "/nonexistent/prompt.txt"
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(cfg)
			logger, _ := test.NewNullLogger()

			_, err := NewApp(context.Background(), cfg, logger)

			assert.Error(t, err)
		})
	}
}

func TestNewApp_CostFeedsMetrics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a, err := NewApp(context.Background(), baseConfig(), logger)
	require.NoError(t, err)

	require.NoError(t, a.CostTracker.RecordCost(context.Background(), costtracker.CostEvent{
		Provider: "openai", Model: "m", AmountUSD: 0.5,
	}))

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "triage_classifier_cost_usd_total" {
			found = true
			assert.Equal(t, 0.5, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
