package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"triage/internal/config"
	"triage/internal/costtracker"
	"triage/internal/metrics"
	"triage/internal/services"
	"triage/pkg/categorizer"
)

const (
	ClassifierKeyword = "keyword"
	ClassifierLLM     = "llm"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type App struct {
	Config *config.Config
	Logger log.FieldLogger

	Categorizer    categorizer.ContentCategorizer
	ClassifierName string // e.g. "keyword" or "llm/openai/gpt-4o-mini"
	CostTracker    *costtracker.MemoryTracker

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	BatchHandler *services.BatchHandler

	closers []func() error
}

// NewApp builds the classifier selected by cfg and the batch handler around it.
func NewApp(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*App, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	a := &App{Config: cfg, Logger: logger, CostTracker: costtracker.NewMemoryTracker()}

	if err := a.initMetrics(); err != nil {
		return nil, err
	}
	if err := a.initCategorizer(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.BatchHandler = services.NewBatchHandler(
		a.Categorizer,
		services.WithConcurrency(cfg.Batch.Concurrency),
		services.WithLogger(logger),
		services.WithMetrics(a.Metrics),
	)

	logger.WithField("classifier", a.ClassifierName).Info("Application initialization complete.")
	return a, nil
}

func (a *App) initMetrics() error {
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(a.Registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	a.Metrics = m
	a.CostTracker.OnRecord = func(e costtracker.CostEvent) {
		m.AddCost(e.Provider, e.Model, e.AmountUSD)
	}
	return nil
}

func (a *App) initCategorizer(ctx context.Context) error {
	cc := a.Config.Classifier

	switch strings.ToLower(cc.Type) {
	case "", ClassifierKeyword:
		a.Categorizer = newKeywordCategorizer(cc)
		a.ClassifierName = ClassifierKeyword
		return nil
	case ClassifierLLM:
	default:
		return fmt.Errorf("unknown classifier type: %s", cc.Type)
	}

	prompt, err := config.LoadPromptContent(cc.PromptTemplate)
	if err != nil {
		return fmt.Errorf("load classification prompt: %w", err)
	}
	provider := strings.ToLower(cc.Provider)
	llmCfg := categorizer.LLMConfig{
		Model:          cc.Model,
		PromptTemplate: prompt,
		Categories:     cc.Categories,
		MaxSentences:   cc.MaxSentences,
		CostTracker:    a.CostTracker,
		Pricing:        a.Config.Pricing[provider],
	}

	switch provider {
	case ProviderOpenAI:
		if cc.OpenaiApiKey == "" {
			return errors.New("OpenAI API key is required for classification but not set")
		}
		clientCfg := openai.DefaultConfig(cc.OpenaiApiKey)
		if cc.OpenaiBaseURL != "" {
			clientCfg.BaseURL = cc.OpenaiBaseURL
		}
		a.Categorizer = categorizer.NewLLMCategorizer(openai.NewClientWithConfig(clientCfg), llmCfg)
	case ProviderGemini:
		gc, err := categorizer.NewGeminiCategorizer(ctx, cc.GeminiApiKey, llmCfg)
		if err != nil {
			return fmt.Errorf("init gemini classifier: %w", err)
		}
		a.closers = append(a.closers, gc.Close)
		a.Categorizer = gc
	default:
		return fmt.Errorf("unsupported LLM classification provider: %s", cc.Provider)
	}
	a.ClassifierName = fmt.Sprintf("%s/%s/%s", ClassifierLLM, provider, cc.Model)
	return nil
}

func newKeywordCategorizer(cc config.ClassifierConfig) *categorizer.KeywordCategorizer {
	rules := categorizer.DefaultRules()
	if len(cc.Rules) > 0 {
		rules = make([]categorizer.Rule, len(cc.Rules))
		for i, r := range cc.Rules {
			rules[i] = categorizer.Rule{Category: r.Category, Keywords: r.Keywords}
		}
	}
	return categorizer.NewKeywordCategorizer(rules, cc.FallbackCategory)
}

// Close releases classifier clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
