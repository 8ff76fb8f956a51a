package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) Validate() error {
	// Server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be one of debug, release, test; got %q", c.Server.Mode)
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must not be negative")
	}

	// Log config
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	// Batch config
	if c.Batch.Concurrency < 0 {
		return errors.New("batch.concurrency must not be negative")
	}

	if err := c.Classifier.validate(); err != nil {
		return err
	}

	for provider, models := range c.Pricing {
		if provider == "" {
			return errors.New("pricing contains an empty provider name")
		}
		for model, price := range models {
			if model == "" {
				return fmt.Errorf("pricing for provider '%s' contains an empty model name", provider)
			}
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}
	return nil
}

func (c *ClassifierConfig) validate() error {
	switch c.Type {
	case "keyword":
		for i, rule := range c.Rules {
			if strings.TrimSpace(rule.Category) == "" {
				return fmt.Errorf("classifier.rules[%d].category is required", i)
			}
			if len(rule.Keywords) == 0 {
				return fmt.Errorf("classifier.rules[%d].keywords must not be empty", i)
			}
		}
		return nil
	case "llm":
	default:
		return fmt.Errorf("classifier.type must be keyword or llm, got %q", c.Type)
	}

	if c.Model == "" {
		return errors.New("classifier.model is required when classifier.type is llm")
	}
	if len(c.Categories) == 0 {
		return errors.New("classifier.categories must list at least one category when classifier.type is llm")
	}
	if c.MaxSentences < 0 {
		return errors.New("classifier.max_sentences must not be negative")
	}
	switch c.Provider {
	case "openai":
		if c.OpenaiApiKey == "" {
			return errors.New("classifier.openai_api_key (or OPENAI_API_KEY) is required for the openai provider")
		}
	case "gemini":
		if c.GeminiApiKey == "" {
			return errors.New("classifier.gemini_api_key (or GEMINI_API_KEY) is required for the gemini provider")
		}
	default:
		return fmt.Errorf("classifier.provider must be openai or gemini, got %q", c.Provider)
	}
	return nil
}
