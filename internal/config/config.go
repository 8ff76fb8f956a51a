package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"` // 0 disables the limit
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

type BatchConfig struct {
	// Concurrency bounds how many records of one batch are classified at once.
	// 0 or 1 classifies records one after another.
	Concurrency int `mapstructure:"concurrency"`
}

// KeywordRule maps any of Keywords (case-insensitive substring) to Category.
type KeywordRule struct {
	Category string   `mapstructure:"category"`
	Keywords []string `mapstructure:"keywords"`
}

type ClassifierConfig struct {
	Type             string        `mapstructure:"type"`     // "keyword" or "llm"
	Provider         string        `mapstructure:"provider"` // "openai" or "gemini" (if type is "llm")
	Model            string        `mapstructure:"model"`
	OpenaiApiKey     string        `mapstructure:"openai_api_key"`
	OpenaiBaseURL    string        `mapstructure:"openai_base_url"`
	GeminiApiKey     string        `mapstructure:"gemini_api_key"`
	PromptTemplate   string        `mapstructure:"prompt_template"` // path to a prompt file; empty uses the built-in prompt
	MaxSentences     int           `mapstructure:"max_sentences"`   // 0 sends the whole text
	Categories       []string      `mapstructure:"categories"`
	FallbackCategory string        `mapstructure:"fallback_category"`
	Rules            []KeywordRule `mapstructure:"rules"` // empty uses the built-in rules
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Classifier ClassifierConfig `mapstructure:"classifier"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

const envPrefix = "TRIAGE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 16<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("batch.concurrency", 1)

	v.SetDefault("classifier.type", "keyword")
	v.SetDefault("classifier.provider", "openai")
	v.SetDefault("classifier.model", "gpt-4o-mini")
	v.SetDefault("classifier.openai_base_url", "")
	v.SetDefault("classifier.prompt_template", "")
	v.SetDefault("classifier.max_sentences", 0)
	v.SetDefault("classifier.categories", []string{"High-Priority", "Archived", "Standard"})
	v.SetDefault("classifier.fallback_category", "Standard")
}

// LoadConfig reads config.yaml (from configFile if given, otherwise from the
// current directory or ~/.config/triage), then applies TRIAGE_* environment
// overrides, e.g. TRIAGE_SERVER_PORT or TRIAGE_CLASSIFIER_TYPE.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "triage"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys are also accepted under their usual names.
	_ = v.BindEnv("classifier.openai_api_key", envPrefix+"_CLASSIFIER_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("classifier.gemini_api_key", envPrefix+"_CLASSIFIER_GEMINI_API_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}
