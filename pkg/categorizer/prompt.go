package categorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultPromptTemplate is used when no prompt template is configured.
const DefaultPromptTemplate = `You are a document triage assistant.
Classify the record below into exactly one of these categories: {{CATEGORIES}}.
Respond with JSON only, in the form {"category": "<category>", "confidence": <number between 0 and 1>}.

Record:
{{TEXT}}`

var (
	ErrNoCategory      = errors.New("model returned no category")
	ErrUnknownCategory = errors.New("model returned a category outside the configured set")
)

// promptConfig is shared by the LLM-backed categorizers.
type promptConfig struct {
	template     string
	categories   []string
	maxSentences int
}

func newPromptConfig(template string, categories []string, maxSentences int) promptConfig {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}
	return promptConfig{template: template, categories: categories, maxSentences: maxSentences}
}

func (p promptConfig) render(text string) string {
	text = TruncateSentences(text, p.maxSentences)
	prompt := p.template
	prompt = strings.ReplaceAll(prompt, "{{CATEGORIES}}", strings.Join(p.categories, ", "))
	prompt = strings.ReplaceAll(prompt, "{{TEXT}}", text)
	return prompt
}

// parse reads the model's JSON answer. When categories are configured the
// answer must name one of them (case-insensitive); the configured spelling is returned.
func (p promptConfig) parse(content string) (CategorizationResult, error) {
	content = stripCodeFence(strings.TrimSpace(content))

	var parsed struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return CategorizationResult{}, fmt.Errorf("failed to parse LLM response as JSON: %w\nResponse content: %s", err, content)
	}

	category := strings.TrimSpace(parsed.Category)
	if category == "" {
		return CategorizationResult{}, ErrNoCategory
	}
	if len(p.categories) > 0 {
		canonical, ok := lookupCategory(p.categories, category)
		if !ok {
			return CategorizationResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		category = canonical
	}

	// Confidence is optional in the answer.
	if parsed.Confidence == 0 {
		parsed.Confidence = 1.0
	}
	return CategorizationResult{Category: category, Confidence: parsed.Confidence}, nil
}

func lookupCategory(categories []string, name string) (string, bool) {
	for _, c := range categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
