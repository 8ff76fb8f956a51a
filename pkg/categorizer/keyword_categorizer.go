package categorizer

import (
	"context"
	"strings"
)

// Built-in category names.
const (
	CategoryHighPriority = "High-Priority"
	CategoryArchived     = "Archived"
	CategoryStandard     = "Standard"
)

// Rule assigns Category to any text containing one of Keywords.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules returns the built-in rule set:
// "urgent"/"deadline" -> High-Priority, "archive"/"old" -> Archived.
func DefaultRules() []Rule {
	return []Rule{
		{Category: CategoryHighPriority, Keywords: []string{"urgent", "deadline"}},
		{Category: CategoryArchived, Keywords: []string{"archive", "old"}},
	}
}

// KeywordCategorizer matches keywords as case-insensitive substrings.
// Rules are tried in order and the first match wins; text matching no rule
// gets the fallback category. It never returns an error.
type KeywordCategorizer struct {
	rules    []Rule
	fallback string
}

func NewKeywordCategorizer(rules []Rule, fallback string) *KeywordCategorizer {
	if fallback == "" {
		fallback = CategoryStandard
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if r.Category == "" || len(kws) == 0 {
			continue
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: kws})
	}
	return &KeywordCategorizer{rules: normalized, fallback: fallback}
}

// Match returns the category for text.
func (c *KeywordCategorizer) Match(text string) string {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return c.fallback
}

func (c *KeywordCategorizer) Categorize(_ context.Context, req CategorizationRequest) (CategorizationResult, error) {
	return CategorizationResult{Category: c.Match(req.Text), Confidence: 1.0}, nil
}

// Rules returns a copy of the active rules.
func (c *KeywordCategorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

func (c *KeywordCategorizer) Fallback() string { return c.fallback }
