// Package category provides the keyword tier of transaction categorization.
// Vendor transforms consult their structured category first; when that yields
// nothing they fall through to this engine, and finally to uncategorized.
package category

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/criswit/moni-bridge/model"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a set of description keywords to a canonical category.
type Rule struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"`
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Engine matches free-form transaction text against an ordered rule set.
// Matching is deterministic: rules are tried in ascending priority and the
// first hit wins.
type Engine struct {
	rules []Rule
}

// NewEngine loads the embedded rule set.
func NewEngine() (*Engine, error) {
	return newEngineFromBytes(embeddedRules)
}

func newEngineFromBytes(data []byte) (*Engine, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse category rules: %w", err)
	}
	for _, r := range rf.Rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %q has no keywords", r.Name)
		}
		if r.Category == "" {
			return nil, fmt.Errorf("rule %q has no category", r.Name)
		}
	}
	rules := make([]Rule, len(rf.Rules))
	copy(rules, rf.Rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
	return &Engine{rules: rules}, nil
}

// Match returns the category for the first rule whose keyword appears in the
// given text, case-insensitively. The boolean reports whether anything hit.
func (e *Engine) Match(text string) (model.TransactionCategory, bool) {
	haystack := strings.ToLower(text)
	if strings.TrimSpace(haystack) == "" {
		return "", false
	}
	for _, r := range e.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(haystack, kw) {
				return model.TransactionCategory(r.Category), true
			}
		}
	}
	return "", false
}

// Rules exposes the loaded rule set in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
