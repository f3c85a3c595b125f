package pattern

import (
	"strings"

	"github.com/Veraticus/meisai/internal/model"
)

// Rule is an alias to the model.Rule type for convenience.
type Rule = model.Rule

type compiledRule struct {
	keyword string
	rule    Rule
}

// Matcher evaluates text against an ordered rule list. Keywords are
// normalised once at construction.
type Matcher struct {
	sentinel string
	rules    []compiledRule
}

// NewMatcher creates a matcher for the given rules. Text that matches no
// rule is assigned sentinel.
func NewMatcher(rules []Rule, sentinel string) *Matcher {
	m := &Matcher{
		sentinel: sentinel,
		rules:    make([]compiledRule, 0, len(rules)),
	}

	for _, rule := range rules {
		keyword := Normalize(rule.Keyword)
		// An empty keyword is a substring of everything.
		if keyword == "" {
			continue
		}
		m.rules = append(m.rules, compiledRule{keyword: keyword, rule: rule})
	}

	return m
}

// Classify returns the category of the first rule whose keyword occurs in
// text, or the sentinel when none does.
func (m *Matcher) Classify(text string) string {
	if rule, ok := m.Match(text); ok {
		return rule.Category
	}
	return m.sentinel
}

// Match returns the first matching rule, if any.
func (m *Matcher) Match(text string) (Rule, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return Rule{}, false
	}

	for _, rule := range m.rules {
		if strings.Contains(normalized, rule.keyword) {
			return rule.rule, true
		}
	}

	return Rule{}, false
}

// Classify is the one-shot form of Matcher.Classify.
func Classify(text string, rules []Rule, sentinel string) string {
	return NewMatcher(rules, sentinel).Classify(text)
}
