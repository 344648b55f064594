package relay

import (
	"fmt"
	"regexp"
)

// DefaultPatterns are the signal phrase families recognized out of the box.
var DefaultPatterns = []string{
	`Boom 1000 Index BUY Signal`,
	`Crash 1000 Index BUY Signal`,
	`Boom 1000 Index SELL Signal`,
	`Crash 1000 Index SELL Signal`,
	`Boom 500 Index (BUY|SELL) Signal`,
	`NO TRADE ALERT`,
	`Volatility.*Index.*(BUY|SELL) Signal`,
}

// RuleSet is an ordered, immutable set of case-insensitive patterns.
// Compiled once at startup and shared read-only by concurrent callers.
type RuleSet struct {
	rules []*regexp.Regexp
}

// NewRuleSet compiles the given patterns case-insensitively.
func NewRuleSet(patterns []string) (*RuleSet, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one pattern is required")
	}
	rules := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		rules = append(rules, re)
	}
	return &RuleSet{rules: rules}, nil
}

// MustDefaultRuleSet builds the default rule set; the patterns are
// static so compilation cannot fail.
func MustDefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return rs
}

// Matches reports whether any rule matches anywhere in text.
// Empty text never matches.
func (rs *RuleSet) Matches(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range rs.rules {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }
