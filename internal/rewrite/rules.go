package rewrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// rule is one compiled pattern -> replacement substitution.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

type ruleBlock struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// RuleTable holds the ordered substitution rules. Order matters: longer,
// more specific patterns come before shorter ones so a generic rule never
// clobbers part of a phrase a specific rule should own.
type RuleTable struct {
	rules []rule
}

// NewRuleTable loads and compiles substitution rules from the provided
// JSON file. Patterns compile case-insensitive.
func NewRuleTable(path string) (*RuleTable, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read rewrite rules: %w", err)
	}
	var blocks []ruleBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("unmarshal rewrite rules: %w", err)
	}

	table := &RuleTable{rules: make([]rule, 0, len(blocks))}
	for _, block := range blocks {
		pattern := strings.TrimSpace(block.Pattern)
		if pattern == "" {
			continue
		}
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rewrite rule %q: %w", pattern, err)
		}
		table.rules = append(table.rules, rule{
			pattern:     compiled,
			replacement: block.Replacement,
		})
	}
	return table, nil
}

// Len reports how many rules the table carries.
func (rt *RuleTable) Len() int {
	if rt == nil {
		return 0
	}
	return len(rt.rules)
}

// Validate ensures the table is usable.
func (rt *RuleTable) Validate() error {
	if rt == nil {
		return errors.New("rule table is nil")
	}
	if len(rt.rules) == 0 {
		return errors.New("rule table empty")
	}
	return nil
}
