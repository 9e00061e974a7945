package rewrite

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Rewrite providers.
const (
	ProviderRules          = "rules"
	ProviderOpenAI         = "openai"
	ProviderOpenAIFallback = "openai-fallback"
)

// Result is a rewritten posting plus the audit trail of substitutions.
type Result struct {
	OriginalText  string   `json:"original_text"`
	RewrittenText string   `json:"rewritten_text"`
	Changes       []string `json:"changes"`
	Provider      string   `json:"provider"`
}

// Rewriter produces an alternative rewritten text, typically via a
// generative model.
type Rewriter interface {
	Enabled() bool
	Rewrite(ctx context.Context, text string) (string, error)
}

// Engine rewrites biased phrasing into neutral equivalents. The rule table
// always runs; a configured Rewriter may supply a richer rewritten text,
// with the rule result kept as fallback.
type Engine struct {
	table    *RuleTable
	rewriter Rewriter
}

// NewEngine constructs a rewrite engine. rewriter may be nil.
func NewEngine(table *RuleTable, rewriter Rewriter) *Engine {
	return &Engine{table: table, rewriter: rewriter}
}

// Rewrite transforms text and records one change entry per substitution.
// The change log always reflects the rule pass over the original text,
// even when a generative rewriter supplies the final wording.
func (e *Engine) Rewrite(ctx context.Context, text string) Result {
	result := e.applyRules(text)
	if e == nil || e.rewriter == nil || !e.rewriter.Enabled() {
		return result
	}
	rewritten, err := e.rewriter.Rewrite(ctx, text)
	if err != nil || strings.TrimSpace(rewritten) == "" {
		result.Provider = ProviderOpenAIFallback
		return result
	}
	result.RewrittenText = rewritten
	result.Provider = ProviderOpenAI
	return result
}

type substitution struct {
	start   int
	end     int
	ruleIdx int
}

// applyRules runs a single left-to-right pass: all rule matches are
// collected against the original text, then claimed earliest-start first
// (ties go to the earlier rule) skipping spans already rewritten.
func (e *Engine) applyRules(text string) Result {
	result := Result{
		OriginalText:  text,
		RewrittenText: text,
		Changes:       []string{},
		Provider:      ProviderRules,
	}
	if e == nil || e.table == nil || text == "" {
		return result
	}

	var candidates []substitution
	for i := range e.table.rules {
		for _, loc := range e.table.rules[i].pattern.FindAllStringIndex(text, -1) {
			candidates = append(candidates, substitution{start: loc[0], end: loc[1], ruleIdx: i})
		}
	}
	if len(candidates) == 0 {
		return result
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].ruleIdx < candidates[j].ruleIdx
	})

	var out strings.Builder
	last := 0
	for _, cand := range candidates {
		if cand.start < last {
			continue
		}
		replacement := e.table.rules[cand.ruleIdx].replacement
		out.WriteString(text[last:cand.start])
		out.WriteString(replacement)
		result.Changes = append(result.Changes,
			fmt.Sprintf("Replaced '%s' with '%s'", text[cand.start:cand.end], replacement))
		last = cand.end
	}
	out.WriteString(text[last:])
	result.RewrittenText = out.String()
	return result
}
