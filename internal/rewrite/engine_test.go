package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func shippedEngine(t *testing.T) *Engine {
	t.Helper()
	table, err := NewRuleTable("rewrite_rules.json")
	if err != nil {
		t.Fatalf("load shipped rules: %v", err)
	}
	return NewEngine(table, nil)
}

func TestRewriteRockstarPosting(t *testing.T) {
	engine := shippedEngine(t)

	result := engine.Rewrite(context.Background(), "rockstar developer")

	if result.RewrittenText != "skilled professional developer" {
		t.Fatalf("unexpected rewrite: %q", result.RewrittenText)
	}
	if strings.Contains(strings.ToLower(result.RewrittenText), "rockstar") {
		t.Fatalf("rockstar survived rewrite: %q", result.RewrittenText)
	}
	if len(result.Changes) != 1 || result.Changes[0] != "Replaced 'rockstar' with 'skilled professional'" {
		t.Fatalf("unexpected changes: %v", result.Changes)
	}
	if result.Provider != ProviderRules {
		t.Fatalf("expected provider %q got %q", ProviderRules, result.Provider)
	}
	if result.OriginalText != "rockstar developer" {
		t.Fatalf("original text not preserved: %q", result.OriginalText)
	}
}

func TestRewriteAppliesLeftToRight(t *testing.T) {
	engine := shippedEngine(t)

	result := engine.Rewrite(context.Background(), "Aggressive rockstar needed, no sponsorship.")

	want := "proactive skilled professional needed, work authorization required."
	if result.RewrittenText != want {
		t.Fatalf("expected %q got %q", want, result.RewrittenText)
	}
	wantChanges := []string{
		"Replaced 'Aggressive' with 'proactive'",
		"Replaced 'rockstar' with 'skilled professional'",
		"Replaced 'no sponsorship' with 'work authorization required'",
	}
	if len(result.Changes) != len(wantChanges) {
		t.Fatalf("expected %d changes got %d: %v", len(wantChanges), len(result.Changes), result.Changes)
	}
	for i, want := range wantChanges {
		if result.Changes[i] != want {
			t.Fatalf("change %d: expected %q got %q", i, want, result.Changes[i])
		}
	}
}

func TestRewriteSpecificRuleBeatsGeneric(t *testing.T) {
	engine := shippedEngine(t)

	result := engine.Rewrite(context.Background(), "No work visa sponsorship for this role.")

	if result.RewrittenText != "work authorization required for this role." {
		t.Fatalf("unexpected rewrite: %q", result.RewrittenText)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected one change got %v", result.Changes)
	}
	if result.Changes[0] != "Replaced 'No work visa sponsorship' with 'work authorization required'" {
		t.Fatalf("matched text not quoted verbatim: %q", result.Changes[0])
	}
}

func TestRewriteSkipsOverlappingSpans(t *testing.T) {
	engine := shippedEngine(t)

	result := engine.Rewrite(context.Background(), "digital native speaker")

	if result.RewrittenText != "comfortable with technology speaker" {
		t.Fatalf("unexpected rewrite: %q", result.RewrittenText)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("overlapping rules both applied: %v", result.Changes)
	}
}

func TestRewriteIdempotent(t *testing.T) {
	engine := shippedEngine(t)
	text := "Rockstar ninja guru wanted. Native English speaker, no sponsorship. " +
		"Work hard play hard, cultural fit matters. Digital native, young and energetic, aggressive. " +
		"Must be authorized to work in the United States."

	first := engine.Rewrite(context.Background(), text)
	if len(first.Changes) == 0 {
		t.Fatalf("expected substitutions on first pass")
	}

	second := engine.Rewrite(context.Background(), first.RewrittenText)
	if len(second.Changes) != 0 {
		t.Fatalf("second pass made changes: %v", second.Changes)
	}
	if second.RewrittenText != first.RewrittenText {
		t.Fatalf("second pass altered text:\nfirst:  %q\nsecond: %q", first.RewrittenText, second.RewrittenText)
	}
}

func TestRewriteNoMatches(t *testing.T) {
	engine := shippedEngine(t)

	for _, text := range []string{"", "We build useful software together."} {
		result := engine.Rewrite(context.Background(), text)
		if result.RewrittenText != text {
			t.Fatalf("text %q altered to %q", text, result.RewrittenText)
		}
		if len(result.Changes) != 0 {
			t.Fatalf("text %q produced changes %v", text, result.Changes)
		}
		if result.Provider != ProviderRules {
			t.Fatalf("expected provider %q got %q", ProviderRules, result.Provider)
		}
	}
}

type stubRewriter struct {
	text    string
	err     error
	enabled bool
}

func (s stubRewriter) Enabled() bool { return s.enabled }

func (s stubRewriter) Rewrite(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestRewriteGenerativeProvider(t *testing.T) {
	table, err := NewRuleTable("rewrite_rules.json")
	if err != nil {
		t.Fatalf("load shipped rules: %v", err)
	}

	engine := NewEngine(table, stubRewriter{enabled: true, text: "An inclusive posting."})
	result := engine.Rewrite(context.Background(), "rockstar developer")
	if result.Provider != ProviderOpenAI {
		t.Fatalf("expected provider %q got %q", ProviderOpenAI, result.Provider)
	}
	if result.RewrittenText != "An inclusive posting." {
		t.Fatalf("generative text not used: %q", result.RewrittenText)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("rule change log missing: %v", result.Changes)
	}
}

func TestRewriteFallsBackOnProviderFailure(t *testing.T) {
	table, err := NewRuleTable("rewrite_rules.json")
	if err != nil {
		t.Fatalf("load shipped rules: %v", err)
	}

	for _, stub := range []stubRewriter{
		{enabled: true, err: errors.New("boom")},
		{enabled: true, text: "   "},
	} {
		engine := NewEngine(table, stub)
		result := engine.Rewrite(context.Background(), "rockstar developer")
		if result.Provider != ProviderOpenAIFallback {
			t.Fatalf("expected provider %q got %q", ProviderOpenAIFallback, result.Provider)
		}
		if result.RewrittenText != "skilled professional developer" {
			t.Fatalf("rule fallback not used: %q", result.RewrittenText)
		}
	}

	engine := NewEngine(table, stubRewriter{enabled: false})
	result := engine.Rewrite(context.Background(), "rockstar developer")
	if result.Provider != ProviderRules {
		t.Fatalf("disabled rewriter should keep provider %q, got %q", ProviderRules, result.Provider)
	}
}
