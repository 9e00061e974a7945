package match

import (
	"sort"
	"strings"
)

// Span locates one matched phrase inside the analyzed text. Text holds
// the verbatim input substring; Phrase the canonical dictionary form.
type Span struct {
	Category Category
	Phrase   string
	Text     string
	Start    int
	End      int
}

// CategoryMatches summarizes the unique phrases hit for one category.
type CategoryMatches struct {
	Matches []string `json:"matches"`
	Count   int      `json:"count"`
}

// Result is the output of one matching pass. Every known category is
// present in Categories even when nothing matched. Spans are ordered by
// category claim priority, then by start offset.
type Result struct {
	Categories map[Category]CategoryMatches
	Spans      []Span
}

// Matcher runs dictionary matching with interval claiming: a span
// claimed once is never reported again, so higher-priority categories
// win overlaps and weighted scores never double-count text.
type Matcher struct {
	dict *Dictionary
}

// NewMatcher wraps a loaded dictionary.
func NewMatcher(dict *Dictionary) *Matcher {
	return &Matcher{dict: dict}
}

type candidate struct {
	start     int
	end       int
	phraseIdx int
}

// Match scans the text against every category. Deterministic: identical
// input always yields identical output.
func (m *Matcher) Match(text string) Result {
	res := Result{Categories: make(map[Category]CategoryMatches, len(PriorityOrder))}
	for _, cat := range PriorityOrder {
		res.Categories[cat] = CategoryMatches{Matches: []string{}}
	}
	if m == nil || m.dict == nil {
		return res
	}
	for _, cat := range m.dict.Categories() {
		if _, ok := res.Categories[cat]; !ok {
			res.Categories[cat] = CategoryMatches{Matches: []string{}}
		}
	}
	if strings.TrimSpace(text) == "" {
		return res
	}

	var claimed []Span
	for _, cat := range m.dict.Categories() {
		entry := m.dict.entries[cat]
		var cands []candidate
		for i, pp := range entry.phrases {
			for _, loc := range pp.pattern.FindAllStringIndex(text, -1) {
				cands = append(cands, candidate{start: loc[0], end: loc[1], phraseIdx: i})
			}
		}
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].start != cands[b].start {
				return cands[a].start < cands[b].start
			}
			return cands[a].phraseIdx < cands[b].phraseIdx
		})

		cm := res.Categories[cat]
		for _, cand := range cands {
			if overlapsClaimed(claimed, cand.start, cand.end) {
				continue
			}
			phrase := entry.phrases[cand.phraseIdx].phrase
			claimed = append(claimed, Span{
				Category: cat,
				Phrase:   phrase,
				Text:     text[cand.start:cand.end],
				Start:    cand.start,
				End:      cand.end,
			})
			cm.Matches = appendUnique(cm.Matches, phrase)
		}
		cm.Count = len(cm.Matches)
		res.Categories[cat] = cm
	}

	res.Spans = claimed
	return res
}

func overlapsClaimed(claimed []Span, start, end int) bool {
	for _, s := range claimed {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

func appendUnique(s []string, v string) []string {
	if v == "" {
		return s
	}
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}

// Count reports the unique-phrase count for one category.
func (r Result) Count(c Category) int {
	return r.Categories[c].Count
}

// Matches reports the unique phrases hit for one category.
func (r Result) Matches(c Category) []string {
	return r.Categories[c].Matches
}

// TotalCount sums match counts across every category.
func (r Result) TotalCount() int {
	total := 0
	for _, cm := range r.Categories {
		total += cm.Count
	}
	return total
}

// TopCategory returns the category with the most matches, resolving ties
// toward higher claim priority. ok is false when nothing matched at all.
func (r Result) TopCategory() (Category, int, bool) {
	best := Category("")
	bestCount := 0
	for _, cat := range PriorityOrder {
		if cm, present := r.Categories[cat]; present && cm.Count > bestCount {
			best = cat
			bestCount = cm.Count
		}
	}
	if bestCount == 0 {
		return "", 0, false
	}
	return best, bestCount, true
}
