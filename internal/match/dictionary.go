package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// fallbackWeight scores matches from categories the dictionary gives no
// explicit weight.
const fallbackWeight = 3

type phrasePattern struct {
	phrase  string
	pattern *regexp.Regexp
}

type dictEntry struct {
	category Category
	weight   int
	phrases  []phrasePattern
}

// Dictionary is the immutable phrase table driving keyword matching.
// Categories are evaluated in claim-priority order regardless of their
// order in the source file.
type Dictionary struct {
	entries map[Category]*dictEntry
	order   []Category
}

type dictionaryBlock struct {
	Category string   `json:"category"`
	Weight   int      `json:"weight"`
	Phrases  []string `json:"phrases"`
}

// NewDictionary constructs a phrase dictionary from the provided JSON file.
func NewDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read phrase dictionary: %w", err)
	}
	var blocks []dictionaryBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("unmarshal phrase dictionary: %w", err)
	}

	dict := &Dictionary{entries: make(map[Category]*dictEntry, len(blocks))}
	for _, block := range blocks {
		cat := Category(strings.ToLower(strings.TrimSpace(block.Category)))
		if cat == "" {
			continue
		}
		entry, ok := dict.entries[cat]
		if !ok {
			entry = &dictEntry{category: cat, weight: block.Weight}
			dict.entries[cat] = entry
		}
		if entry.weight == 0 && block.Weight > 0 {
			entry.weight = block.Weight
		}
		seen := make(map[string]bool, len(block.Phrases))
		for _, p := range entry.phrases {
			seen[p.phrase] = true
		}
		for _, raw := range block.Phrases {
			phrase := strings.ToLower(strings.TrimSpace(raw))
			if phrase == "" || seen[phrase] {
				continue
			}
			pattern, err := compilePhrase(phrase)
			if err != nil {
				return nil, fmt.Errorf("compile phrase %q: %w", phrase, err)
			}
			entry.phrases = append(entry.phrases, phrasePattern{phrase: phrase, pattern: pattern})
			seen[phrase] = true
		}
	}

	for _, cat := range PriorityOrder {
		if _, ok := dict.entries[cat]; ok {
			dict.order = append(dict.order, cat)
		}
	}
	for _, block := range blocks {
		cat := Category(strings.ToLower(strings.TrimSpace(block.Category)))
		if cat == "" || Known(cat) {
			continue
		}
		if !containsCategory(dict.order, cat) {
			dict.order = append(dict.order, cat)
		}
	}

	return dict, nil
}

// compilePhrase builds the case-insensitive pattern for one phrase.
// Multi-word phrases match as literal substrings with interior whitespace
// flexed so line breaks and double spaces still hit; single words match
// only at word boundaries so "age" cannot match inside "manage".
func compilePhrase(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(phrase)
	if len(words) > 1 {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		return regexp.Compile(`(?i)` + strings.Join(quoted, `\s+`))
	}
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Weight returns the points one match in the category contributes to the
// bias score.
func (d *Dictionary) Weight(c Category) int {
	if d == nil {
		return fallbackWeight
	}
	if entry, ok := d.entries[c]; ok && entry.weight > 0 {
		return entry.weight
	}
	return fallbackWeight
}

// Categories returns the evaluation order: known categories by claim
// priority, then any extra dictionary categories in file order.
func (d *Dictionary) Categories() []Category {
	if d == nil {
		return nil
	}
	return d.order
}

// Phrases returns the canonical phrase list for a category, in match
// priority order.
func (d *Dictionary) Phrases(c Category) []string {
	if d == nil {
		return nil
	}
	entry, ok := d.entries[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entry.phrases))
	for _, p := range entry.phrases {
		out = append(out, p.phrase)
	}
	return out
}

// Validate ensures the dictionary has at least baseline configuration.
func (d *Dictionary) Validate() error {
	if d == nil {
		return errors.New("phrase dictionary is nil")
	}
	if len(d.entries) == 0 {
		return errors.New("phrase dictionary empty")
	}
	for cat, entry := range d.entries {
		if len(entry.phrases) == 0 {
			return fmt.Errorf("category %s has no phrases", cat)
		}
	}
	return nil
}

func containsCategory(list []Category, c Category) bool {
	for _, existing := range list {
		if existing == c {
			return true
		}
	}
	return false
}
