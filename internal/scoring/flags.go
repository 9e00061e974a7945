package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"biaslens/backend/internal/match"
)

// Flag severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// RedFlag is a human-readable warning tied to one matched phrase.
type RedFlag struct {
	Category    string `json:"category"`
	Text        string `json:"text"`
	Severity    string `json:"severity"`
	Icon        string `json:"icon"`
	Explanation string `json:"explanation,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

type flagEntry struct {
	Severity    string `json:"severity"`
	Icon        string `json:"icon"`
	Explanation string `json:"explanation"`
	Suggestion  string `json:"suggestion"`
}

// FlagTable maps matched phrases to red flags. Phrases without a specific
// entry fall back to their category's generic entry at medium severity.
type FlagTable struct {
	phrases    map[string]flagEntry
	categories map[match.Category]flagEntry
}

type flagFile struct {
	Phrases    map[string]flagEntry `json:"phrases"`
	Categories map[string]flagEntry `json:"categories"`
}

// NewFlagTable constructs a flag table from the provided JSON file.
func NewFlagTable(path string) (*FlagTable, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read flag table: %w", err)
	}
	var raw flagFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal flag table: %w", err)
	}

	table := &FlagTable{
		phrases:    make(map[string]flagEntry, len(raw.Phrases)),
		categories: make(map[match.Category]flagEntry, len(raw.Categories)),
	}
	for phrase, entry := range raw.Phrases {
		key := strings.ToLower(strings.TrimSpace(phrase))
		if key == "" {
			continue
		}
		table.phrases[key] = normalizeEntry(entry)
	}
	for category, entry := range raw.Categories {
		key := match.Category(strings.ToLower(strings.TrimSpace(category)))
		if key == "" {
			continue
		}
		table.categories[key] = normalizeEntry(entry)
	}
	return table, nil
}

func normalizeEntry(entry flagEntry) flagEntry {
	entry.Severity = strings.ToLower(strings.TrimSpace(entry.Severity))
	if entry.Severity != SeverityHigh {
		entry.Severity = SeverityMedium
	}
	if strings.TrimSpace(entry.Icon) == "" {
		entry.Icon = iconForSeverity(entry.Severity)
	}
	return entry
}

func iconForSeverity(severity string) string {
	if severity == SeverityHigh {
		return "❗"
	}
	return "⚠️"
}

// Flags generates one red flag per matched phrase, ordered by descending
// severity, then category priority, then match order.
func (ft *FlagTable) Flags(analysis match.Result) []RedFlag {
	if ft == nil {
		return nil
	}
	var flags []RedFlag
	for _, cat := range match.PriorityOrder {
		for _, phrase := range analysis.Matches(cat) {
			entry, ok := ft.phrases[phrase]
			if !ok {
				entry, ok = ft.categories[cat]
				if !ok {
					entry = flagEntry{Severity: SeverityMedium, Icon: iconForSeverity(SeverityMedium)}
				}
			}
			flags = append(flags, RedFlag{
				Category:    string(cat),
				Text:        phrase,
				Severity:    entry.Severity,
				Icon:        entry.Icon,
				Explanation: entry.Explanation,
				Suggestion:  entry.Suggestion,
			})
		}
	}
	sort.SliceStable(flags, func(i, j int) bool {
		return severityRank(flags[i].Severity) < severityRank(flags[j].Severity)
	})
	return flags
}

func severityRank(severity string) int {
	if severity == SeverityHigh {
		return 0
	}
	return 1
}

// Validate ensures the flag table carries at least generic entries.
func (ft *FlagTable) Validate() error {
	if ft == nil {
		return errors.New("flag table is nil")
	}
	if len(ft.phrases) == 0 && len(ft.categories) == 0 {
		return errors.New("flag table empty")
	}
	return nil
}
