package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/umputun/border-items-mcp/app/catalog"
)

// DefaultSuggestLimit is the number of suggestions returned when no limit is given
const DefaultSuggestLimit = 5

// Suggestions returns distinct entry names, aliases and category names starting with query,
// case-insensitively. Shorter strings come first; equal lengths keep encounter order
// (entries, then categories).
func Suggestions(entries []catalog.Entry, categories []catalog.Category, query string, limit int) []string {
	res := []string{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	seen := make(map[string]bool)
	add := func(s string) {
		if seen[s] || !strings.HasPrefix(strings.ToLower(s), q) {
			return
		}
		seen[s] = true
		res = append(res, s)
	}

	for i := range entries {
		add(entries[i].Name)
		for _, alias := range entries[i].Aliases {
			add(alias)
		}
	}
	for i := range categories {
		add(categories[i].Name)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return utf8.RuneCountInString(res[i]) < utf8.RuneCountInString(res[j])
	})

	if len(res) > limit {
		res = res[:limit]
	}
	return res
}
