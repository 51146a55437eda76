package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/border-items-mcp/app/catalog"
)

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{
			name:  "names, aliases and categories sorted by length",
			query: "fre",
			limit: 5,
			want:  []string{"Fresh Food", "fresh fruit", "fresh lemon", "Fresh Apples"},
		},
		{name: "aliases only", query: "app", limit: 5, want: []string{"apple", "apples"}},
		{name: "exact alias", query: "citrus", limit: 5, want: []string{"citrus"}},
		{name: "case insensitive query", query: "  ALC ", limit: 5, want: []string{"Alcohol"}},
		{name: "limited", query: "a", limit: 2, want: []string{"apple", "apples"}},
		{name: "default limit", query: "a", limit: 0, want: []string{"apple", "apples", "Alcohol"}},
		{name: "empty query", query: "", limit: 5, want: []string{}},
		{name: "blank query", query: "  ", limit: 5, want: []string{}},
		{name: "no match", query: "zzz", limit: 5, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggestions(testEntries(), testCategories(), tt.query, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestions_Deduplicated(t *testing.T) {
	entries := append(testEntries(), catalog.Entry{ID: "apple-dried", Name: "Dried Apple", Aliases: []string{"apple", "apples"}})
	got := Suggestions(entries, testCategories(), "ap", 10)
	assert.Equal(t, []string{"apple", "apples"}, got)
}

func TestSuggestions_Properties(t *testing.T) {
	for _, q := range []string{"f", "fr", "a", "l", "w", "c"} {
		got := Suggestions(testEntries(), testCategories(), q, 3)
		require.LessOrEqual(t, len(got), 3)
		seen := map[string]bool{}
		for i, s := range got {
			assert.True(t, strings.HasPrefix(strings.ToLower(s), q), "%q doesn't start with %q", s, q)
			assert.False(t, seen[s], "duplicate %q", s)
			seen[s] = true
			if i > 0 {
				assert.LessOrEqual(t, len([]rune(got[i-1])), len([]rune(s)))
			}
		}
	}
}
