package search

import (
	"sort"
	"strings"

	"github.com/umputun/border-items-mcp/app/catalog"
)

const (
	// DefaultLimit is the maximum number of search results when no limit is given
	DefaultLimit = 50
	// MinScore is the floor a result's relevance must exceed to be returned
	MinScore = 10
)

// Filters gate which entries are scored by Search. Empty fields don't filter.
type Filters struct {
	Direction catalog.Direction
	Category  string
	Status    catalog.Status
}

// Result is a scored catalog entry. Entry points into the searched slice.
type Result struct {
	Entry        *catalog.Entry
	Score        int
	MatchedAlias string // set only when an alias outscored the name
}

// Search ranks entries by relevance of their name and aliases to query.
// Results are sorted by descending score; equal scores keep catalog order.
// A blank query returns no results, limit <= 0 means DefaultLimit.
func Search(entries []catalog.Entry, query string, filters Filters, limit int) []Result {
	results := []Result{}
	if strings.TrimSpace(query) == "" {
		return results
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	for i := range entries {
		e := &entries[i]

		// skip filtered entries before scoring
		if filters.Category != "" && e.Category != filters.Category {
			continue
		}
		if filters.Status != "" && e.Rule(filters.Direction).Status != filters.Status {
			continue
		}

		nameScore := Score(query, e.Name)
		aliasScore, alias := 0, ""
		for _, a := range e.Aliases {
			if s := Score(query, a); s > aliasScore {
				aliasScore, alias = s, a
			}
		}

		score := max(nameScore, aliasScore)
		if score <= MinScore {
			continue
		}

		res := Result{Entry: e, Score: score}
		if aliasScore > nameScore {
			res.MatchedAlias = alias
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
