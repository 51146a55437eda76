package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/umputun/border-items-mcp/app/catalog"
)

// MaxRelated is the maximum number of related entries returned
const MaxRelated = 10

// Related returns entries sharing target's category or parent regulation, and entries in a
// parent/child relation with target. Target itself is excluded, each entry appears once.
func Related(entries []catalog.Entry, target *catalog.Entry) []catalog.Entry {
	res := []catalog.Entry{}
	seen := make(map[string]bool)

	for i := range entries {
		e := &entries[i]
		if e.ID == target.ID || seen[e.ID] {
			continue
		}

		sameCategory := e.Category == target.Category
		sameParent := target.ParentRegulationID != "" && e.ParentRegulationID == target.ParentRegulationID
		lineage := e.ParentRegulationID == target.ID || target.ParentRegulationID == e.ID
		if !sameCategory && !sameParent && !lineage {
			continue
		}

		seen[e.ID] = true
		res = append(res, *e)
		if len(res) == MaxRelated {
			break
		}
	}
	return res
}

// categoryNames adapts categories to fuzzy.Source
type categoryNames []catalog.Category

func (c categoryNames) String(i int) string { return strings.ToLower(c[i].Name) }

func (c categoryNames) Len() int { return len(c) }

// LookupCategory resolves a category reference by exact id, then by case-insensitive name
func LookupCategory(categories []catalog.Category, ref string) (*catalog.Category, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}

	for i := range categories {
		if categories[i].ID == ref {
			return &categories[i], true
		}
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Name, ref) {
			return &categories[i], true
		}
	}
	return nil, false
}

// MatchCategory resolves a free-text category reference. It tries LookupCategory,
// then the best fuzzy match over category names.
func MatchCategory(categories []catalog.Category, ref string) (*catalog.Category, bool) {
	if cat, ok := LookupCategory(categories, ref); ok {
		return cat, true
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}

	// matches come back sorted by descending score
	matches := fuzzy.FindFrom(strings.ToLower(ref), categoryNames(categories))
	if len(matches) == 0 {
		return nil, false
	}
	return &categories[matches[0].Index], true
}
