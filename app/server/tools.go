package server

import (
	"context"
	"fmt"

	"github.com/umputun/border-items-mcp/app/catalog"
	"github.com/umputun/border-items-mcp/app/search"
)

// SearchInput represents input for searching the catalog
type SearchInput struct {
	Query     string `json:"query" jsonschema:"free-text item name or alias"`
	Direction string `json:"direction,omitempty" jsonschema:"usaToCanada (default) or canadaToUsa"`
	Category  string `json:"category,omitempty" jsonschema:"exact category id or name to restrict results to"`
	Status    string `json:"status,omitempty" jsonschema:"allowed, restricted or prohibited"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

// SearchMatch represents a single search result
type SearchMatch struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Score        int            `json:"score"`
	MatchedAlias string         `json:"matched_alias,omitempty"`
	Status       catalog.Status `json:"status"`
}

// SearchOutput contains search results
type SearchOutput struct {
	Direction catalog.Direction `json:"direction"`
	Category  string            `json:"category,omitempty"` // resolved category id, if filtered
	Results   []SearchMatch     `json:"results"`
	Total     int               `json:"total"`
}

// FilterInput represents input for filtering the catalog by attributes
type FilterInput struct {
	Direction           string `json:"direction,omitempty" jsonschema:"usaToCanada (default) or canadaToUsa"`
	Category            string `json:"category,omitempty" jsonschema:"exact category id or name"`
	Status              string `json:"status,omitempty" jsonschema:"allowed, restricted or prohibited"`
	HasQuantityLimit    *bool  `json:"has_quantity_limit,omitempty" jsonschema:"require presence or absence of a quantity limit"`
	HasAgeRestriction   *bool  `json:"has_age_restriction,omitempty" jsonschema:"require presence or absence of an age restriction"`
	RequiresDeclaration *bool  `json:"requires_declaration,omitempty" jsonschema:"require the declaration flag to equal this value"`
}

// ItemSummary is a compact view of an entry for one direction
type ItemSummary struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Category            string         `json:"category"`
	Status              catalog.Status `json:"status"`
	DeclarationRequired bool           `json:"declaration_required"`
	DutyApplies         bool           `json:"duty_applies"`
}

// ItemsOutput contains a list of entries
type ItemsOutput struct {
	Direction catalog.Direction `json:"direction"`
	Category  string            `json:"category,omitempty"` // resolved category id, if filtered
	Items     []ItemSummary     `json:"items"`
	Total     int               `json:"total"`
}

// SuggestInput represents input for typeahead suggestions
type SuggestInput struct {
	Query string `json:"query" jsonschema:"partial input to complete"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions"`
}

// SuggestOutput contains suggestions
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
	Total       int      `json:"total"`
}

// StatsInput represents input for category statistics
type StatsInput struct {
	Category  string `json:"category" jsonschema:"category id or name, close spellings are matched"`
	Direction string `json:"direction,omitempty" jsonschema:"usaToCanada (default) or canadaToUsa"`
}

// StatsOutput contains status counts for a category
type StatsOutput struct {
	Category  string            `json:"category"`
	Name      string            `json:"name"`
	Direction catalog.Direction `json:"direction"`
	search.Stats
}

// ItemInput represents input for reading a single entry
type ItemInput struct {
	ID        string `json:"id" jsonschema:"entry id"`
	Direction string `json:"direction,omitempty" jsonschema:"usaToCanada (default) or canadaToUsa"`
}

// ItemOutput contains an entry with its resolved parent and related entries
type ItemOutput struct {
	Item      catalog.Entry     `json:"item"`
	Direction catalog.Direction `json:"direction"`
	Rule      catalog.Rule      `json:"rule"`
	Parent    *ItemSummary      `json:"parent,omitempty"`
	Related   []ItemSummary     `json:"related"`
}

// CategoriesInput represents input for listing categories
type CategoriesInput struct {
	Direction string `json:"direction,omitempty" jsonschema:"usaToCanada (default) or canadaToUsa"`
}

// CategoryInfo describes a category with live counts
type CategoryInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	ItemCount   int          `json:"item_count"`
	Stats       search.Stats `json:"stats"`
}

// CategoriesOutput contains all categories
type CategoriesOutput struct {
	Direction  catalog.Direction `json:"direction"`
	Categories []CategoryInfo    `json:"categories"`
	Total      int               `json:"total"`
}

// searchItems ranks catalog entries against the query
func (s *Server) searchItems(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	dir, err := catalog.ParseDirection(input.Direction)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	status, err := catalog.ParseStatus(input.Status)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	categoryID, err := resolveCategory(snap, input.Category)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.config.SearchLimit
	}

	results := search.Search(snap.Entries, input.Query, search.Filters{
		Direction: dir,
		Category:  categoryID,
		Status:    status,
	}, limit)

	matches := make([]SearchMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, SearchMatch{
			ID:           r.Entry.ID,
			Name:         r.Entry.Name,
			Category:     r.Entry.Category,
			Score:        r.Score,
			MatchedAlias: r.MatchedAlias,
			Status:       r.Entry.Rule(dir).Status,
		})
	}

	return &SearchOutput{Direction: dir, Category: categoryID, Results: matches, Total: len(matches)}, nil
}

// filterItems selects catalog entries by attributes
func (s *Server) filterItems(ctx context.Context, input FilterInput) (*ItemsOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	dir, err := catalog.ParseDirection(input.Direction)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	status, err := catalog.ParseStatus(input.Status)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	categoryID, err := resolveCategory(snap, input.Category)
	if err != nil {
		return nil, err
	}

	entries := search.Filter(snap.Entries, search.Criteria{
		Direction:           dir,
		Category:            categoryID,
		Status:              status,
		HasQuantityLimit:    input.HasQuantityLimit,
		HasAgeRestriction:   input.HasAgeRestriction,
		RequiresDeclaration: input.RequiresDeclaration,
	})

	items := make([]ItemSummary, 0, len(entries))
	for i := range entries {
		items = append(items, summarize(&entries[i], dir))
	}
	return &ItemsOutput{Direction: dir, Category: categoryID, Items: items, Total: len(items)}, nil
}

// suggest returns typeahead suggestions
func (s *Server) suggest(ctx context.Context, input SuggestInput) (*SuggestOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.config.SuggestLimit
	}

	res := search.Suggestions(snap.Entries, snap.Categories, input.Query, limit)
	return &SuggestOutput{Suggestions: res, Total: len(res)}, nil
}

// categoryStats tallies statuses within one category
func (s *Server) categoryStats(ctx context.Context, input StatsInput) (*StatsOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	dir, err := catalog.ParseDirection(input.Direction)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	cat, ok := search.MatchCategory(snap.Categories, input.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrCategoryNotFound, input.Category)
	}

	return &StatsOutput{
		Category:  cat.ID,
		Name:      cat.Name,
		Direction: dir,
		Stats:     search.CategoryStats(snap.Entries, cat.ID, dir),
	}, nil
}

// getItem returns one entry with its parent regulation and related entries
func (s *Server) getItem(ctx context.Context, input ItemInput) (*ItemOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	dir, err := catalog.ParseDirection(input.Direction)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}
	entry, ok := snap.Entry(input.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrEntryNotFound, input.ID)
	}

	out := &ItemOutput{Item: *entry, Direction: dir, Rule: entry.Rule(dir), Related: []ItemSummary{}}
	if parent, ok := snap.Parent(entry); ok {
		ps := summarize(parent, dir)
		out.Parent = &ps
	}
	related := search.Related(snap.Entries, entry)
	for i := range related {
		out.Related = append(out.Related, summarize(&related[i], dir))
	}
	return out, nil
}

// listCategories returns all categories with live counts and stats
func (s *Server) listCategories(ctx context.Context, input CategoriesInput) (*CategoriesOutput, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err // nolint:wrapcheck // loader error is descriptive
	}

	dir, err := catalog.ParseDirection(input.Direction)
	if err != nil {
		return nil, err // nolint:wrapcheck // parse error is descriptive
	}

	counts := search.CategoryCounts(snap.Entries)
	cats := make([]CategoryInfo, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		cats = append(cats, CategoryInfo{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
			ItemCount:   counts[c.ID],
			Stats:       search.CategoryStats(snap.Entries, c.ID, dir),
		})
	}
	return &CategoriesOutput{Direction: dir, Categories: cats, Total: len(cats)}, nil
}

// resolveCategory maps an optional category filter to a category id. Only exact ids and
// case-insensitive names are accepted, a typo must not silently narrow results to another category.
func resolveCategory(snap *catalog.Snapshot, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	cat, ok := search.LookupCategory(snap.Categories, ref)
	if !ok {
		return "", fmt.Errorf("%w: %q", catalog.ErrCategoryNotFound, ref)
	}
	return cat.ID, nil
}

func summarize(e *catalog.Entry, dir catalog.Direction) ItemSummary {
	rule := e.Rule(dir)
	return ItemSummary{
		ID:                  e.ID,
		Name:                e.Name,
		Category:            e.Category,
		Status:              rule.Status,
		DeclarationRequired: rule.DeclarationRequired,
		DutyApplies:         rule.DutyApplies,
	}
}
