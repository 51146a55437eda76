package search

import "github.com/umputun/border-items-mcp/app/catalog"

// Criteria selects catalog entries. All set criteria must hold.
// Nil flags don't filter; Status and the flags are checked against the rule for Direction,
// and an empty Direction means catalog.DirectionUSAToCanada.
type Criteria struct {
	Direction           catalog.Direction
	Category            string
	Status              catalog.Status
	HasQuantityLimit    *bool
	HasAgeRestriction   *bool
	RequiresDeclaration *bool
}

// IsEmpty reports whether no criterion is set
func (c Criteria) IsEmpty() bool {
	return c.Category == "" && c.Status == "" &&
		c.HasQuantityLimit == nil && c.HasAgeRestriction == nil && c.RequiresDeclaration == nil
}

// Match reports whether e satisfies every set criterion
func (c Criteria) Match(e *catalog.Entry) bool {
	if c.Category != "" && e.Category != c.Category {
		return false
	}

	rule := e.Rule(c.Direction)
	if c.Status != "" && rule.Status != c.Status {
		return false
	}
	if c.HasQuantityLimit != nil && *c.HasQuantityLimit != rule.HasQuantityLimit() {
		return false
	}
	if c.HasAgeRestriction != nil && *c.HasAgeRestriction != rule.HasAgeRestriction() {
		return false
	}
	if c.RequiresDeclaration != nil && *c.RequiresDeclaration != rule.DeclarationRequired {
		return false
	}
	return true
}

// Filter returns the entries matching c in catalog order.
// With no criteria set the input slice itself is returned.
func Filter(entries []catalog.Entry, c Criteria) []catalog.Entry {
	if c.IsEmpty() {
		return entries
	}

	res := []catalog.Entry{}
	for i := range entries {
		if c.Match(&entries[i]) {
			res = append(res, entries[i])
		}
	}
	return res
}

// ByCategory returns entries in the given category
func ByCategory(entries []catalog.Entry, categoryID string) []catalog.Entry {
	res := []catalog.Entry{}
	for i := range entries {
		if entries[i].Category == categoryID {
			res = append(res, entries[i])
		}
	}
	return res
}

// ByStatus returns entries with the given status for direction d
func ByStatus(entries []catalog.Entry, status catalog.Status, d catalog.Direction) []catalog.Entry {
	res := []catalog.Entry{}
	for i := range entries {
		if entries[i].Rule(d).Status == status {
			res = append(res, entries[i])
		}
	}
	return res
}
