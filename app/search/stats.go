package search

import "github.com/umputun/border-items-mcp/app/catalog"

// Stats tallies entry statuses for one category and direction
type Stats struct {
	Total      int `json:"total"`
	Allowed    int `json:"allowed"`
	Restricted int `json:"restricted"`
	Prohibited int `json:"prohibited"`
}

// CategoryStats counts the entries of a category by their status for direction d
func CategoryStats(entries []catalog.Entry, categoryID string, d catalog.Direction) Stats {
	var st Stats
	for i := range entries {
		if entries[i].Category != categoryID {
			continue
		}
		st.Total++
		switch entries[i].Rule(d).Status {
		case catalog.StatusAllowed:
			st.Allowed++
		case catalog.StatusRestricted:
			st.Restricted++
		case catalog.StatusProhibited:
			st.Prohibited++
		}
	}
	return st
}

// CategoryCounts returns the live number of entries per category id
func CategoryCounts(entries []catalog.Entry) map[string]int {
	counts := make(map[string]int)
	for i := range entries {
		counts[entries[i].Category]++
	}
	return counts
}
