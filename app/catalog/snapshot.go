package catalog

import "errors"

var (
	// ErrEntryNotFound is returned when an entry id is not in the catalog
	ErrEntryNotFound = errors.New("entry not found")
	// ErrCategoryNotFound is returned when a category reference matches no category
	ErrCategoryNotFound = errors.New("category not found")
)

// Snapshot is a validated, read-only view of the catalog.
// It is safe for concurrent use since nothing mutates it after construction.
type Snapshot struct {
	Entries           []Entry
	Categories        []Category
	ItemsUpdated      string
	CategoriesUpdated string

	entryIdx map[string]int
	catIdx   map[string]int
}

// NewSnapshot builds a snapshot and its id lookup tables
func NewSnapshot(entries []Entry, categories []Category) *Snapshot {
	s := &Snapshot{
		Entries:    entries,
		Categories: categories,
		entryIdx:   make(map[string]int, len(entries)),
		catIdx:     make(map[string]int, len(categories)),
	}
	for i := range entries {
		if _, dup := s.entryIdx[entries[i].ID]; !dup {
			s.entryIdx[entries[i].ID] = i
		}
	}
	for i := range categories {
		if _, dup := s.catIdx[categories[i].ID]; !dup {
			s.catIdx[categories[i].ID] = i
		}
	}
	return s
}

// Entry returns the entry with the given id
func (s *Snapshot) Entry(id string) (*Entry, bool) {
	i, ok := s.entryIdx[id]
	if !ok {
		return nil, false
	}
	return &s.Entries[i], true
}

// Category returns the category with the given id
func (s *Snapshot) Category(id string) (*Category, bool) {
	i, ok := s.catIdx[id]
	if !ok {
		return nil, false
	}
	return &s.Categories[i], true
}

// Parent resolves the entry's parent regulation through the id lookup table.
// It reports false when the entry has no parent or the parent is not in the catalog.
func (s *Snapshot) Parent(e *Entry) (*Entry, bool) {
	if e.ParentRegulationID == "" {
		return nil, false
	}
	return s.Entry(e.ParentRegulationID)
}
