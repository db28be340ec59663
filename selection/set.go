// Package selection keeps the worksheet of drugs a user has chosen.
package selection

import "github.com/giygas/vetdose/formulary/entities"

// Patch is a partial update of a worksheet entry. Nil groups are left untouched,
// so a recomputation patch never overwrites notes typed by the user.
type Patch struct {
	ID       string
	Snapshot *entities.Snapshot
	Notes    *string
}

// Set is an insertion-ordered map of selected items keyed by drug id.
// It is not safe for concurrent use; callers own it per session.
type Set struct {
	items map[string]*entities.SelectedItem
	order []string
}

// NewSet returns an empty selection set.
func NewSet() *Set {
	return &Set{items: make(map[string]*entities.SelectedItem)}
}

// Toggle removes the entry with item.ID if present, otherwise inserts item.
// It reports whether the item is selected afterwards.
func (s *Set) Toggle(item entities.SelectedItem) bool {
	if _, ok := s.items[item.ID]; ok {
		s.remove(item.ID)
		return false
	}

	stored := item
	s.items[item.ID] = &stored
	s.order = append(s.order, item.ID)
	return true
}

// UpsertIfPresent merges the patch into an existing entry. It is a no-op for
// drugs that are not selected and reports whether anything was applied.
func (s *Set) UpsertIfPresent(p Patch) bool {
	existing, ok := s.items[p.ID]
	if !ok {
		return false
	}

	if p.Snapshot != nil {
		existing.Snapshot = *p.Snapshot
		existing.ID = p.ID
	}
	if p.Notes != nil {
		existing.Notes = *p.Notes
	}
	return true
}

// SetNotes replaces the notes of a selected drug.
func (s *Set) SetNotes(id, notes string) bool {
	return s.UpsertIfPresent(Patch{ID: id, Notes: &notes})
}

// Clear empties the set.
func (s *Set) Clear() {
	s.items = make(map[string]*entities.SelectedItem)
	s.order = nil
}

// Has reports whether the drug is selected.
func (s *Set) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Get returns a copy of the entry for id.
func (s *Set) Get(id string) (entities.SelectedItem, bool) {
	item, ok := s.items[id]
	if !ok {
		return entities.SelectedItem{}, false
	}
	return *item, true
}

// Len returns the number of selected drugs.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns copies of all entries in insertion order.
func (s *Set) Items() []entities.SelectedItem {
	out := make([]entities.SelectedItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

func (s *Set) remove(id string) {
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
