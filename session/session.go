// Package session holds the per-user calculator state: patient context, the
// working state of each drug row and the selection worksheet. A Session is
// owned by one caller at a time; every method locks it for the whole call so a
// recomputation pass observes a single patient context.
package session

import (
	"sync"
	"time"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/selection"
)

// DefaultWeightText is the weight a new session starts with.
const DefaultWeightText = "10"

// Patient is the patient context every row is computed against.
type Patient struct {
	Species    entities.Species    `json:"species"`
	Unit       entities.WeightUnit `json:"unit"`
	WeightText string              `json:"weightText"`
	WeightKg   float64             `json:"weightKg"`
}

// Session is one calculator worksheet.
type Session struct {
	ID string

	mu         sync.Mutex
	species    entities.Species
	unit       entities.WeightUnit
	weightText string
	rows       map[string]*dosing.RowState
	drugs      map[string]entities.Drug // last definition seen per row
	selected   *selection.Set
	lastSeen   time.Time
}

// New returns a session with the default patient context.
func New(id string) *Session {
	return &Session{
		ID:         id,
		species:    entities.DefaultSpecies,
		unit:       entities.DefaultWeightUnit,
		weightText: DefaultWeightText,
		rows:       make(map[string]*dosing.RowState),
		drugs:      make(map[string]entities.Drug),
		selected:   selection.NewSet(),
		lastSeen:   time.Now(),
	}
}

// Patient returns the current patient context.
func (s *Session) Patient() Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientLocked()
}

func (s *Session) patientLocked() Patient {
	return Patient{
		Species:    s.species,
		Unit:       s.unit,
		WeightText: s.weightText,
		WeightKg:   dosing.ToKilograms(dosing.ParseWeight(s.weightText), s.unit),
	}
}

// PatientUpdate is a partial patient context edit. Nil fields are left as is;
// Commit normalizes the weight text after Weight is applied.
type PatientUpdate struct {
	Species *entities.Species
	Unit    *entities.WeightUnit
	Weight  *string
	Commit  bool
}

// UpdatePatient applies every field of u under one lock and refreshes the
// worksheet, so no reader sees a partially applied context.
func (s *Session) UpdatePatient(u PatientUpdate) Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Species != nil {
		s.species = *u.Species
	}
	if u.Unit != nil {
		s.unit = *u.Unit
	}
	if u.Weight != nil {
		s.weightText = dosing.CleanWhileTyping(*u.Weight, dosing.InputDecimals)
	}
	if u.Commit {
		s.weightText = dosing.NormalizeOnCommit(s.weightText, dosing.InputDecimals)
	}
	s.touch()

	return s.resyncSelectedLocked()
}

// SetSpecies changes the active species. Rows whose default dose changed are
// reset, and selected entries are recomputed.
func (s *Session) SetSpecies(sp entities.Species) {
	s.UpdatePatient(PatientUpdate{Species: &sp})
}

// SetUnit changes the unit the weight text is read in.
func (s *Session) SetUnit(u entities.WeightUnit) {
	s.UpdatePatient(PatientUpdate{Unit: &u})
}

// TypeWeight stores weight text as it is being typed and returns the cleaned text.
func (s *Session) TypeWeight(raw string) string {
	return s.UpdatePatient(PatientUpdate{Weight: &raw}).WeightText
}

// CommitWeight normalizes the stored weight text, as on field blur.
func (s *Session) CommitWeight() string {
	return s.UpdatePatient(PatientUpdate{Commit: true}).WeightText
}

// SetDose replaces the dose text of a drug row and refreshes its worksheet entry.
func (s *Session) SetDose(drug entities.Drug, text string) dosing.RowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.rowLocked(drug).SetDose(text)
	return s.syncLocked(drug, s.patientLocked())
}

// SelectPresentation chooses a presentation for a drug row and refreshes its worksheet entry.
func (s *Session) SelectPresentation(drug entities.Drug, index int) dosing.RowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.rowLocked(drug).SelectPresentation(drug, index)
	return s.syncLocked(drug, s.patientLocked())
}

// Evaluate computes one row without touching the worksheet.
func (s *Session) Evaluate(drug entities.Drug) dosing.RowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.patientLocked()
	return dosing.Evaluate(drug, p.Species, p.WeightKg, s.rowLocked(drug))
}

// Recompute evaluates every given row against one patient context, then
// refreshes the worksheet entries of the selected ones. Results are returned
// in input order.
func (s *Session) Recompute(drugs []entities.Drug) []dosing.RowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	p := s.patientLocked()
	results := make([]dosing.RowResult, len(drugs))
	for i, d := range drugs {
		results[i] = dosing.Evaluate(d, p.Species, p.WeightKg, s.rowLocked(d))
	}
	for i, d := range drugs {
		snap := results[i].Snapshot(d)
		s.selected.UpsertIfPresent(selection.Patch{ID: d.ID, Snapshot: &snap})
	}
	return results
}

// Toggle selects or deselects a drug. A new entry is seeded from the row's
// current result. It reports whether the drug is selected afterwards.
func (s *Session) Toggle(drug entities.Drug) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	p := s.patientLocked()
	res := dosing.Evaluate(drug, p.Species, p.WeightKg, s.rowLocked(drug))
	return s.selected.Toggle(entities.SelectedItem{Snapshot: res.Snapshot(drug)})
}

// SetNotes edits the notes of a selected drug. It reports false when the drug
// is not selected.
func (s *Session) SetNotes(drugID, notes string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.selected.SetNotes(drugID, notes)
}

// ClearSelection empties the worksheet.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.selected.Clear()
}

// IsSelected reports whether a drug is on the worksheet.
func (s *Session) IsSelected(drugID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Has(drugID)
}

// Selected returns the worksheet entries in selection order.
func (s *Session) Selected() []entities.SelectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Items()
}

// Reset restores the default patient context and empties rows and worksheet.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.species = entities.DefaultSpecies
	s.unit = entities.DefaultWeightUnit
	s.weightText = DefaultWeightText
	s.rows = make(map[string]*dosing.RowState)
	s.drugs = make(map[string]entities.Drug)
	s.selected.Clear()
	s.touch()
}

// LastSeen returns when the session was last mutated.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// rowLocked returns the row for drug, synced to the current species.
func (s *Session) rowLocked(drug entities.Drug) *dosing.RowState {
	s.drugs[drug.ID] = drug
	row, ok := s.rows[drug.ID]
	if !ok {
		row = dosing.NewRowState(drug, s.species)
		s.rows[drug.ID] = row
		return row
	}
	row.Sync(drug, s.species)
	return row
}

func (s *Session) syncLocked(drug entities.Drug, p Patient) dosing.RowResult {
	res := dosing.Evaluate(drug, p.Species, p.WeightKg, s.rowLocked(drug))
	snap := res.Snapshot(drug)
	s.selected.UpsertIfPresent(selection.Patch{ID: drug.ID, Snapshot: &snap})
	return res
}

// resyncSelectedLocked recomputes every worksheet entry against the current
// patient context and returns that context.
func (s *Session) resyncSelectedLocked() Patient {
	p := s.patientLocked()
	for _, item := range s.selected.Items() {
		drug, ok := s.drugs[item.ID]
		if !ok {
			continue
		}
		s.syncLocked(drug, p)
	}
	return p
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}
