package dosing

import "github.com/giygas/vetdose/formulary/entities"

// NoPresentation is the presentation index of a drug without presentations.
const NoPresentation = -1

// rowKey identifies what a row's defaults were derived from.
type rowKey struct {
	drugID           string
	defaultDose      string
	hasPresentations bool
}

// RowState is the editable state of one drug row: a dose text and a
// presentation choice that override the drug's defaults until the defaults
// themselves change (another drug, or a species with a different range).
type RowState struct {
	DoseInput         string
	PresentationIndex int
	key               rowKey
	synced            bool
}

// NewRowState returns a row seeded from the drug's defaults for the species.
func NewRowState(drug entities.Drug, species entities.Species) *RowState {
	rs := &RowState{}
	rs.Sync(drug, species)
	return rs
}

// Sync resets the row to the drug's defaults when its derivation key changed
// and reports whether it did. Overrides made under an unchanged key are kept.
func (rs *RowState) Sync(drug entities.Drug, species entities.Species) bool {
	def := DefaultDose(ResolveRange(drug, species))
	key := rowKey{drugID: drug.ID, hasPresentations: drug.HasPresentations()}
	if def != nil {
		key.defaultDose = FormatNumber(roundTo(*def, InputDecimals))
	}

	if rs.synced && rs.key == key {
		return false
	}

	rs.synced = true
	rs.key = key
	rs.DoseInput = key.defaultDose
	rs.PresentationIndex = NoPresentation
	if key.hasPresentations {
		rs.PresentationIndex = 0
	}
	return true
}

// SetDose replaces the dose text.
func (rs *RowState) SetDose(text string) {
	rs.DoseInput = text
}

// SelectPresentation chooses a presentation; out-of-range indexes select none.
func (rs *RowState) SelectPresentation(drug entities.Drug, index int) {
	if index < 0 || index >= len(drug.Presentations) {
		rs.PresentationIndex = NoPresentation
		return
	}
	rs.PresentationIndex = index
}

// Presentation returns the selected presentation, or nil.
func (rs *RowState) Presentation(drug entities.Drug) *entities.Presentation {
	if rs.PresentationIndex < 0 || rs.PresentationIndex >= len(drug.Presentations) {
		return nil
	}
	p := drug.Presentations[rs.PresentationIndex]
	return &p
}

// RowResult is the full evaluation of one drug row.
type RowResult struct {
	DrugID            string                 `json:"drugId"`
	UnitLabel         string                 `json:"unitLabel"`
	Range             *entities.DoseRange    `json:"range,omitempty"`
	DefaultDose       *float64               `json:"defaultDose,omitempty"`
	DoseInput         string                 `json:"doseInput"`
	Dose              *float64               `json:"dose,omitempty"`
	DoseMass          float64                `json:"doseMass"`
	PresentationIndex int                    `json:"presentationIndex"`
	Presentation      *entities.Presentation `json:"presentation,omitempty"`
	Result            Result                 `json:"result"`
	OutOfRange        bool                   `json:"outOfRange"`
}

// Evaluate computes a row's result for the given patient species and weight.
func Evaluate(drug entities.Drug, species entities.Species, weightKg float64, rs *RowState) RowResult {
	rng := ResolveRange(drug, species)
	dose := ParseDose(rs.DoseInput)
	pres := rs.Presentation(drug)

	res := RowResult{
		DrugID:            drug.ID,
		UnitLabel:         drug.DoseUnit(),
		Range:             rng,
		DefaultDose:       DefaultDose(rng),
		DoseInput:         rs.DoseInput,
		Dose:              dose,
		PresentationIndex: rs.PresentationIndex,
		Presentation:      pres,
		OutOfRange:        IsOutOfRange(dose, rng),
	}

	var mass *float64
	if dose != nil {
		m := ComputeDoseMass(*dose, weightKg)
		res.DoseMass = m
		mass = &m
	}
	res.Result = ComputeAdministeredQuantity(mass, pres)

	return res
}

// Snapshot converts a row result into the computed part of a worksheet entry.
func (r RowResult) Snapshot(drug entities.Drug) entities.Snapshot {
	return entities.Snapshot{
		ID:           drug.ID,
		Name:         drug.Name,
		Category:     drug.Category,
		Route:        drug.Route,
		UnitLabel:    drug.UnitLabel,
		Dose:         r.Dose,
		Presentation: r.Presentation,
		ResultText:   r.Result.Text,
	}
}
