package dosing

import "github.com/giygas/vetdose/formulary/entities"

// ResolveRange returns the per-kg dose range for a drug and species.
// A species override wins over the generic range; the generic range applies only
// when both bounds are set. Nil means no range is known.
func ResolveRange(drug entities.Drug, species entities.Species) *entities.DoseRange {
	if r, ok := drug.DoseRanges[species]; ok {
		return &entities.DoseRange{Min: r.Min, Max: r.Max}
	}
	if drug.DoseMin != nil && drug.DoseMax != nil {
		return &entities.DoseRange{Min: *drug.DoseMin, Max: *drug.DoseMax}
	}
	return nil
}

// DefaultDose is the midpoint of a range, or nil without one.
func DefaultDose(r *entities.DoseRange) *float64 {
	if r == nil {
		return nil
	}
	mid := (r.Min + r.Max) / 2
	return &mid
}

// IsOutOfRange reports whether dose falls outside the inclusive range.
// It is false when either the dose or the range is absent.
func IsOutOfRange(dose *float64, r *entities.DoseRange) bool {
	if dose == nil || r == nil {
		return false
	}
	return *dose < r.Min || *dose > r.Max
}
