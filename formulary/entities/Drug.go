package entities

// DefaultUnitLabel is used when a drug does not declare its dosing unit.
const DefaultUnitLabel = "mg/kg"

// DoseRange is a per-kilogram dose interval, inclusive on both ends.
type DoseRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Drug is an immutable formulary entry.
// A nil DoseMin or DoseMax means the generic range is not defined.
type Drug struct {
	ID            string                `json:"id" yaml:"id"`
	Name          string                `json:"name" yaml:"name"`
	Category      string                `json:"category" yaml:"category"`
	Species       []Species             `json:"species" yaml:"species"`
	UnitLabel     string                `json:"unitLabel,omitempty" yaml:"unit_label,omitempty"`
	DoseMin       *float64              `json:"doseMin,omitempty" yaml:"dose_min,omitempty"`
	DoseMax       *float64              `json:"doseMax,omitempty" yaml:"dose_max,omitempty"`
	DoseRanges    map[Species]DoseRange `json:"doseRanges,omitempty" yaml:"dose_ranges,omitempty"`
	Presentations []Presentation        `json:"presentations" yaml:"presentations"`
	Route         string                `json:"route,omitempty" yaml:"route,omitempty"`
	Notes         string                `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DoseUnit returns the dosing unit label, falling back to mg/kg.
func (d Drug) DoseUnit() string {
	if d.UnitLabel == "" {
		return DefaultUnitLabel
	}
	return d.UnitLabel
}

// AppliesTo reports whether the drug lists the species.
func (d Drug) AppliesTo(s Species) bool {
	for _, sp := range d.Species {
		if sp == s {
			return true
		}
	}
	return false
}

// HasPresentations reports whether the drug has at least one presentation.
func (d Drug) HasPresentations() bool {
	return len(d.Presentations) > 0
}
