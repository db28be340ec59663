package entities

// Snapshot holds the computed fields of a worksheet entry.
// It is refreshed from the drug row on every recomputation.
type Snapshot struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Route        string        `json:"route,omitempty"`
	UnitLabel    string        `json:"unitLabel,omitempty"`
	Dose         *float64      `json:"dose,omitempty"`
	Presentation *Presentation `json:"presentation,omitempty"`
	ResultText   string        `json:"resultText"`
}

// SelectedItem is a worksheet entry: the computed snapshot plus user notes.
type SelectedItem struct {
	Snapshot
	Notes string `json:"notes,omitempty"`
}

// DoseUnit returns the unit label, falling back to mg/kg.
func (s Snapshot) DoseUnit() string {
	if s.UnitLabel == "" {
		return DefaultUnitLabel
	}
	return s.UnitLabel
}
