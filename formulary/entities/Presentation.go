package entities

// PresentationKind tells whether a presentation is dosed by volume or by unit count.
type PresentationKind string

const (
	KindLiquid PresentationKind = "liquid"
	KindSolid  PresentationKind = "solid"
)

// Presentation is one dispensed form of a drug.
// Value is unit-per-mL for liquids and unit-per-tablet for solids; Value <= 0 means unset.
type Presentation struct {
	Label string           `json:"label" yaml:"label"`
	Kind  PresentationKind `json:"kind" yaml:"kind"`
	Value float64          `json:"value" yaml:"value"`
}
