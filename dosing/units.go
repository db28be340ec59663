package dosing

import "github.com/giygas/vetdose/formulary/entities"

// PoundsToKilograms is the exact avoirdupois pound in kilograms.
const PoundsToKilograms = 0.45359237

// ToKilograms converts a weight to kilograms. Negative or non-finite weights become 0.
func ToKilograms(value float64, unit entities.WeightUnit) float64 {
	value = finiteOrZero(value)
	if value < 0 {
		return 0
	}
	if unit == entities.UnitPound {
		return value * PoundsToKilograms
	}
	return value
}
