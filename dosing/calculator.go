// Package dosing implements the weight-based dose engine: numeric text
// normalization, weight unit conversion, dose range resolution and the
// administered quantity calculation. Every function is pure; invalid or
// incomplete input degrades to a sentinel result instead of an error.
package dosing

import (
	"math"
	"strconv"

	"github.com/giygas/vetdose/formulary/entities"
)

// Sentinel classifies why a result carries no quantity.
type Sentinel string

const (
	SentinelNone               Sentinel = ""
	SentinelNoValue            Sentinel = "no_value"
	SentinelNeedsConcentration Sentinel = "needs_concentration"
	SentinelNeedsMassPerUnit   Sentinel = "needs_mass_per_unit"
)

// Display texts for results without a quantity.
const (
	NoResultText           = "—"
	NeedsConcentrationText = "Set conc"
	NeedsMassPerUnitText   = "Set mg/tab"
)

// Quantity unit labels.
const (
	UnitMilliliters = "mL"
	UnitTablets     = "tabs"
)

// QuantityDecimals is the precision of an administered quantity.
const QuantityDecimals = 2

// Result is the displayable outcome of a dose calculation.
type Result struct {
	Text     string   `json:"text"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Sentinel Sentinel `json:"sentinel,omitempty"`
}

// IsSentinel reports whether the result carries no quantity.
func (r Result) IsSentinel() bool {
	return r.Sentinel != SentinelNone
}

// NeedsConfiguration reports whether the result is missing catalog data
// rather than user input.
func (r Result) NeedsConfiguration() bool {
	return r.Sentinel == SentinelNeedsConcentration || r.Sentinel == SentinelNeedsMassPerUnit
}

var noResult = Result{Text: NoResultText, Sentinel: SentinelNoValue}

// ComputeDoseMass returns dosePerKg * max(0, weightKg). Non-finite inputs count
// as 0 and the result is never negative.
func ComputeDoseMass(dosePerKg, weightKg float64) float64 {
	mass := finiteOrZero(dosePerKg) * math.Max(0, finiteOrZero(weightKg))
	if mass <= 0 {
		return 0
	}
	return mass
}

// ComputeAdministeredQuantity converts a dose mass into mL or tablets for the
// presentation. A nil doseMass means no dose was entered.
func ComputeAdministeredQuantity(doseMass *float64, p *entities.Presentation) Result {
	if doseMass == nil || p == nil {
		return noResult
	}

	if finiteOrZero(p.Value) <= 0 {
		if p.Kind == entities.KindLiquid {
			return Result{Text: NeedsConcentrationText, Sentinel: SentinelNeedsConcentration}
		}
		return Result{Text: NeedsMassPerUnitText, Sentinel: SentinelNeedsMassPerUnit}
	}

	qty := roundHalfUp(*doseMass/p.Value, QuantityDecimals)
	unit := UnitTablets
	if p.Kind == entities.KindLiquid {
		unit = UnitMilliliters
	}

	return Result{
		Text:     strconv.FormatFloat(qty, 'f', QuantityDecimals, 64) + " " + unit,
		Quantity: &qty,
		Unit:     unit,
	}
}
