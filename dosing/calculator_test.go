package dosing

import (
	"math"
	"testing"

	"github.com/giygas/vetdose/formulary/entities"
)

func TestComputeDoseMass(t *testing.T) {
	tests := []struct {
		name      string
		dosePerKg float64
		weightKg  float64
		expected  float64
	}{
		{"rate times weight", 2, 10, 20},
		{"zero weight", 2, 0, 0},
		{"negative weight uses zero", 2, -5, 0},
		{"negative dose never negative", -1, 10, 0},
		{"nan dose", math.NaN(), 10, 0},
		{"infinite weight", 1, math.Inf(1), 0},
		{"fractional weight", 0.5, 4.5, 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeDoseMass(tt.dosePerKg, tt.weightKg); got != tt.expected {
				t.Errorf("ComputeDoseMass(%v, %v) = %v, expected %v", tt.dosePerKg, tt.weightKg, got, tt.expected)
			}
		})
	}
}

func TestComputeAdministeredQuantity(t *testing.T) {
	liquid := &entities.Presentation{Label: "10 mg/mL", Kind: entities.KindLiquid, Value: 10}
	tab := &entities.Presentation{Label: "16 mg tab", Kind: entities.KindSolid, Value: 16}

	tests := []struct {
		name         string
		mass         *float64
		presentation *entities.Presentation
		text         string
		sentinel     Sentinel
	}{
		{"liquid volume", ptr(10), liquid, "1.00 mL", SentinelNone},
		{"tablet count", ptr(20), tab, "1.25 tabs", SentinelNone},
		{"rounds half up", ptr(1.005), &entities.Presentation{Kind: entities.KindLiquid, Value: 1}, "1.01 mL", SentinelNone},
		{"zero mass is a result", ptr(0), liquid, "0.00 mL", SentinelNone},
		{"no dose entered", nil, liquid, NoResultText, SentinelNoValue},
		{"no presentation", ptr(10), nil, NoResultText, SentinelNoValue},
		{"liquid without concentration", ptr(10), &entities.Presentation{Kind: entities.KindLiquid, Value: 0}, NeedsConcentrationText, SentinelNeedsConcentration},
		{"solid without strength", ptr(10), &entities.Presentation{Kind: entities.KindSolid, Value: -2}, NeedsMassPerUnitText, SentinelNeedsMassPerUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAdministeredQuantity(tt.mass, tt.presentation)
			if got.Text != tt.text {
				t.Errorf("Expected text %q, got %q", tt.text, got.Text)
			}
			if got.Sentinel != tt.sentinel {
				t.Errorf("Expected sentinel %q, got %q", tt.sentinel, got.Sentinel)
			}
			if got.IsSentinel() != (got.Quantity == nil) {
				t.Errorf("Quantity presence does not match sentinel state: %+v", got)
			}
		})
	}
}

func TestNeedsConfiguration(t *testing.T) {
	zero := &entities.Presentation{Kind: entities.KindLiquid, Value: 0}
	if !ComputeAdministeredQuantity(ptr(1), zero).NeedsConfiguration() {
		t.Error("Expected missing concentration to need configuration")
	}
	if ComputeAdministeredQuantity(nil, zero).NeedsConfiguration() {
		t.Error("Expected missing dose to be a plain no-value sentinel")
	}
}

func TestEvaluateScenario(t *testing.T) {
	drug := entities.Drug{
		ID:         "marop",
		Name:       "Maropitant (Cerenia)",
		Category:   "Antiemetic",
		Species:    []entities.Species{entities.SpeciesDog, entities.SpeciesCat},
		DoseRanges: map[entities.Species]entities.DoseRange{entities.SpeciesDog: {Min: 1, Max: 1}},
		Presentations: []entities.Presentation{
			{Label: "10 mg/mL", Kind: entities.KindLiquid, Value: 10},
		},
	}

	row := NewRowState(drug, entities.SpeciesDog)
	if row.DoseInput != "1" || row.PresentationIndex != 0 {
		t.Fatalf("Expected defaults dose=1 presentation=0, got %q %d", row.DoseInput, row.PresentationIndex)
	}

	res := Evaluate(drug, entities.SpeciesDog, 10, row)
	if res.DoseMass != 10 {
		t.Errorf("Expected dose mass 10, got %v", res.DoseMass)
	}
	if res.Result.Text != "1.00 mL" {
		t.Errorf("Expected 1.00 mL, got %q", res.Result.Text)
	}
	if res.OutOfRange {
		t.Error("Dose on the inclusive bound flagged out of range")
	}
	if res.UnitLabel != entities.DefaultUnitLabel {
		t.Errorf("Expected default unit label, got %q", res.UnitLabel)
	}

	row.SetDose("2")
	res = Evaluate(drug, entities.SpeciesDog, 10, row)
	if !res.OutOfRange {
		t.Error("Expected 2 mg/kg to be out of range")
	}
	if res.Result.Text != "2.00 mL" {
		t.Errorf("Expected 2.00 mL, got %q", res.Result.Text)
	}

	row.SetDose("")
	res = Evaluate(drug, entities.SpeciesDog, 10, row)
	if res.Result.Text != NoResultText || res.OutOfRange || res.Dose != nil {
		t.Errorf("Expected no-value result for empty dose, got %+v", res)
	}

	row.SetDose("0x1p3")
	res = Evaluate(drug, entities.SpeciesDog, 10, row)
	if res.Result.Text != NoResultText || res.Dose != nil {
		t.Errorf("Expected no-value result for hex dose text, got %+v", res)
	}

	snap := res.Snapshot(drug)
	if snap.ID != "marop" || snap.Name != drug.Name || snap.ResultText != NoResultText {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestEvaluateWithoutRangeOrPresentations(t *testing.T) {
	drug := entities.Drug{ID: "bare", Name: "Bare"}
	row := NewRowState(drug, entities.SpeciesCat)

	if row.DoseInput != "" || row.PresentationIndex != NoPresentation {
		t.Fatalf("Expected empty defaults, got %q %d", row.DoseInput, row.PresentationIndex)
	}

	row.SetDose("3")
	res := Evaluate(drug, entities.SpeciesCat, 4, row)
	if res.Range != nil || res.OutOfRange {
		t.Errorf("Expected no range features, got %+v", res)
	}
	if res.DoseMass != 12 {
		t.Errorf("Expected dose mass 12, got %v", res.DoseMass)
	}
	if res.Result.Sentinel != SentinelNoValue {
		t.Errorf("Expected no-value sentinel without presentation, got %q", res.Result.Sentinel)
	}
}
