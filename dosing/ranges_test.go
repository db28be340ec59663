package dosing

import (
	"math"
	"testing"

	"github.com/giygas/vetdose/formulary/entities"
)

func TestResolveRange(t *testing.T) {
	drug := entities.Drug{
		ID:      "amoxi",
		DoseMin: ptr(12.5),
		DoseMax: ptr(25),
		DoseRanges: map[entities.Species]entities.DoseRange{
			entities.SpeciesCat: {Min: 10, Max: 20},
		},
	}

	t.Run("species override wins", func(t *testing.T) {
		r := ResolveRange(drug, entities.SpeciesCat)
		if r == nil || r.Min != 10 || r.Max != 20 {
			t.Fatalf("Expected cat override 10-20, got %+v", r)
		}
	})

	t.Run("generic range as fallback", func(t *testing.T) {
		r := ResolveRange(drug, entities.SpeciesDog)
		if r == nil || r.Min != 12.5 || r.Max != 25 {
			t.Fatalf("Expected generic 12.5-25, got %+v", r)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := ResolveRange(drug, entities.SpeciesCat)
		b := ResolveRange(drug, entities.SpeciesCat)
		if *a != *b {
			t.Errorf("Expected identical ranges, got %+v and %+v", a, b)
		}
	})

	t.Run("undefined without override or generic pair", func(t *testing.T) {
		partial := entities.Drug{ID: "x", DoseMin: ptr(1)}
		if r := ResolveRange(partial, entities.SpeciesDog); r != nil {
			t.Errorf("Expected nil range with only doseMin, got %+v", r)
		}
		if r := ResolveRange(entities.Drug{ID: "y"}, entities.SpeciesRat); r != nil {
			t.Errorf("Expected nil range for empty drug, got %+v", r)
		}
	})

	t.Run("override for another species does not leak", func(t *testing.T) {
		onlyDog := entities.Drug{
			ID:         "butor",
			DoseRanges: map[entities.Species]entities.DoseRange{entities.SpeciesDog: {Min: 0.2, Max: 0.4}},
		}
		if r := ResolveRange(onlyDog, entities.SpeciesRabbit); r != nil {
			t.Errorf("Expected nil range for rabbit, got %+v", r)
		}
	})

	t.Run("returned range is a copy", func(t *testing.T) {
		r := ResolveRange(drug, entities.SpeciesCat)
		r.Min = 99
		if drug.DoseRanges[entities.SpeciesCat].Min != 10 {
			t.Error("Mutating the resolved range changed the drug")
		}
	})
}

func TestDefaultDose(t *testing.T) {
	if DefaultDose(nil) != nil {
		t.Error("Expected nil default dose without range")
	}
	if got := DefaultDose(&entities.DoseRange{Min: 0.2, Max: 0.4}); got == nil || math.Abs(*got-0.3) > 1e-12 {
		t.Errorf("Expected midpoint close to 0.3, got %v", got)
	}
	if got := DefaultDose(&entities.DoseRange{Min: 2, Max: 10}); *got != 6 {
		t.Errorf("Expected midpoint 6, got %v", *got)
	}
}

func TestIsOutOfRange(t *testing.T) {
	rng := &entities.DoseRange{Min: 1, Max: 1}

	tests := []struct {
		name     string
		dose     *float64
		rng      *entities.DoseRange
		expected bool
	}{
		{"inclusive bound", ptr(1), rng, false},
		{"above", ptr(2), rng, true},
		{"below", ptr(0.99), rng, true},
		{"no dose", nil, rng, false},
		{"no range", ptr(50), nil, false},
		{"zero dose below range", ptr(0), rng, true},
	}

	for _, tt := range tests {
		if got := IsOutOfRange(tt.dose, tt.rng); got != tt.expected {
			t.Errorf("%s: IsOutOfRange = %v, expected %v", tt.name, got, tt.expected)
		}
	}
}
