package dosing

import (
	"testing"

	"github.com/giygas/vetdose/formulary/entities"
)

func butorphanol() entities.Drug {
	return entities.Drug{
		ID: "butor",
		DoseRanges: map[entities.Species]entities.DoseRange{
			entities.SpeciesDog: {Min: 0.2, Max: 0.4},
			entities.SpeciesCat: {Min: 0.1, Max: 0.4},
		},
		Presentations: []entities.Presentation{
			{Label: "2 mg/mL", Kind: entities.KindLiquid, Value: 2},
			{Label: "10 mg/mL", Kind: entities.KindLiquid, Value: 10},
		},
	}
}

func TestRowStateKeepsOverrideUnderSameKey(t *testing.T) {
	drug := butorphanol()
	row := NewRowState(drug, entities.SpeciesDog)

	row.SetDose("0.35")
	row.SelectPresentation(drug, 1)

	if row.Sync(drug, entities.SpeciesDog) {
		t.Error("Sync reported a reset for an unchanged key")
	}
	if row.DoseInput != "0.35" || row.PresentationIndex != 1 {
		t.Errorf("Override lost: %q %d", row.DoseInput, row.PresentationIndex)
	}
}

func TestRowStateResetsOnSpeciesChange(t *testing.T) {
	drug := butorphanol()
	row := NewRowState(drug, entities.SpeciesDog)
	row.SetDose("0.35")
	row.SelectPresentation(drug, 1)

	if !row.Sync(drug, entities.SpeciesCat) {
		t.Fatal("Expected reset when the resolved range changes")
	}
	if row.DoseInput != "0.25" {
		t.Errorf("Expected cat midpoint 0.25, got %q", row.DoseInput)
	}
	if row.PresentationIndex != 0 {
		t.Errorf("Expected first presentation after reset, got %d", row.PresentationIndex)
	}
}

func TestRowStateSameRangeAcrossSpecies(t *testing.T) {
	drug := entities.Drug{
		ID: "marop",
		DoseRanges: map[entities.Species]entities.DoseRange{
			entities.SpeciesDog: {Min: 1, Max: 1},
			entities.SpeciesCat: {Min: 1, Max: 1},
		},
	}
	row := NewRowState(drug, entities.SpeciesDog)
	row.SetDose("1.5")

	if row.Sync(drug, entities.SpeciesCat) {
		t.Error("Expected no reset when the default dose is unchanged")
	}
	if row.DoseInput != "1.5" {
		t.Errorf("Expected override kept, got %q", row.DoseInput)
	}
}

func TestRowStateResetsOnDrugChange(t *testing.T) {
	row := NewRowState(butorphanol(), entities.SpeciesDog)
	row.SetDose("9")

	other := entities.Drug{ID: "ket", DoseRanges: map[entities.Species]entities.DoseRange{entities.SpeciesDog: {Min: 2, Max: 10}}}
	if !row.Sync(other, entities.SpeciesDog) {
		t.Fatal("Expected reset for a different drug")
	}
	if row.DoseInput != "6" || row.PresentationIndex != NoPresentation {
		t.Errorf("Unexpected state after drug change: %q %d", row.DoseInput, row.PresentationIndex)
	}
}

func TestSelectPresentationBounds(t *testing.T) {
	drug := butorphanol()
	row := NewRowState(drug, entities.SpeciesDog)

	row.SelectPresentation(drug, 5)
	if row.PresentationIndex != NoPresentation || row.Presentation(drug) != nil {
		t.Errorf("Expected no presentation for out-of-range index, got %d", row.PresentationIndex)
	}

	row.SelectPresentation(drug, 1)
	if p := row.Presentation(drug); p == nil || p.Label != "10 mg/mL" {
		t.Errorf("Expected 10 mg/mL, got %+v", p)
	}
}

func TestRowStateDefaultDoseIsRounded(t *testing.T) {
	row := NewRowState(butorphanol(), entities.SpeciesDog)
	if row.DoseInput != "0.3" {
		t.Errorf("Expected dog midpoint rendered as 0.3, got %q", row.DoseInput)
	}
}
