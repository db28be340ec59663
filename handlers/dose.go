package handlers

import (
	"errors"
	"net/http"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/logging"
)

const maxNormalizeDecimals = 10

// DoseRequest evaluates one row without a session. Dose and presentation
// default to the row defaults when omitted.
type DoseRequest struct {
	DrugID            string  `json:"drug_id"`
	Species           string  `json:"species"`
	Weight            string  `json:"weight"`
	Unit              string  `json:"unit"`
	Dose              *string `json:"dose"`
	PresentationIndex *int    `json:"presentation_index"`
}

// NormalizeRequest runs the numeric text normalizer
type NormalizeRequest struct {
	Text        string `json:"text"`
	MaxDecimals *int   `json:"max_decimals"`
	Commit      bool   `json:"commit"`
}

// NormalizeResponse carries the normalized text
type NormalizeResponse struct {
	Text string `json:"text"`
}

// ComputeDose evaluates a single drug row for an ad-hoc patient
func (h *HTTPHandlerImpl) ComputeDose(w http.ResponseWriter, r *http.Request) {
	var req DoseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	catalog := h.catalogStore.GetCatalog()
	if catalog == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog not loaded")
		return
	}

	drug, err := catalog.Drug(req.DrugID)
	if err != nil {
		if errors.Is(err, formulary.ErrUnknownDrug) {
			h.RespondWithError(w, http.StatusNotFound, "Drug not found")
			return
		}
		logging.Error("Failed to look up drug", "id", req.DrugID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to look up drug")
		return
	}

	species, err := h.speciesParam(req.Species)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	unit := entities.DefaultWeightUnit
	if req.Unit != "" {
		if unit, err = h.validator.ValidateUnit(req.Unit); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res := evaluateAdHoc(drug, species, req.Weight, unit, req.Dose, req.PresentationIndex)
	recordRow(res)
	h.RespondWithJSON(w, http.StatusOK, res)
}

// evaluateAdHoc builds a fresh row and evaluates it. The weight text is
// normalized as on commit.
func evaluateAdHoc(drug entities.Drug, species entities.Species, weight string, unit entities.WeightUnit, dose *string, presentation *int) dosing.RowResult {
	row := dosing.NewRowState(drug, species)
	if dose != nil {
		row.SetDose(*dose)
	}
	if presentation != nil {
		row.SelectPresentation(drug, *presentation)
	}

	text := dosing.NormalizeOnCommit(weight, dosing.InputDecimals)
	kg := dosing.ToKilograms(dosing.ParseWeight(text), unit)
	return dosing.Evaluate(drug, species, kg, row)
}

// Normalize cleans numeric text as while typing, or normalizes it as on commit
func (h *HTTPHandlerImpl) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	decimals := dosing.InputDecimals
	if req.MaxDecimals != nil {
		decimals = *req.MaxDecimals
	}
	if decimals < 0 || decimals > maxNormalizeDecimals {
		h.RespondWithError(w, http.StatusBadRequest, "max_decimals must be between 0 and 10")
		return
	}

	text := dosing.CleanWhileTyping(req.Text, decimals)
	if req.Commit {
		text = dosing.NormalizeOnCommit(req.Text, decimals)
	}

	h.RespondWithJSON(w, http.StatusOK, NormalizeResponse{Text: text})
}
