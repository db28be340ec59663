package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/logging"
	"github.com/giygas/vetdose/metrics"
	"github.com/giygas/vetdose/printsheet"
	"github.com/giygas/vetdose/session"
	"github.com/go-chi/chi/v5"
)

// SessionResponse is the patient context and worksheet of a session
type SessionResponse struct {
	ID       string                  `json:"id"`
	Patient  session.Patient         `json:"patient"`
	Selected []entities.SelectedItem `json:"selected"`
}

// PatientRequest edits the patient context. Omitted fields are unchanged;
// weight is stored as typed unless commit is set.
type PatientRequest struct {
	Species *string `json:"species"`
	Unit    *string `json:"unit"`
	Weight  *string `json:"weight"`
	Commit  bool    `json:"commit"`
}

// RowRequest edits one drug row
type RowRequest struct {
	Dose              *string `json:"dose"`
	PresentationIndex *int    `json:"presentation_index"`
}

// RowResponse is an evaluated row with its selection state
type RowResponse struct {
	dosing.RowResult
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// RowsResponse is a recomputation pass over the visible rows
type RowsResponse struct {
	Patient session.Patient `json:"patient"`
	Rows    []RowResponse   `json:"rows"`
}

// NotesRequest replaces the notes of a selected drug
type NotesRequest struct {
	Notes string `json:"notes"`
}

// SelectionResponse reports a toggle outcome and the resulting worksheet
type SelectionResponse struct {
	Selected bool                    `json:"selected"`
	Items    []entities.SelectedItem `json:"items"`
}

func sessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{ID: s.ID, Patient: s.Patient(), Selected: s.Selected()}
}

// sessionFromRequest resolves the {id} session, answering 404 when unknown
func (h *HTTPHandlerImpl) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessionStore.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.RespondWithError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		logging.Error("Failed to load session", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	return s, true
}

// CreateSession starts a worksheet with the default patient context
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessionStore.Create()
	metrics.SessionsActive.Set(float64(h.sessionStore.Len()))

	w.Header().Set("Location", "/sessions/"+s.ID)
	h.RespondWithJSON(w, http.StatusCreated, sessionResponse(s))
}

// ServeSession returns the patient context and worksheet
func (h *HTTPHandlerImpl) ServeSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, sessionResponse(s))
}

// DeleteSession drops a session
func (h *HTTPHandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.RespondWithError(w, http.StatusNotFound, "Session not found")
			return
		}
		logging.Error("Failed to delete session", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	metrics.SessionsActive.Set(float64(h.sessionStore.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePatient edits species, unit and weight text. All fields are
// validated before any is applied.
func (h *HTTPHandlerImpl) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req PatientRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	update := session.PatientUpdate{Weight: req.Weight, Commit: req.Commit}
	if req.Species != nil {
		sp, err := h.validator.ValidateSpecies(*req.Species)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Species = &sp
	}
	if req.Unit != nil {
		u, err := h.validator.ValidateUnit(*req.Unit)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Unit = &u
	}

	s.UpdatePatient(update)

	h.RespondWithJSON(w, http.StatusOK, sessionResponse(s))
}

// UpdateRow edits the dose text and presentation of one drug row
func (h *HTTPHandlerImpl) UpdateRow(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	drug, ok := h.drugFromRequest(w, r, "drugID")
	if !ok {
		return
	}

	var req RowRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res := s.Evaluate(drug)
	if req.Dose != nil {
		res = s.SetDose(drug, *req.Dose)
	}
	if req.PresentationIndex != nil {
		res = s.SelectPresentation(drug, *req.PresentationIndex)
	}
	recordRow(res)

	h.RespondWithJSON(w, http.StatusOK, RowResponse{
		RowResult: res,
		Name:      drug.Name,
		Selected:  s.IsSelected(drug.ID),
	})
}

// ServeRows recomputes the visible rows for the session's patient. The
// species filter always uses the session species.
func (h *HTTPHandlerImpl) ServeRows(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	catalog := h.catalogStore.GetCatalog()
	if catalog == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog not loaded")
		return
	}

	if r.URL.Query().Has("species") {
		h.RespondWithError(w, http.StatusBadRequest, "species is taken from the session patient")
		return
	}

	q, ok := h.searchParams(w, r)
	if !ok {
		return
	}

	patient := s.Patient()
	drugs, err := catalog.Search(q.tab, q.query, q.onlySpecies, patient.Species)
	if err != nil {
		if errors.Is(err, formulary.ErrUnknownTab) {
			h.RespondWithError(w, http.StatusNotFound, "Tab not found")
			return
		}
		logging.Error("Failed to search catalog", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to search catalog")
		return
	}

	results := s.Recompute(drugs)
	rows := make([]RowResponse, len(results))
	for i, res := range results {
		recordRow(res)
		rows[i] = RowResponse{RowResult: res, Name: drugs[i].Name, Selected: s.IsSelected(res.DrugID)}
	}

	h.RespondWithJSON(w, http.StatusOK, RowsResponse{Patient: s.Patient(), Rows: rows})
}

// ToggleSelection adds a drug to the worksheet, or removes it when present
func (h *HTTPHandlerImpl) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	drug, ok := h.drugFromRequest(w, r, "drugID")
	if !ok {
		return
	}

	selected := s.Toggle(drug)
	h.RespondWithJSON(w, http.StatusOK, SelectionResponse{Selected: selected, Items: s.Selected()})
}

// UpdateNotes replaces the notes of a selected drug
func (h *HTTPHandlerImpl) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req NotesRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if !s.SetNotes(chi.URLParam(r, "drugID"), req.Notes) {
		h.RespondWithError(w, http.StatusNotFound, "Drug is not selected")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, SelectionResponse{Selected: true, Items: s.Selected()})
}

// ClearSelection empties the worksheet
func (h *HTTPHandlerImpl) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	s.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession restores the default patient and drops every row edit and
// worksheet entry, keeping the session id
func (h *HTTPHandlerImpl) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	s.Reset()
	h.RespondWithJSON(w, http.StatusOK, sessionResponse(s))
}

// ServeSheet renders the worksheet as a printable HTML page
func (h *HTTPHandlerImpl) ServeSheet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	patient := s.Patient()
	var buf bytes.Buffer
	if err := printsheet.Render(&buf, printsheet.Summary{Species: patient.Species, WeightKg: patient.WeightKg}, s.Selected()); err != nil {
		logging.Error("Failed to render print sheet", "session", s.ID, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to render print sheet")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Debug("Failed to write print sheet", "error", err)
	}
}
