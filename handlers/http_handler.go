// Package handlers provides the HTTP endpoints of the dosing service: formulary
// browsing, the stateless dose engine and calculator sessions.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/interfaces"
	"github.com/giygas/vetdose/logging"
	"github.com/giygas/vetdose/metrics"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	catalogStore  interfaces.CatalogStore
	sessionStore  interfaces.SessionStore
	validator     interfaces.CatalogValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	catalogStore interfaces.CatalogStore,
	sessionStore interfaces.SessionStore,
	validator interfaces.CatalogValidator,
	healthChecker interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		catalogStore:  catalogStore,
		sessionStore:  sessionStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// HealthCheck reports catalog and session status
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	response := map[string]any{
		"status": status,
		"data":   data,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// decodeJSON reads a JSON request body into dst. It answers 400 itself on failure.
func (h *HTTPHandlerImpl) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			h.RespondWithError(w, http.StatusBadRequest, "Request body is empty")
		default:
			logging.Warn("Unusual user input", "path", r.URL.Path, "error", err)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		}
		return false
	}

	return true
}

// drugFromRequest resolves the drug named by a URL parameter, answering 503
// before the first catalog load and 404 for unknown ids.
func (h *HTTPHandlerImpl) drugFromRequest(w http.ResponseWriter, r *http.Request, param string) (entities.Drug, bool) {
	if h.catalogStore.GetCatalog() == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog not loaded")
		return entities.Drug{}, false
	}

	id := chi.URLParam(r, param)
	drug, err := h.catalogStore.GetDrug(id)
	if err != nil {
		if errors.Is(err, formulary.ErrUnknownDrug) {
			h.RespondWithError(w, http.StatusNotFound, "Drug not found")
			return entities.Drug{}, false
		}
		logging.Error("Failed to look up drug", "id", id, "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to look up drug")
		return entities.Drug{}, false
	}

	return drug, true
}

// speciesParam parses an optional species, falling back to the default species
func (h *HTTPHandlerImpl) speciesParam(raw string) (entities.Species, error) {
	if raw == "" {
		return entities.DefaultSpecies, nil
	}
	return h.validator.ValidateSpecies(raw)
}

// boolParam parses an optional boolean query parameter, defaulting to def
func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

// recordRow feeds one evaluated row into the dose metrics
func recordRow(res dosing.RowResult) {
	metrics.RecordDoseEvaluation(string(res.Result.Sentinel), res.OutOfRange)
}
