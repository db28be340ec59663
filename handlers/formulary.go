package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/logging"
)

// SpeciesResponse is one supported species
type SpeciesResponse struct {
	ID   entities.Species `json:"id"`
	Name string           `json:"name"`
}

// ServeSpecies lists the supported species in display order
func (h *HTTPHandlerImpl) ServeSpecies(w http.ResponseWriter, r *http.Request) {
	species := make([]SpeciesResponse, len(entities.AllSpecies))
	for i, s := range entities.AllSpecies {
		species[i] = SpeciesResponse{ID: s, Name: s.DisplayName()}
	}
	h.RespondWithJSON(w, http.StatusOK, species)
}

// ServeTabs lists the catalog tabs
func (h *HTTPHandlerImpl) ServeTabs(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.catalogStore.GetTabs())
}

// ServeDrugs filters the formulary: ?tab= scopes to one tab, ?q= searches
// the whole catalog, ?species= with ?only_species= hides drugs not listing it.
func (h *HTTPHandlerImpl) ServeDrugs(w http.ResponseWriter, r *http.Request) {
	catalog := h.catalogStore.GetCatalog()
	if catalog == nil {
		h.RespondWithError(w, http.StatusServiceUnavailable, "Catalog not loaded")
		return
	}

	q, ok := h.searchParams(w, r)
	if !ok {
		return
	}

	drugs, err := catalog.Search(q.tab, q.query, q.onlySpecies, q.species)
	if err != nil {
		if errors.Is(err, formulary.ErrUnknownTab) {
			h.RespondWithError(w, http.StatusNotFound, "Tab not found")
			return
		}
		logging.Error("Failed to search catalog", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to search catalog")
		return
	}

	// Always return 200 with results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, drugs)
}

// ServeDrug returns one drug by id
func (h *HTTPHandlerImpl) ServeDrug(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.drugFromRequest(w, r, "id")
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, drug)
}

type searchParams struct {
	tab         string
	query       string
	species     entities.Species
	onlySpecies bool
}

// searchParams reads and validates the formulary filter parameters. A session
// supplies its own species, so species is only read when present.
func (h *HTTPHandlerImpl) searchParams(w http.ResponseWriter, r *http.Request) (searchParams, bool) {
	values := r.URL.Query()
	p := searchParams{tab: values.Get("tab"), query: values.Get("q")}

	if strings.TrimSpace(p.query) != "" {
		if err := h.validator.ValidateInput(p.query); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return p, false
		}
	}

	species, err := h.speciesParam(values.Get("species"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	p.species = species

	only, err := boolParam(r, "only_species", true)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "only_species must be a boolean")
		return p, false
	}
	p.onlySpecies = only

	return p, true
}
