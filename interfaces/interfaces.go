// Package interfaces defines core abstractions for the dosing service
// to improve testability and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/session"
)

// CatalogQualityReport summarizes catalog entries that load but cannot be fully dosed.
type CatalogQualityReport struct {
	DrugsWithoutPresentations []string
	DrugsWithoutRange         []string // no generic range and no override for a listed species
	UnsetConcentrations       []string // "drugID/label" of presentations with value <= 0
	OverridesForUnlisted      []string // "drugID/species" overrides for species the drug does not list
}

// CatalogStore defines the contract for catalog storage.
// Readers always see one complete catalog; a reload swaps it atomically.
type CatalogStore interface {
	GetCatalog() *formulary.Catalog
	GetDrugs() []entities.Drug
	GetDrug(id string) (entities.Drug, error)
	GetTabs() []entities.Tab
	GetQualityReport() *CatalogQualityReport
	GetLastLoaded() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateCatalog(catalog *formulary.Catalog, report *CatalogQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// CatalogSource loads a catalog from its configured origin.
type CatalogSource interface {
	LoadCatalog() (*formulary.Catalog, error)
}

// SessionStore defines the contract for calculator session storage.
type SessionStore interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string) error
	Len() int
	Sweep(maxIdle time.Duration) int
}

// Scheduler defines the contract for background jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status, details and the HTTP status code to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// CatalogValidator defines the contract for catalog and input validation.
type CatalogValidator interface {
	// ValidateDrug checks that a drug can be served at all
	ValidateDrug(d *entities.Drug) error

	// ValidateCatalog validates every drug of a catalog
	ValidateCatalog(c *formulary.Catalog) error

	// ReportCatalogQuality lists entries that will produce sentinel results
	ReportCatalogQuality(c *formulary.Catalog) *CatalogQualityReport

	// ValidateInput validates free-text search input
	ValidateInput(input string) error

	// ValidateSpecies parses a species tag
	ValidateSpecies(input string) (entities.Species, error)

	// ValidateUnit parses a weight unit
	ValidateUnit(input string) (entities.WeightUnit, error)
}

// HTTPHandler defines the contract for the HTTP endpoints
type HTTPHandler interface {
	RespondWithJSON(w http.ResponseWriter, code int, payload any)
	RespondWithError(w http.ResponseWriter, code int, message string)

	// Formulary
	ServeSpecies(w http.ResponseWriter, r *http.Request)
	ServeTabs(w http.ResponseWriter, r *http.Request)
	ServeDrugs(w http.ResponseWriter, r *http.Request)
	ServeDrug(w http.ResponseWriter, r *http.Request)

	// Stateless engine
	ComputeDose(w http.ResponseWriter, r *http.Request)
	Normalize(w http.ResponseWriter, r *http.Request)

	// Sessions
	CreateSession(w http.ResponseWriter, r *http.Request)
	ServeSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	UpdatePatient(w http.ResponseWriter, r *http.Request)
	UpdateRow(w http.ResponseWriter, r *http.Request)
	ServeRows(w http.ResponseWriter, r *http.Request)
	ToggleSelection(w http.ResponseWriter, r *http.Request)
	UpdateNotes(w http.ResponseWriter, r *http.Request)
	ClearSelection(w http.ResponseWriter, r *http.Request)
	ResetSession(w http.ResponseWriter, r *http.Request)
	ServeSheet(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
}
