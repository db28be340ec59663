// Package health reports service readiness from the catalog and session stores.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/vetdose/interfaces"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	catalogStore interfaces.CatalogStore
	sessionStore interfaces.SessionStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(catalogStore interfaces.CatalogStore, sessionStore interfaces.SessionStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		catalogStore: catalogStore,
		sessionStore: sessionStore,
	}
}

// HealthCheck is unhealthy without a catalog and degraded when catalog
// entries have unset concentrations. Degraded still answers 200: every
// other drug is dosed normally.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	drugs := h.catalogStore.GetDrugs()
	tabs := h.catalogStore.GetTabs()
	report := h.catalogStore.GetQualityReport()
	lastLoaded := h.catalogStore.GetLastLoaded()
	isUpdating := h.catalogStore.IsUpdating()

	switch {
	case h.catalogStore.GetCatalog() == nil || len(drugs) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case len(report.UnsetConcentrations) > 0:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"drugs":                len(drugs),
		"tabs":                 len(tabs),
		"sessions_active":      h.sessionStore.Len(),
		"is_updating":          isUpdating,
		"drugs_without_range":  len(report.DrugsWithoutRange),
		"unset_concentrations": len(report.UnsetConcentrations),
	}

	if !lastLoaded.IsZero() {
		data["catalog_loaded_at"] = lastLoaded.Format(time.RFC3339)
	}

	if start := h.catalogStore.GetServerStartTime(); !start.IsZero() {
		data["uptime_hours"] = math.Round(time.Since(start).Hours()*10) / 10
	}

	return status, data, httpStatus
}
