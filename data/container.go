// Package data provides thread-safe catalog storage for the dosing service.
// The DataContainer swaps a whole catalog atomically so that concurrent readers
// never observe a half-loaded formulary.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/interfaces"
	"github.com/giygas/vetdose/logging"
)

// Compile-time check to ensure DataContainer implements CatalogStore
var _ interfaces.CatalogStore = (*DataContainer)(nil)

// DataContainer holds the catalog with atomic pointers for zero-downtime reloads
type DataContainer struct {
	catalog         atomic.Pointer[formulary.Catalog]
	report          atomic.Pointer[interfaces.CatalogQualityReport]
	lastLoaded      atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates an empty DataContainer
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.lastLoaded.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetCatalog returns the current catalog, or nil before the first load
func (dc *DataContainer) GetCatalog() *formulary.Catalog {
	return dc.catalog.Load()
}

// GetDrugs returns every drug in cross-tab order
func (dc *DataContainer) GetDrugs() []entities.Drug {
	if c := dc.catalog.Load(); c != nil {
		return c.Drugs()
	}

	logging.Warn("Catalog is not loaded")
	return []entities.Drug{}
}

// GetDrug returns a drug by id
func (dc *DataContainer) GetDrug(id string) (entities.Drug, error) {
	c := dc.catalog.Load()
	if c == nil {
		return entities.Drug{}, formulary.ErrUnknownDrug
	}
	return c.Drug(id)
}

// GetTabs returns the catalog tabs
func (dc *DataContainer) GetTabs() []entities.Tab {
	if c := dc.catalog.Load(); c != nil {
		return c.Tabs()
	}
	return []entities.Tab{}
}

// GetQualityReport returns the report produced with the current catalog
func (dc *DataContainer) GetQualityReport() *interfaces.CatalogQualityReport {
	if r := dc.report.Load(); r != nil {
		return r
	}
	return &interfaces.CatalogQualityReport{}
}

// GetLastLoaded returns when the catalog was last stored
func (dc *DataContainer) GetLastLoaded() time.Time {
	if v, ok := dc.lastLoaded.Load().(time.Time); ok {
		return v
	}

	logging.Warn("Could not get the last loaded value")
	return time.Time{}
}

// IsUpdating returns true while a catalog load is in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v, ok := dc.serverStartTime.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

// UpdateCatalog atomically replaces the catalog and its quality report
func (dc *DataContainer) UpdateCatalog(catalog *formulary.Catalog, report *interfaces.CatalogQualityReport) {
	dc.catalog.Store(catalog)
	dc.report.Store(report)
	dc.lastLoaded.Store(time.Now())
}

// BeginUpdate marks the start of a catalog load.
// Returns false if another load is in progress.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a catalog load
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
