// Package scheduler loads the catalog at start-up and runs the periodic
// housekeeping jobs of the dosing service.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/vetdose/interfaces"
	"github.com/giygas/vetdose/logging"
	"github.com/giygas/vetdose/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Options controls the session sweep
type Options struct {
	SessionIdle   time.Duration
	SweepInterval int // minutes
}

// Scheduler loads catalogs and sweeps idle sessions using injected dependencies
type Scheduler struct {
	catalogStore interfaces.CatalogStore
	source       interfaces.CatalogSource
	sessions     interfaces.SessionStore
	validator    interfaces.CatalogValidator
	opts         Options
	scheduler    *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(
	catalogStore interfaces.CatalogStore,
	source interfaces.CatalogSource,
	sessions interfaces.SessionStore,
	validator interfaces.CatalogValidator,
	opts Options,
) *Scheduler {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 10
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = 2 * time.Hour
	}

	return &Scheduler{
		catalogStore: catalogStore,
		source:       source,
		sessions:     sessions,
		validator:    validator,
		opts:         opts,
		scheduler:    gocron.NewScheduler(time.Local),
	}
}

// Start loads the catalog and schedules the session sweep. A failed initial
// load is fatal: there is nothing to serve.
func (s *Scheduler) Start() error {
	if err := s.ReloadCatalog(); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	_, err := s.scheduler.Every(s.opts.SweepInterval).Minutes().Do(s.sweepSessions)
	if err != nil {
		logging.Error("Failed to schedule session sweep", "error", err)
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	_, err = s.scheduler.Every(1).Hour().Do(s.monitorCatalog)
	if err != nil {
		logging.Error("Failed to schedule catalog monitor", "error", err)
		return fmt.Errorf("failed to schedule catalog monitor: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// ReloadCatalog loads, validates and atomically publishes a catalog. An
// invalid catalog leaves the current one in place.
func (s *Scheduler) ReloadCatalog() error {
	if !s.catalogStore.BeginUpdate() {
		logging.Info("Catalog load already in progress, skipping...")
		return nil
	}
	defer s.catalogStore.EndUpdate()

	start := time.Now()

	catalog, err := s.source.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if err := s.validator.ValidateCatalog(catalog); err != nil {
		return fmt.Errorf("catalog rejected: %w", err)
	}

	report := s.validator.ReportCatalogQuality(catalog)
	if len(report.OverridesForUnlisted) > 0 {
		logging.Warn("Dose range overrides for species the drug does not list",
			"count", len(report.OverridesForUnlisted),
			"overrides", report.OverridesForUnlisted,
		)
	}

	s.catalogStore.UpdateCatalog(catalog, report)
	metrics.CatalogDrugs.Set(float64(len(catalog.Drugs())))

	logging.Info("Catalog loaded",
		"duration", time.Since(start).String(),
		"drug_count", len(catalog.Drugs()),
		"tab_count", len(catalog.Tabs()),
	)
	return nil
}

// monitorCatalog warns while catalog entries cannot produce a quantity
func (s *Scheduler) monitorCatalog() {
	if s.catalogStore.GetCatalog() == nil {
		logging.Warn("No catalog is loaded")
		return
	}

	report := s.catalogStore.GetQualityReport()
	if len(report.UnsetConcentrations) > 0 || len(report.DrugsWithoutPresentations) > 0 {
		logging.Warn("Catalog entries need configuration",
			"unset_concentrations", report.UnsetConcentrations,
			"without_presentations", report.DrugsWithoutPresentations,
			"loaded_at", s.catalogStore.GetLastLoaded().Format(time.RFC3339),
		)
	}
}

// sweepSessions drops sessions idle for longer than SessionIdle
func (s *Scheduler) sweepSessions() {
	removed := s.sessions.Sweep(s.opts.SessionIdle)
	active := s.sessions.Len()
	metrics.SessionsActive.Set(float64(active))

	if removed > 0 {
		logging.Info("Expired idle sessions", "removed", removed, "active", active)
	}
}
