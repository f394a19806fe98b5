// Package scheduler provides automated dataset refresh scheduling and
// staleness monitoring for the NDC retrieval service. It runs the
// extraction pipeline on a daily cron and coordinates refreshes with
// the data container using dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
	"github.com/Andeeli/MedicalCodeRetrieval/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles dataset refreshes and staleness monitoring using
// dependency injection
type Scheduler struct {
	dataStore   interfaces.DataStore
	extractor   interfaces.Extractor
	ingredients []string
	scheduler   *gocron.Scheduler
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, extractor interfaces.Extractor, ingredients []string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dataStore:   dataStore,
		extractor:   extractor,
		ingredients: ingredients,
		scheduler:   gocron.NewScheduler(time.Local),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start performs the initial extraction and schedules daily refreshes
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.refreshDataset(); err != nil {
		logging.Error("Failed to perform initial extraction", "error", err)
		return fmt.Errorf("initial extraction failed: %w", err)
	}

	// Schedule refreshes at 06:00 daily; RxNav data changes on a
	// monthly release cycle, daily is already conservative
	_, err := s.scheduler.Every(1).Days().At("06:00").Do(func() {
		if err := s.refreshDataset(); err != nil {
			logging.Error("Failed to refresh dataset", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule refreshes", "error", err)
		return fmt.Errorf("failed to schedule refreshes: %w", err)
	}

	s.scheduler.StartAsync()

	// Start staleness monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and cancels any running extraction
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

// refreshDataset runs the full extraction and swaps the result into
// the data container
func (s *Scheduler) refreshDataset() error {
	// Prevent concurrent refreshes
	if !s.dataStore.BeginUpdate() {
		logging.Info("Refresh already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting dataset refresh at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	newDataset, err := s.extractor.BuildDataset(s.ctx)
	if err != nil {
		logging.Error("Extraction did not complete", "error", err)
		return fmt.Errorf("extraction did not complete: %w", err)
	}

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(newDataset, s.ingredients)

	if len(report.IngredientsWithoutRows) > 0 {
		logging.Warn("Ingredients produced no rows",
			"count", len(report.IngredientsWithoutRows),
			"ingredients", report.IngredientsWithoutRows,
		)
	}

	if report.RecordsWithoutNDC > 0 {
		logging.Warn("Concepts without registered product codes",
			"count", report.RecordsWithoutNDC,
			"rxcui_list", report.RecordsWithoutNDCRxCUIs,
		)
	}

	if report.DuplicateTriples > 0 {
		logging.Warn("Duplicate output triples detected",
			"count", report.DuplicateTriples,
		)
	}

	if report.InvalidRecords > 0 {
		logging.Warn("Records failed shape validation",
			"count", report.InvalidRecords,
		)
	}

	// Atomic update using injected data store (including report)
	s.dataStore.UpdateData(newDataset, report)

	elapsed := time.Since(start)
	logging.Info("Dataset refresh completed",
		"duration", elapsed.String(),
		"records", newDataset.Len(),
		"table_rows", len(newDataset.WithNDC()))

	return nil
}

// Checkpoint publishes a partial dataset during a long extraction so
// readers can see rows before the run finishes. Wired into the
// extractor's per-ingredient callback.
func (s *Scheduler) Checkpoint(partial *entities.Dataset) {
	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(partial, nil)
	s.dataStore.UpdateData(partial, report)
	logging.Debug("Published extraction checkpoint", "records", partial.Len())
}

// startHealthMonitoring monitors the freshness of the dataset
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > 25*time.Hour {
					logging.Warn("Dataset hasn't been refreshed in over 25 hours")
				}
			}
		}
	}()
}
