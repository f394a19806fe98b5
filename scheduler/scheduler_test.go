package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/Andeeli/MedicalCodeRetrieval/data"
	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
)

func strPtr(s string) *string { return &s }

// fakeExtractor returns a fixed dataset without touching the network
type fakeExtractor struct {
	dataset *entities.Dataset
	err     error
	calls   int
}

func (f *fakeExtractor) BuildDataset(ctx context.Context) (*entities.Dataset, error) {
	f.calls++
	return f.dataset, f.err
}

func fixtureDataset() *entities.Dataset {
	d := entities.NewDataset()
	d.Append(entities.Record{
		Ingredient:       "Exenatide",
		RxCUI:            "311036",
		NDC:              strPtr("00002-1433-01"),
		RxCUIDescription: "exenatide 250 MCG/ML Injectable Solution",
		NDCDescription:   strPtr("exenatide 250 MCG/ML Injectable Solution [Byetta]"),
	})
	d.Append(entities.Record{
		Ingredient:       "Exenatide",
		RxCUI:            "744863",
		RxCUIDescription: "concept without codes",
	})
	return d
}

func TestStartPerformsInitialExtraction(t *testing.T) {
	dc := data.NewDataContainer()
	ext := &fakeExtractor{dataset: fixtureDataset()}

	s := NewScheduler(dc, ext, []string{"Exenatide", "Albiglutide"})
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if ext.calls != 1 {
		t.Errorf("expected 1 extraction call, got %d", ext.calls)
	}
	if dc.GetDataset().Len() != 2 {
		t.Errorf("expected 2 records in container, got %d", dc.GetDataset().Len())
	}
	if len(dc.GetTable()) != 1 {
		t.Errorf("expected 1 table row, got %d", len(dc.GetTable()))
	}

	report := dc.GetQualityReport()
	if report.RecordsWithoutNDC != 1 {
		t.Errorf("expected 1 record without ndc in report, got %d", report.RecordsWithoutNDC)
	}
	if len(report.IngredientsWithoutRows) != 1 || report.IngredientsWithoutRows[0] != "Albiglutide" {
		t.Errorf("expected Albiglutide reported missing, got %v", report.IngredientsWithoutRows)
	}
}

func TestStartFailsWhenExtractionFails(t *testing.T) {
	dc := data.NewDataContainer()
	ext := &fakeExtractor{err: errors.New("cancelled")}

	s := NewScheduler(dc, ext, nil)
	if err := s.Start(); err == nil {
		t.Error("expected Start to fail when initial extraction fails")
	}
	s.Stop()

	if dc.IsUpdating() {
		t.Error("updating flag must be cleared after a failed refresh")
	}
}

func TestRefreshSkippedWhileUpdating(t *testing.T) {
	dc := data.NewDataContainer()
	ext := &fakeExtractor{dataset: fixtureDataset()}

	s := NewScheduler(dc, ext, nil)

	if !dc.BeginUpdate() {
		t.Fatal("could not acquire update flag")
	}
	defer dc.EndUpdate()

	// A refresh during an in-flight update is a silent no-op
	if err := s.refreshDataset(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if ext.calls != 0 {
		t.Errorf("expected no extraction call, got %d", ext.calls)
	}
}

func TestCheckpointPublishesPartialDataset(t *testing.T) {
	dc := data.NewDataContainer()
	s := NewScheduler(dc, &fakeExtractor{}, nil)

	partial := fixtureDataset()
	s.Checkpoint(partial)

	if dc.GetDataset().Len() != 2 {
		t.Errorf("expected checkpoint records visible, got %d", dc.GetDataset().Len())
	}
	if dc.GetLastUpdated().IsZero() {
		t.Error("expected last updated set by checkpoint")
	}
}
