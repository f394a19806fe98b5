package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/data"
	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
)

func strPtr(s string) *string { return &s }

func populatedContainer() *data.DataContainer {
	dc := data.NewDataContainer()
	dataset := entities.NewDataset()
	dataset.Append(entities.Record{
		Ingredient:       "Exenatide",
		RxCUI:            "311036",
		NDC:              strPtr("00002-1433-01"),
		RxCUIDescription: "exenatide product",
	})
	dc.UpdateData(dataset, &interfaces.DataQualityReport{TotalRecords: 1})
	return dc
}

func TestHealthCheckEmptyDataset(t *testing.T) {
	checker := NewHealthChecker(data.NewDataContainer())

	status, _, httpStatus := checker.HealthCheck()
	if status != "unhealthy" {
		t.Errorf("expected unhealthy, got %s", status)
	}
	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", httpStatus)
	}
}

func TestHealthCheckFreshData(t *testing.T) {
	checker := NewHealthChecker(populatedContainer())

	status, healthData, httpStatus := checker.HealthCheck()
	if status != "healthy" {
		t.Errorf("expected healthy, got %s", status)
	}
	if httpStatus != http.StatusOK {
		t.Errorf("expected 200, got %d", httpStatus)
	}
	if healthData["records"] != 1 {
		t.Errorf("expected 1 record in health data, got %v", healthData["records"])
	}
	if healthData["table_rows"] != 1 {
		t.Errorf("expected 1 table row in health data, got %v", healthData["table_rows"])
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	checker := NewHealthChecker(data.NewDataContainer())

	next := checker.CalculateNextUpdate()
	if !next.After(time.Now()) {
		t.Error("next update should be in the future")
	}
	if next.Hour() != 6 || next.Minute() != 0 {
		t.Errorf("expected 06:00, got %02d:%02d", next.Hour(), next.Minute())
	}
	if next.Sub(time.Now()) > 24*time.Hour {
		t.Error("next update should be within 24 hours")
	}
}
