// Package interfaces defines core abstractions for the NDC retrieval
// service to improve testability, maintainability, and separation of
// concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
)

// DataQualityReport provides a summary of data quality issues found in
// an extracted dataset.
type DataQualityReport struct {
	TotalRecords            int
	RecordsWithoutNDC       int
	RecordsWithoutNDCRxCUIs []string // RxCUIs whose concepts had no registered product code
	DuplicateTriples        int      // (ingredient, rxcui, ndc) triples seen more than once
	IngredientsWithoutRows  []string // Ingredients that resolved to nothing
	InvalidRecords          int      // Records failing shape validation
}

// DataStore defines the contract for dataset storage operations.
// It provides thread-safe access to the extracted dataset with atomic
// operations for zero-downtime refreshes.
type DataStore interface {
	// Data retrieval methods
	GetDataset() *entities.Dataset
	GetTable() []entities.Record
	GetRecordsByIngredient() map[string][]entities.Record
	GetRecordsByRxCUI() map[string][]entities.Record
	GetRecordsByNDC() map[string][]entities.Record
	GetQualityReport() *DataQualityReport
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(dataset *entities.Dataset, report *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// Extractor defines the contract for building the ingredient → RxCUI →
// NDC dataset from the remote terminology service.
type Extractor interface {
	// BuildDataset runs the full extraction for every configured
	// ingredient. The returned error is non-nil only when the context
	// is cancelled; remote failures degrade to missing rows.
	BuildDataset(ctx context.Context) (*entities.Dataset, error)
}

// Scheduler defines the contract for job scheduling and health
// monitoring. It manages automated dataset refreshes.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled refresh time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateRecord checks if an output record is well formed
	ValidateRecord(r *entities.Record) error

	// ReportDataQuality generates a data quality report for a dataset
	ReportDataQuality(dataset *entities.Dataset, ingredients []string) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateRxCUI validates concept identifier path parameters
	ValidateRxCUI(input string) (string, error)

	// ValidateNDC validates product code path parameters
	ValidateNDC(input string) (string, error)
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	ServeTable(w http.ResponseWriter, r *http.Request)
	ServePagedTable(w http.ResponseWriter, r *http.Request)
	ExportTable(w http.ResponseWriter, r *http.Request)
	FindByIngredient(w http.ResponseWriter, r *http.Request)
	FindByRxCUI(w http.ResponseWriter, r *http.Request)
	FindByNDC(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
