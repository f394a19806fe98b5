// Package handlers provides HTTP request handlers for the NDC
// retrieval service endpoints: the extracted table, paged access, CSV
// export, per-ingredient/rxcui/ndc lookups and health checks. It
// implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
)

// Page size for paged table access
const pageSize = 100

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
	folder        cases.Caser
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, healthChecker interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
		folder:        cases.Fold(),
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// tableResponse wraps table rows with dataset bookkeeping fields
type tableResponse struct {
	Rows        []entities.Record `json:"rows"`
	TotalRows   int               `json:"totalRows"`
	LastUpdated string            `json:"lastUpdated"`
}

// ServeTable returns the full extracted table. Rows without a product
// code are filtered out of the served table.
func (h *HTTPHandlerImpl) ServeTable(w http.ResponseWriter, r *http.Request) {
	table := h.dataStore.GetTable()

	h.RespondWithJSON(w, http.StatusOK, tableResponse{
		Rows:        table,
		TotalRows:   len(table),
		LastUpdated: h.dataStore.GetLastUpdated().Format(time.RFC3339),
	})
}

// pagedResponse is the paged variant of tableResponse
type pagedResponse struct {
	Rows       []entities.Record `json:"rows"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalRows  int               `json:"totalRows"`
	TotalPages int               `json:"totalPages"`
}

// ServePagedTable returns one page of the extracted table
func (h *HTTPHandlerImpl) ServePagedTable(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "pageNumber")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "pageNumber", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	table := h.dataStore.GetTable()
	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(table) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	if end > len(table) {
		end = len(table)
	}

	totalPages := (len(table) + pageSize - 1) / pageSize

	h.RespondWithJSON(w, http.StatusOK, pagedResponse{
		Rows:       table[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  len(table),
		TotalPages: totalPages,
	})
}

// ExportTable serves the extracted table as a CSV download
func (h *HTTPHandlerImpl) ExportTable(w http.ResponseWriter, r *http.Request) {
	dataset := h.dataStore.GetDataset()

	csvData, err := dataset.CSV()
	if err != nil {
		logging.Error("Failed to render CSV export", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to render CSV export")
		return
	}

	fileName := fmt.Sprintf("ndc-dataset-%s.csv", time.Now().UTC().Format("2006-01-02"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Last-Modified", h.dataStore.GetLastUpdated().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(csvData)
}

// FindByIngredient returns the records of one ingredient, matched
// case-insensitively via Unicode case folding
func (h *HTTPHandlerImpl) FindByIngredient(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.validator.ValidateInput(name); err != nil {
		logging.Warn("Unusual user input", "ingredient", name)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid ingredient name")
		return
	}

	folded := h.folder.String(name)
	for ingredient, records := range h.dataStore.GetRecordsByIngredient() {
		if h.folder.String(ingredient) == folded {
			h.RespondWithJSON(w, http.StatusOK, records)
			return
		}
	}

	h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No records for ingredient %q", name))
}

// FindByRxCUI returns the records of one concept identifier
func (h *HTTPHandlerImpl) FindByRxCUI(w http.ResponseWriter, r *http.Request) {
	rxcui, err := h.validator.ValidateRxCUI(chi.URLParam(r, "rxcui"))
	if err != nil {
		logging.Warn("Unusual user input", "rxcui", chi.URLParam(r, "rxcui"))
		h.RespondWithError(w, http.StatusBadRequest, "Invalid rxcui")
		return
	}

	records, exists := h.dataStore.GetRecordsByRxCUI()[rxcui]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No records for rxcui %s", rxcui))
		return
	}

	h.RespondWithJSON(w, http.StatusOK, records)
}

// FindByNDC returns the records of one product code
func (h *HTTPHandlerImpl) FindByNDC(w http.ResponseWriter, r *http.Request) {
	ndc, err := h.validator.ValidateNDC(chi.URLParam(r, "ndc"))
	if err != nil {
		logging.Warn("Unusual user input", "ndc", chi.URLParam(r, "ndc"))
		h.RespondWithError(w, http.StatusBadRequest, "Invalid ndc")
		return
	}

	records, exists := h.dataStore.GetRecordsByNDC()[ndc]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("No records for ndc %s", ndc))
		return
	}

	h.RespondWithJSON(w, http.StatusOK, records)
}

// HealthCheck returns current system health status
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	response := map[string]any{
		"status":      status,
		"next_update": h.healthChecker.CalculateNextUpdate().Format(time.RFC3339),
	}
	for k, v := range data {
		response[k] = v
	}

	h.RespondWithJSON(w, httpStatus, response)
}
