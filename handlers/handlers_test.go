package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Andeeli/MedicalCodeRetrieval/data"
	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/health"
	"github.com/Andeeli/MedicalCodeRetrieval/validation"
	"github.com/go-chi/chi/v5"
)

func strPtr(s string) *string { return &s }

func populatedStore() *data.DataContainer {
	dc := data.NewDataContainer()

	dataset := entities.NewDataset()
	dataset.Append(entities.Record{
		Ingredient:       "Exenatide",
		RxCUI:            "311036",
		NDC:              strPtr("00002-1433-01"),
		RxCUIDescription: "exenatide 250 MCG/ML Injectable Solution",
		NDCDescription:   strPtr("exenatide 250 MCG/ML Injectable Solution [Byetta]"),
	})
	dataset.Append(entities.Record{
		Ingredient:       "Semaglutide",
		RxCUI:            "1991302",
		NDC:              strPtr("00169-4132-12"),
		RxCUIDescription: "semaglutide 1.34 MG/ML Injection",
		NDCDescription:   strPtr("semaglutide 1.34 MG/ML Injection [Ozempic]"),
	})
	dataset.Append(entities.Record{
		Ingredient:       "Semaglutide",
		RxCUI:            "2200644",
		RxCUIDescription: "concept without registered codes",
	})

	validator := validation.NewDataValidator()
	dc.UpdateData(dataset, validator.ReportDataQuality(dataset, nil))
	return dc
}

func testRouter(dc *data.DataContainer) *chi.Mux {
	validator := validation.NewDataValidator()
	h := NewHTTPHandler(dc, validator, health.NewHealthChecker(dc))

	r := chi.NewRouter()
	r.Get("/dataset", h.ServeTable)
	r.Get("/dataset/export", h.ExportTable)
	r.Get("/dataset/{pageNumber}", h.ServePagedTable)
	r.Get("/ingredient/{name}", h.FindByIngredient)
	r.Get("/rxcui/{rxcui}", h.FindByRxCUI)
	r.Get("/ndc/{ndc}", h.FindByNDC)
	r.Get("/health", h.HealthCheck)
	return r
}

func doRequest(t *testing.T, router *chi.Mux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServeTable(t *testing.T) {
	router := testRouter(populatedStore())
	rec := doRequest(t, router, "/dataset")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}

	var response tableResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// The record without codes is filtered from the served table
	if response.TotalRows != 2 || len(response.Rows) != 2 {
		t.Errorf("expected 2 table rows, got totalRows=%d rows=%d", response.TotalRows, len(response.Rows))
	}
	if response.Rows[0].RxCUI != "311036" {
		t.Errorf("expected insertion order preserved, got first rxcui %s", response.Rows[0].RxCUI)
	}
}

func TestServePagedTable(t *testing.T) {
	router := testRouter(populatedStore())

	rec := doRequest(t, router, "/dataset/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response pagedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Page != 1 || response.TotalPages != 1 || len(response.Rows) != 2 {
		t.Errorf("unexpected page shape: %+v", response)
	}
}

func TestServePagedTableBadInput(t *testing.T) {
	router := testRouter(populatedStore())

	cases := []struct {
		path     string
		expected int
	}{
		{"/dataset/abc", http.StatusBadRequest},
		{"/dataset/0", http.StatusBadRequest},
		{"/dataset/99", http.StatusNotFound},
	}

	for _, c := range cases {
		rec := doRequest(t, router, c.path)
		if rec.Code != c.expected {
			t.Errorf("%s: expected %d, got %d", c.path, c.expected, rec.Code)
		}
	}
}

func TestExportTable(t *testing.T) {
	router := testRouter(populatedStore())
	rec := doRequest(t, router, "/dataset/export")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "ndc-dataset-") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	// Header plus the two rows with codes
	if len(lines) != 3 {
		t.Fatalf("expected 3 csv lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ingredient,rxcui,ndc") {
		t.Errorf("unexpected csv header %q", lines[0])
	}
}

func TestFindByIngredientCaseInsensitive(t *testing.T) {
	router := testRouter(populatedStore())

	for _, path := range []string{"/ingredient/Semaglutide", "/ingredient/semaglutide", "/ingredient/SEMAGLUTIDE"} {
		rec := doRequest(t, router, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}

		var records []entities.Record
		if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
			t.Fatalf("%s: failed to decode response: %v", path, err)
		}
		if len(records) != 2 {
			t.Errorf("%s: expected 2 records, got %d", path, len(records))
		}
	}
}

func TestFindByIngredientRejectsBadInput(t *testing.T) {
	router := testRouter(populatedStore())

	rec := doRequest(t, router, "/ingredient/%3Cscript%3E")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for dangerous input, got %d", rec.Code)
	}

	rec = doRequest(t, router, "/ingredient/Tirzepatide")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown ingredient, got %d", rec.Code)
	}
}

func TestFindByRxCUI(t *testing.T) {
	router := testRouter(populatedStore())

	rec := doRequest(t, router, "/rxcui/311036")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []entities.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 || records[0].Ingredient != "Exenatide" {
		t.Errorf("unexpected records %+v", records)
	}

	if rec := doRequest(t, router, "/rxcui/notanumber"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed rxcui, got %d", rec.Code)
	}
	if rec := doRequest(t, router, "/rxcui/999999"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown rxcui, got %d", rec.Code)
	}
}

func TestFindByNDC(t *testing.T) {
	router := testRouter(populatedStore())

	rec := doRequest(t, router, "/ndc/00002-1433-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []entities.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 || records[0].RxCUI != "311036" {
		t.Errorf("unexpected records %+v", records)
	}

	if rec := doRequest(t, router, "/ndc/garbage"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed ndc, got %d", rec.Code)
	}
	if rec := doRequest(t, router, "/ndc/99999-9999-99"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown ndc, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(populatedStore())
	rec := doRequest(t, router, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for fresh data, got %d", rec.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", response["status"])
	}
	if _, ok := response["next_update"]; !ok {
		t.Error("expected next_update in health payload")
	}

	rec = doRequest(t, testRouter(data.NewDataContainer()), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for empty dataset, got %d", rec.Code)
	}
}
