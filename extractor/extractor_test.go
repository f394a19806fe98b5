package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/rxnorm"
)

// fakeClient serves canned pipeline data without a network
type fakeClient struct {
	rxcuisByName map[string][]string
	relatedByID  map[string][]entities.Concept
	ndcsByID     map[string][]string
	descByNDC    map[string]string

	// failAll simulates transport failure at every stage
	failAll bool
}

func (f *fakeClient) outcome(found bool) rxnorm.Outcome {
	if f.failAll {
		return rxnorm.OutcomeFailed
	}
	if !found {
		return rxnorm.OutcomeEmpty
	}
	return rxnorm.OutcomeOK
}

func (f *fakeClient) FindRxCUIsByName(ctx context.Context, name string) ([]string, rxnorm.Outcome) {
	if f.failAll {
		return nil, rxnorm.OutcomeFailed
	}
	ids := f.rxcuisByName[name]
	return ids, f.outcome(len(ids) > 0)
}

func (f *fakeClient) AllRelated(ctx context.Context, rxcui string) ([]entities.Concept, rxnorm.Outcome) {
	if f.failAll {
		return nil, rxnorm.OutcomeFailed
	}
	concepts := f.relatedByID[rxcui]
	return concepts, f.outcome(len(concepts) > 0)
}

func (f *fakeClient) NDCs(ctx context.Context, rxcui string) ([]string, rxnorm.Outcome) {
	if f.failAll {
		return nil, rxnorm.OutcomeFailed
	}
	codes := f.ndcsByID[rxcui]
	return codes, f.outcome(len(codes) > 0)
}

func (f *fakeClient) NDCDescription(ctx context.Context, ndc string) (*string, rxnorm.Outcome) {
	if f.failAll {
		return nil, rxnorm.OutcomeFailed
	}
	desc, ok := f.descByNDC[ndc]
	if !ok {
		return nil, rxnorm.OutcomeEmpty
	}
	return &desc, rxnorm.OutcomeOK
}

func TestUnresolvedIngredientProducesNoRows(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{}, // nothing resolves
	}

	ext := New(client, Options{Ingredients: []string{"Unknowntide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if dataset.Len() != 0 {
		t.Errorf("expected empty dataset, got %d records", dataset.Len())
	}
}

func TestTermTypeFiltering(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{"Exenatide": {"84108"}},
		relatedByID: map[string][]entities.Concept{
			"84108": {
				{RxCUI: "1", Name: "a brand name", TTY: "BN"},
				{RxCUI: "2", Name: "an ingredient", TTY: "IN"},
				{RxCUI: "3", Name: "a clinical drug", TTY: "SCD"},
				{RxCUI: "4", Name: "a branded drug", TTY: "SBD"},
				{RxCUI: "5", Name: "a generic pack", TTY: "GPCK"},
				{RxCUI: "6", Name: "a branded pack", TTY: "BPCK"},
				{RxCUI: "7", Name: "a dose form group", TTY: "SCDG"},
			},
		},
	}

	ext := New(client, Options{Ingredients: []string{"Exenatide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	// Only the four product term types survive, none have codes
	if dataset.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", dataset.Len())
	}

	var rxcuis []string
	for _, r := range dataset.Records {
		rxcuis = append(rxcuis, r.RxCUI)
	}
	if !reflect.DeepEqual(rxcuis, []string{"3", "4", "5", "6"}) {
		t.Errorf("unexpected retained rxcuis: %v", rxcuis)
	}
}

func TestDeduplicationFirstSeenNameWins(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{"Exenatide": {"84108", "84109"}},
		relatedByID: map[string][]entities.Concept{
			"84108": {
				{RxCUI: "311036", Name: "first seen name", TTY: "SCD"},
			},
			"84109": {
				{RxCUI: "311036", Name: "a different later name", TTY: "SBD"},
			},
		},
	}

	ext := New(client, Options{Ingredients: []string{"Exenatide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if dataset.Len() != 1 {
		t.Fatalf("expected 1 record after dedup, got %d", dataset.Len())
	}
	if dataset.Records[0].RxCUIDescription != "first seen name" {
		t.Errorf("expected first-seen name to win, got %q", dataset.Records[0].RxCUIDescription)
	}
}

func TestConceptWithoutCodesProducesOneNilRecord(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{"Liraglutide": {"475968"}},
		relatedByID: map[string][]entities.Concept{
			"475968": {{RxCUI: "897122", Name: "liraglutide 6 MG/ML Injectable Solution", TTY: "SCD"}},
		},
	}

	ext := New(client, Options{Ingredients: []string{"Liraglutide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if dataset.Len() != 1 {
		t.Fatalf("expected exactly 1 record, got %d", dataset.Len())
	}

	r := dataset.Records[0]
	if r.NDC != nil || r.NDCDescription != nil {
		t.Errorf("expected nil NDC and description, got %+v", r)
	}
	if r.RxCUI != "897122" || r.RxCUIDescription != "liraglutide 6 MG/ML Injectable Solution" {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestConceptWithNCodesProducesNRecords(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{"Semaglutide": {"1991302"}},
		relatedByID: map[string][]entities.Concept{
			"1991302": {{RxCUI: "1991306", Name: "semaglutide product", TTY: "SCD"}},
		},
		ndcsByID: map[string][]string{
			"1991306": {"0169-4132-12", "0169-4136-12", "0169-4137-12"},
		},
		descByNDC: map[string]string{
			"0169-4132-12": "semaglutide product [Ozempic]",
		},
	}

	ext := New(client, Options{Ingredients: []string{"Semaglutide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if dataset.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", dataset.Len())
	}

	// Code order preserved, description present only where the
	// properties lookup had data
	if *dataset.Records[0].NDC != "0169-4132-12" {
		t.Errorf("unexpected first code: %s", *dataset.Records[0].NDC)
	}
	if dataset.Records[0].NDCDescription == nil {
		t.Error("expected description for first code")
	}
	if dataset.Records[1].NDCDescription != nil {
		t.Error("expected nil description for second code")
	}
}

func TestTransportFailureMatchesEmptyResponse(t *testing.T) {
	ingredients := []string{"Exenatide", "Tirzepatide"}

	failing := &fakeClient{failAll: true}
	empty := &fakeClient{}

	failedDataset, err := New(failing, Options{Ingredients: ingredients}).BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}
	emptyDataset, err := New(empty, Options{Ingredients: ingredients}).BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if !reflect.DeepEqual(failedDataset.Records, emptyDataset.Records) {
		t.Errorf("transport failure should match empty response: %v vs %v",
			failedDataset.Records, emptyDataset.Records)
	}
	if failedDataset.Len() != 0 {
		t.Errorf("expected empty dataset on total failure, got %d records", failedDataset.Len())
	}
}

func TestCheckpointAfterEachIngredient(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{
			"Exenatide":   {"84108"},
			"Liraglutide": {"475968"},
		},
		relatedByID: map[string][]entities.Concept{
			"84108":  {{RxCUI: "1", Name: "exenatide product", TTY: "SCD"}},
			"475968": {{RxCUI: "2", Name: "liraglutide product", TTY: "SCD"}},
		},
	}

	var checkpointSizes []int
	ext := New(client, Options{
		Ingredients: []string{"Exenatide", "Liraglutide"},
		Checkpoint: func(partial *entities.Dataset) {
			checkpointSizes = append(checkpointSizes, partial.Len())
		},
	})

	if _, err := ext.BuildDataset(context.Background()); err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if !reflect.DeepEqual(checkpointSizes, []int{1, 2}) {
		t.Errorf("expected checkpoints [1 2], got %v", checkpointSizes)
	}
}

func TestInsertionOrderAcrossIngredients(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{
			"Exenatide":   {"84108"},
			"Liraglutide": {"475968"},
		},
		relatedByID: map[string][]entities.Concept{
			"84108": {
				{RxCUI: "10", Name: "exenatide a", TTY: "SCD"},
				{RxCUI: "11", Name: "exenatide b", TTY: "SBD"},
			},
			"475968": {{RxCUI: "20", Name: "liraglutide a", TTY: "SCD"}},
		},
		ndcsByID: map[string][]string{
			"10": {"1111-111-11", "2222-222-22"},
		},
	}

	ext := New(client, Options{Ingredients: []string{"Exenatide", "Liraglutide"}})
	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	var order []string
	for _, r := range dataset.Records {
		order = append(order, r.RxCUI)
	}

	// Ingredient list order, then discovery order, then code order
	if !reflect.DeepEqual(order, []string{"10", "10", "11", "20"}) {
		t.Errorf("unexpected record order: %v", order)
	}
}

func TestCancelledContextStopsExtraction(t *testing.T) {
	client := &fakeClient{
		rxcuisByName: map[string][]string{"Exenatide": {"84108"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ext := New(client, Options{Ingredients: []string{"Exenatide"}})
	_, err := ext.BuildDataset(ctx)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestDefaultIngredientsUsedWhenUnset(t *testing.T) {
	ext := New(&fakeClient{}, Options{})
	if len(ext.Ingredients()) != 7 {
		t.Errorf("expected 7 default ingredients, got %d", len(ext.Ingredients()))
	}
	if ext.Ingredients()[0] != "Exenatide" {
		t.Errorf("expected Exenatide first, got %s", ext.Ingredients()[0])
	}
}

// TestEndToEndExenatide walks the full pipeline against a fake RxNav
// server through the real HTTP client.
func TestEndToEndExenatide(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rxcui.json" && r.URL.Query().Get("name") == "Exenatide":
			w.Write([]byte(`{"idGroup":{"name":"Exenatide","rxnormId":["84108"]}}`))
		case r.URL.Path == "/rxcui/84108/allrelated.json":
			w.Write([]byte(`{"allRelatedGroup":{"conceptGroup":[
				{"tty":"SCD","conceptProperties":[{"rxcui":"311036","name":"exenatide 250 MCG/ML Injectable Solution","tty":"SCD"}]},
				{"tty":"IN","conceptProperties":[{"rxcui":"84108","name":"exenatide","tty":"IN"}]}
			]}}`))
		case r.URL.Path == "/rxcui/311036/ndcs.json":
			w.Write([]byte(`{"ndcGroup":{"ndcList":{"ndc":["00002-1433-01"]}}}`))
		case r.URL.Path == "/ndcproperties.json" && r.URL.Query().Get("ndc") == "00002-1433-01":
			w.Write([]byte(`{"ndcPropertyGroup":{"ndcProperty":{"name":"exenatide 250 MCG/ML Injectable Solution [Byetta]"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := rxnorm.NewClient(ts.URL)
	ext := New(client, Options{Ingredients: []string{"Exenatide"}})

	dataset, err := ext.BuildDataset(context.Background())
	if err != nil {
		t.Fatalf("BuildDataset failed: %v", err)
	}

	if dataset.Len() != 1 {
		t.Fatalf("expected exactly 1 record, got %d", dataset.Len())
	}

	r := dataset.Records[0]
	if r.Ingredient != "Exenatide" {
		t.Errorf("expected ingredient Exenatide, got %s", r.Ingredient)
	}
	if r.RxCUI != "311036" {
		t.Errorf("expected rxcui 311036, got %s", r.RxCUI)
	}
	if r.NDC == nil || *r.NDC != "00002-1433-01" {
		t.Errorf("expected ndc 00002-1433-01, got %v", r.NDC)
	}
	if r.RxCUIDescription != "exenatide 250 MCG/ML Injectable Solution" {
		t.Errorf("unexpected rxcui description: %s", r.RxCUIDescription)
	}
	if r.NDCDescription == nil || *r.NDCDescription != "exenatide 250 MCG/ML Injectable Solution [Byetta]" {
		t.Errorf("unexpected ndc description: %v", r.NDCDescription)
	}
}
