// Package extractor builds the ingredient → RxCUI → NDC dataset by
// walking the RxNav terminology service: resolve each ingredient name
// to its concept identifiers, expand those to related drug product
// concepts, then collect the product codes and descriptions for every
// retained concept.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
	"github.com/Andeeli/MedicalCodeRetrieval/metrics"
	"github.com/Andeeli/MedicalCodeRetrieval/rxnorm"
)

// Compile-time check to ensure Extractor implements the Extractor interface
var _ interfaces.Extractor = (*Extractor)(nil)

// DefaultIngredients is the built-in ingredient list: the GLP-1
// receptor agonists the dataset tracks.
var DefaultIngredients = []string{
	"Exenatide",
	"Liraglutide",
	"Semaglutide",
	"Dulaglutide",
	"Lixisenatide",
	"Albiglutide",
	"Tirzepatide",
}

// acceptedTermTypes are the term types of drug products expected to
// have NDC codes: single/branded clinical drugs and packs.
var acceptedTermTypes = map[string]bool{
	"SCD":  true,
	"SBD":  true,
	"GPCK": true,
	"BPCK": true,
}

// Default courtesy pauses between RxNav calls.
const (
	DefaultRelatedPause = 100 * time.Millisecond
	DefaultNDCPause     = 200 * time.Millisecond
)

// Client is the subset of the RxNav client the extraction uses.
type Client interface {
	FindRxCUIsByName(ctx context.Context, name string) ([]string, rxnorm.Outcome)
	AllRelated(ctx context.Context, rxcui string) ([]entities.Concept, rxnorm.Outcome)
	NDCs(ctx context.Context, rxcui string) ([]string, rxnorm.Outcome)
	NDCDescription(ctx context.Context, ndc string) (*string, rxnorm.Outcome)
}

// Options configures an Extractor. The zero value uses the built-in
// ingredient list, no checkpoint callback and no courtesy pauses.
type Options struct {
	Ingredients  []string
	RelatedPause time.Duration
	NDCPause     time.Duration

	// Checkpoint, when set, receives a snapshot of the accumulated
	// dataset after each completed ingredient.
	Checkpoint func(*entities.Dataset)
}

// Extractor runs the extraction pipeline sequentially, one ingredient
// at a time. Remote failures never abort the run; they surface as
// missing rows.
type Extractor struct {
	client       Client
	ingredients  []string
	relatedPause time.Duration
	ndcPause     time.Duration
	checkpoint   func(*entities.Dataset)
}

// New creates an Extractor over the given client.
func New(client Client, opts Options) *Extractor {
	ingredients := opts.Ingredients
	if len(ingredients) == 0 {
		ingredients = DefaultIngredients
	}

	return &Extractor{
		client:       client,
		ingredients:  ingredients,
		relatedPause: opts.RelatedPause,
		ndcPause:     opts.NDCPause,
		checkpoint:   opts.Checkpoint,
	}
}

// Ingredients returns the configured ingredient list.
func (e *Extractor) Ingredients() []string {
	return e.ingredients
}

// BuildDataset runs the full pipeline for every configured ingredient
// and returns the accumulated dataset. The error is non-nil only when
// the context is cancelled mid-run; the partial dataset is still
// returned in that case.
func (e *Extractor) BuildDataset(ctx context.Context) (*entities.Dataset, error) {
	dataset := entities.NewDataset()
	start := time.Now()
	totalConcepts := 0

	for i, ingredient := range e.ingredients {
		if err := ctx.Err(); err != nil {
			return dataset, fmt.Errorf("extraction cancelled: %w", err)
		}

		logging.Info("Processing ingredient",
			"ingredient", ingredient,
			"position", i+1,
			"total", len(e.ingredients))

		rxcuis := e.resolveIngredient(ctx, ingredient)
		if len(rxcuis) == 0 {
			logging.Info("No RxCUI found for ingredient", "ingredient", ingredient)
			continue
		}

		concepts := e.expandRelated(ctx, ingredient, rxcuis)
		totalConcepts += len(concepts)

		e.fetchCodes(ctx, ingredient, concepts, dataset)

		logging.Info("Completed ingredient",
			"ingredient", ingredient,
			"concepts", len(concepts),
			"records_so_far", dataset.Len())

		if e.checkpoint != nil {
			e.checkpoint(dataset.Snapshot())
		}
	}

	elapsed := time.Since(start)
	metrics.ExtractionRecordsTotal.Set(float64(dataset.Len()))
	metrics.ExtractionConceptsTotal.Set(float64(totalConcepts))
	metrics.ExtractionDuration.Set(elapsed.Seconds())

	logging.Info("Extraction completed",
		"ingredients", len(e.ingredients),
		"concepts", totalConcepts,
		"records", dataset.Len(),
		"duration", elapsed.String())

	return dataset, ctx.Err()
}

// pause sleeps for d unless the context is cancelled first.
func (e *Extractor) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
