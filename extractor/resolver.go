package extractor

import (
	"context"

	"github.com/Andeeli/MedicalCodeRetrieval/logging"
)

// resolveIngredient maps an ingredient name to its initial concept
// identifiers. Unreachable service, malformed response and zero
// results all collapse to an empty list; the caller skips the
// ingredient in every case.
func (e *Extractor) resolveIngredient(ctx context.Context, ingredient string) []string {
	rxcuis, outcome := e.client.FindRxCUIsByName(ctx, ingredient)
	if len(rxcuis) == 0 {
		logging.Debug("Ingredient resolution yielded no identifiers",
			"ingredient", ingredient,
			"outcome", outcome.String())
		return nil
	}

	logging.Debug("Resolved ingredient",
		"ingredient", ingredient,
		"initial_rxcuis", len(rxcuis))

	return rxcuis
}
