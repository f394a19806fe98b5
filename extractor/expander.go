package extractor

import (
	"context"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
)

// expandRelated fetches the concepts related to each initial
// identifier and retains those tagged with an accepted drug product
// term type. Retained concepts are deduplicated by RxCUI within the
// current ingredient, first-seen name wins, discovery order is kept.
// A fixed courtesy pause follows each related-concepts fetch.
func (e *Extractor) expandRelated(ctx context.Context, ingredient string, rxcuis []string) []entities.Concept {
	var retained []entities.Concept
	seen := make(map[string]bool)

	for i, rxcui := range rxcuis {
		if ctx.Err() != nil {
			return retained
		}

		concepts, outcome := e.client.AllRelated(ctx, rxcui)

		count := 0
		for _, concept := range concepts {
			if !acceptedTermTypes[concept.TTY] {
				continue
			}
			if concept.RxCUI == "" || seen[concept.RxCUI] {
				continue
			}
			seen[concept.RxCUI] = true
			retained = append(retained, concept)
			count++
		}

		logging.Debug("Expanded related concepts",
			"ingredient", ingredient,
			"rxcui", rxcui,
			"position", i+1,
			"total", len(rxcuis),
			"retained", count,
			"outcome", outcome.String())

		e.pause(ctx, e.relatedPause)
	}

	return retained
}
