package extractor

import (
	"context"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
)

// fetchCodes appends the output records for every retained concept of
// one ingredient. A concept with N product codes produces N records,
// one per code; a concept with no codes produces exactly one record
// with a nil code and description. Every tenth concept a courtesy
// pause throttles the call rate.
func (e *Extractor) fetchCodes(ctx context.Context, ingredient string, concepts []entities.Concept, dataset *entities.Dataset) {
	totalNDCs := 0

	for i, concept := range concepts {
		if ctx.Err() != nil {
			return
		}

		codes, _ := e.client.NDCs(ctx, concept.RxCUI)

		if len(codes) > 0 {
			totalNDCs += len(codes)
			for _, code := range codes {
				description, _ := e.client.NDCDescription(ctx, code)

				ndc := code
				dataset.Append(entities.Record{
					Ingredient:       ingredient,
					RxCUI:            concept.RxCUI,
					NDC:              &ndc,
					RxCUIDescription: concept.Name,
					NDCDescription:   description,
				})
			}
		} else {
			dataset.Append(entities.Record{
				Ingredient:       ingredient,
				RxCUI:            concept.RxCUI,
				RxCUIDescription: concept.Name,
			})
		}

		if i%10 == 0 {
			e.pause(ctx, e.ndcPause)
		}
	}

	logging.Debug("Fetched product codes",
		"ingredient", ingredient,
		"concepts", len(concepts),
		"ndcs", totalNDCs)
}
