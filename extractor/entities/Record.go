package entities

// Record is one row of the output table: an (ingredient, rxcui, ndc)
// triple with the descriptive names resolved for both identifiers.
// NDC and NDCDescription are nil for concepts with no registered
// product codes.
type Record struct {
	Ingredient       string  `json:"ingredient"`
	RxCUI            string  `json:"rxcui"`
	NDC              *string `json:"ndc"`
	RxCUIDescription string  `json:"rxcuiDescription"`
	NDCDescription   *string `json:"ndcDescription"`
}

// HasNDC reports whether the record carries a product code.
func (r Record) HasNDC() bool {
	return r.NDC != nil && *r.NDC != ""
}
