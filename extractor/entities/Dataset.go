package entities

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is the ordered accumulation of output records. Insertion
// order is preserved: ingredient list order, then concept discovery
// order, then product code order.
type Dataset struct {
	Records []Record `json:"records"`
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Records: make([]Record, 0)}
}

// Append adds a record at the end of the dataset.
func (d *Dataset) Append(r Record) {
	d.Records = append(d.Records, r)
}

// Len returns the number of records, including records without an NDC.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Snapshot returns a copy of the dataset that is safe to publish while
// the extraction keeps appending to the original.
func (d *Dataset) Snapshot() *Dataset {
	records := make([]Record, len(d.Records))
	copy(records, d.Records)
	return &Dataset{Records: records}
}

// WithNDC returns the records that carry a product code, in dataset
// order. This is the served table: concepts without registered codes
// are kept in the dataset for diagnostics but dropped here.
func (d *Dataset) WithNDC() []Record {
	filtered := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if r.HasNDC() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ByIngredient builds a lookup map from ingredient name to its records.
func (d *Dataset) ByIngredient() map[string][]Record {
	m := make(map[string][]Record)
	for _, r := range d.Records {
		m[r.Ingredient] = append(m[r.Ingredient], r)
	}
	return m
}

// ByRxCUI builds a lookup map from concept identifier to its records.
func (d *Dataset) ByRxCUI() map[string][]Record {
	m := make(map[string][]Record)
	for _, r := range d.Records {
		m[r.RxCUI] = append(m[r.RxCUI], r)
	}
	return m
}

// ByNDC builds a lookup map from product code to its records. Records
// without a code are not indexed.
func (d *Dataset) ByNDC() map[string][]Record {
	m := make(map[string][]Record)
	for _, r := range d.Records {
		if r.HasNDC() {
			m[*r.NDC] = append(m[*r.NDC], r)
		}
	}
	return m
}

// CSV renders the filtered table (records with an NDC) as CSV with the
// column layout {ingredient, rxcui, ndc, rxcui description, ndc description}.
func (d *Dataset) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ingredient", "rxcui", "ndc", "rxcui description", "ndc description"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range d.WithNDC() {
		description := ""
		if r.NDCDescription != nil {
			description = *r.NDCDescription
		}
		row := []string{r.Ingredient, r.RxCUI, *r.NDC, r.RxCUIDescription, description}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
