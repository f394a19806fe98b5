// Package validation provides data validation functionality for the
// NDC retrieval service: output record shape checks, user input
// sanitation for URL parameters, and dataset quality reporting.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Ingredient names: letters, digits, spaces and safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+']+$`)

	// RxCUI: an opaque numeric identifier
	rxcuiRegex = regexp.MustCompile(`^\d{1,10}$`)

	// NDC: digit groups separated by hyphens (e.g. 00002-1433-01) or
	// an undelimited 11-digit code
	ndcRegex = regexp.MustCompile(`^\d{4,5}-\d{3,4}-\d{1,2}$|^\d{10,11}$`)

	// Dangerous substrings rejected outright in user input.
	// strings.Contains is faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"' or ", "\" or ", "union select", "drop table", "--", "/*", "*/",
		"; ", "| ", "& ", "`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateRecord checks if an output record is well formed
func (v *DataValidatorImpl) ValidateRecord(r *entities.Record) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}

	if strings.TrimSpace(r.Ingredient) == "" {
		return fmt.Errorf("empty ingredient")
	}

	if !rxcuiRegex.MatchString(r.RxCUI) {
		return fmt.Errorf("invalid rxcui for ingredient %s: %q", r.Ingredient, r.RxCUI)
	}

	if strings.TrimSpace(r.RxCUIDescription) == "" {
		return fmt.Errorf("empty rxcui description for rxcui %s", r.RxCUI)
	}

	if r.NDC != nil && !ndcRegex.MatchString(*r.NDC) {
		return fmt.Errorf("invalid ndc for rxcui %s: %q", r.RxCUI, *r.NDC)
	}

	// A description without a code makes no sense
	if r.NDC == nil && r.NDCDescription != nil {
		return fmt.Errorf("ndc description without ndc for rxcui %s", r.RxCUI)
	}

	return nil
}

// ReportDataQuality generates a data quality report for a dataset
func (v *DataValidatorImpl) ReportDataQuality(dataset *entities.Dataset, ingredients []string) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}
	if dataset == nil {
		report.IngredientsWithoutRows = append(report.IngredientsWithoutRows, ingredients...)
		return report
	}

	report.TotalRecords = dataset.Len()

	seenTriples := make(map[string]int)
	ingredientsWithRows := make(map[string]bool)

	for i := range dataset.Records {
		r := &dataset.Records[i]
		ingredientsWithRows[r.Ingredient] = true

		if !r.HasNDC() {
			report.RecordsWithoutNDC++
			report.RecordsWithoutNDCRxCUIs = append(report.RecordsWithoutNDCRxCUIs, r.RxCUI)
		}

		if err := v.ValidateRecord(r); err != nil {
			report.InvalidRecords++
		}

		key := r.Ingredient + "|" + r.RxCUI
		if r.NDC != nil {
			key += "|" + *r.NDC
		}
		seenTriples[key]++
	}

	for _, count := range seenTriples {
		if count > 1 {
			report.DuplicateTriples++
		}
	}

	for _, ingredient := range ingredients {
		if !ingredientsWithRows[ingredient] {
			report.IngredientsWithoutRows = append(report.IngredientsWithoutRows, ingredient)
		}
	}

	return report
}

// ValidateInput validates user input strings from URL parameters
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > 100 {
		return fmt.Errorf("input too long: %d characters", len(input))
	}

	lowered := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowered, pattern) {
			return fmt.Errorf("input contains disallowed pattern")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters")
	}

	return nil
}

// ValidateRxCUI validates concept identifier path parameters
func (v *DataValidatorImpl) ValidateRxCUI(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !rxcuiRegex.MatchString(trimmed) {
		return "", fmt.Errorf("invalid rxcui: %q", input)
	}
	return trimmed, nil
}

// ValidateNDC validates product code path parameters
func (v *DataValidatorImpl) ValidateNDC(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if !ndcRegex.MatchString(trimmed) {
		return "", fmt.Errorf("invalid ndc: %q", input)
	}
	return trimmed, nil
}
