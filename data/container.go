// Package data provides thread-safe storage for the extracted NDC
// dataset. The DataContainer swaps whole datasets atomically so that
// readers never see a partially updated table, and checkpoint
// publications during a long extraction are safe.
package data

import (
	"sync/atomic"
	"time"

	"github.com/Andeeli/MedicalCodeRetrieval/extractor/entities"
	"github.com/Andeeli/MedicalCodeRetrieval/interfaces"
	"github.com/Andeeli/MedicalCodeRetrieval/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the dataset and its lookup maps with atomic
// pointers for zero-downtime updates
type DataContainer struct {
	dataset             atomic.Value // *entities.Dataset
	table               atomic.Value // []entities.Record (records with an NDC)
	recordsByIngredient atomic.Value // map[string][]entities.Record
	recordsByRxCUI      atomic.Value // map[string][]entities.Record
	recordsByNDC        atomic.Value // map[string][]entities.Record
	qualityReport       atomic.Value // *interfaces.DataQualityReport
	lastUpdated         atomic.Value // time.Time
	updating            atomic.Bool
	serverStartTime     atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.dataset.Store(entities.NewDataset())
	dc.table.Store(make([]entities.Record, 0))
	dc.recordsByIngredient.Store(make(map[string][]entities.Record))
	dc.recordsByRxCUI.Store(make(map[string][]entities.Record))
	dc.recordsByNDC.Store(make(map[string][]entities.Record))
	dc.qualityReport.Store(&interfaces.DataQualityReport{})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetDataset returns the full dataset, including records without an NDC
func (dc *DataContainer) GetDataset() *entities.Dataset {
	if v := dc.dataset.Load(); v != nil {
		if dataset, ok := v.(*entities.Dataset); ok {
			return dataset
		}
	}

	logging.Warn("Dataset is empty or invalid")
	return entities.NewDataset()
}

// GetTable returns the served table: records that carry a product code
func (dc *DataContainer) GetTable() []entities.Record {
	if v := dc.table.Load(); v != nil {
		if table, ok := v.([]entities.Record); ok {
			return table
		}
	}

	logging.Warn("Table is empty or invalid")
	return []entities.Record{}
}

// GetRecordsByIngredient returns the ingredient lookup map
func (dc *DataContainer) GetRecordsByIngredient() map[string][]entities.Record {
	if v := dc.recordsByIngredient.Load(); v != nil {
		if m, ok := v.(map[string][]entities.Record); ok {
			return m
		}
	}

	logging.Warn("Ingredient map is empty or invalid")
	return make(map[string][]entities.Record)
}

// GetRecordsByRxCUI returns the concept identifier lookup map
func (dc *DataContainer) GetRecordsByRxCUI() map[string][]entities.Record {
	if v := dc.recordsByRxCUI.Load(); v != nil {
		if m, ok := v.(map[string][]entities.Record); ok {
			return m
		}
	}

	logging.Warn("RxCUI map is empty or invalid")
	return make(map[string][]entities.Record)
}

// GetRecordsByNDC returns the product code lookup map
func (dc *DataContainer) GetRecordsByNDC() map[string][]entities.Record {
	if v := dc.recordsByNDC.Load(); v != nil {
		if m, ok := v.(map[string][]entities.Record); ok {
			return m
		}
	}

	logging.Warn("NDC map is empty or invalid")
	return make(map[string][]entities.Record)
}

// GetQualityReport returns the quality report of the last refresh
func (dc *DataContainer) GetQualityReport() *interfaces.DataQualityReport {
	if v := dc.qualityReport.Load(); v != nil {
		if report, ok := v.(*interfaces.DataQualityReport); ok {
			return report
		}
	}

	logging.Warn("Quality report is empty or invalid")
	return &interfaces.DataQualityReport{}
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the dataset, its derived lookup maps
// and the quality report
func (dc *DataContainer) UpdateData(dataset *entities.Dataset, report *interfaces.DataQualityReport) {
	if dataset == nil {
		dataset = entities.NewDataset()
	}
	if report == nil {
		report = &interfaces.DataQualityReport{}
	}

	// Atomic swap (zero downtime replacement)
	dc.dataset.Store(dataset)
	dc.table.Store(dataset.WithNDC())
	dc.recordsByIngredient.Store(dataset.ByIngredient())
	dc.recordsByRxCUI.Store(dataset.ByRxCUI())
	dc.recordsByNDC.Store(dataset.ByNDC())
	dc.qualityReport.Store(report)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
