package models

// StagingRecord is one normalized CSV row, scoped to a single import run.
// It only exists between parsing and the bulk merge.
type StagingRecord struct {
	SKU         string
	Name        string
	Description string
	Active      bool
}

// ProgressEvent is the transient payload broadcast on a task's progress
// channel. Not persisted; lost if nobody is subscribed.
type ProgressEvent struct {
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// ImportResult is the terminal result of an import run. Processed counts
// data rows before sku filtering, so silently dropped and duplicate rows
// are included in the total.
type ImportResult struct {
	Processed int `json:"processed"`
}
