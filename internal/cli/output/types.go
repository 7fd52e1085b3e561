package output

import "time"

// ValidateOutput is the JSON shape of the validate command.
type ValidateOutput struct {
	Units   []UnitResult    `json:"units"`
	Summary ValidateSummary `json:"summary"`
}

// UnitResult reports one validated model: a definition, an environment or
// a pair of both.
type UnitResult struct {
	Label   string      `json:"label"`
	Name    string      `json:"name,omitempty"`
	Version string      `json:"version,omitempty"`
	Files   []string    `json:"files"`
	Status  string      `json:"status"`
	Phases  []string    `json:"phases,omitempty"`
	Errors  []ErrorInfo `json:"errors,omitempty"`
	RunID   string      `json:"run_id,omitempty"`
}

// ErrorInfo is one validation or load error.
type ErrorInfo struct {
	Kind     string `json:"kind"`
	Document string `json:"document,omitempty"`
	File     string `json:"file,omitempty"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
}

// ValidateSummary counts validate results.
type ValidateSummary struct {
	Units  int `json:"units"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// InspectOutput is the JSON shape of the inspect command.
type InspectOutput struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Phases  []PhaseBindings `json:"phases"`
}

// PhaseBindings lists the resolved bindings of one phase.
type PhaseBindings struct {
	Phase    string        `json:"phase"`
	Class    string        `json:"class,omitempty"`
	Inputs   []BindingInfo `json:"inputs"`
	Outputs  []BindingInfo `json:"outputs"`
	KVStores []StoreInfo   `json:"kv_stores,omitempty"`
}

// BindingInfo is one tuple field bound to a column.
type BindingInfo struct {
	Field    string `json:"field"`
	Spec     string `json:"spec,omitempty"`
	TableURI string `json:"table_uri"`
	Column   string `json:"column"`
	Detail   string `json:"detail,omitempty"`
}

// StoreInfo summarizes a key-value store.
type StoreInfo struct {
	Name       string `json:"name"`
	StoreType  string `json:"store_type"`
	Properties int    `json:"properties"`
}

// HistoryOutput is the JSON shape of the history command.
type HistoryOutput struct {
	Runs []RunInfo `json:"runs"`
}

// RunInfo is one recorded validation run.
type RunInfo struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	Status     string      `json:"status"`
	Files      []string    `json:"files"`
	ErrorCount int         `json:"error_count"`
	StartedAt  time.Time   `json:"started_at"`
	Duration   string      `json:"duration"`
	Errors     []ErrorInfo `json:"errors,omitempty"`
}
