package model

import "sort"

// Phase names a lifecycle phase.
type Phase string

// Lifecycle phases in execution order.
const (
	PhasePrepare  Phase = "prepare"
	PhaseTrain    Phase = "train"
	PhaseScore    Phase = "score"
	PhaseEvaluate Phase = "evaluate"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhasePrepare, PhaseTrain, PhaseScore, PhaseEvaluate}

// InputDescriptor is everything a reader needs to fill one tuple field.
type InputDescriptor struct {
	Source   string // input_spec name; empty for the score phase
	TableURI string
	Column   ColumnInput
}

// OutputDescriptor is everything a writer needs to persist one tuple field.
type OutputDescriptor struct {
	Sink     string // output_spec name
	TableURI string
	Column   ColumnOutput
}

// Bindings maps tuple field names to resolved columns, per direction.
// A field may appear on both sides.
type Bindings struct {
	Inputs  map[string]InputDescriptor
	Outputs map[string]OutputDescriptor
}

// InputFields returns the bound input field names in sorted order.
func (b Bindings) InputFields() []string {
	return sortedKeys(b.Inputs)
}

// OutputFields returns the bound output field names in sorted order.
func (b Bindings) OutputFields() []string {
	return sortedKeys(b.Outputs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PhaseEnvironment binds the prepare, train or evaluate phase.
type PhaseEnvironment struct {
	Inputs   map[string]InputSpec
	Outputs  map[string]OutputSpec
	KVStores []KVStore
	Bindings Bindings
}

// InputNames returns the input spec names in sorted order.
func (p *PhaseEnvironment) InputNames() []string { return sortedKeys(p.Inputs) }

// OutputNames returns the output spec names in sorted order.
func (p *PhaseEnvironment) OutputNames() []string { return sortedKeys(p.Outputs) }

// ScoreEnvironment binds the score phase: one Kiji row in, one column out.
type ScoreEnvironment struct {
	Input    KijiInput
	Output   KijiColumnOutput
	KVStores []KVStore
	Bindings Bindings
}

// Environment is a validated model environment.
type Environment struct {
	ProtocolVersion string
	Name            string
	Version         string
	Prepare         *PhaseEnvironment
	Train           *PhaseEnvironment
	Score           *ScoreEnvironment
	Evaluate        *PhaseEnvironment
}

// Has reports whether the environment configures the given phase.
func (e *Environment) Has(p Phase) bool {
	switch p {
	case PhasePrepare:
		return e.Prepare != nil
	case PhaseTrain:
		return e.Train != nil
	case PhaseScore:
		return e.Score != nil
	case PhaseEvaluate:
		return e.Evaluate != nil
	}
	return false
}

// Bindings returns the resolved bindings of a configured phase.
func (e *Environment) Bindings(p Phase) (Bindings, bool) {
	switch p {
	case PhasePrepare:
		if e.Prepare != nil {
			return e.Prepare.Bindings, true
		}
	case PhaseTrain:
		if e.Train != nil {
			return e.Train.Bindings, true
		}
	case PhaseScore:
		if e.Score != nil {
			return e.Score.Bindings, true
		}
	case PhaseEvaluate:
		if e.Evaluate != nil {
			return e.Evaluate.Bindings, true
		}
	}
	return Bindings{}, false
}

// PhaseDefinition names the class implementing a phase.
type PhaseDefinition struct {
	ExtractorClass string // empty when unset
	PhaseClass     string
}

// Definition is a validated model definition. Empty class names mean the
// phase is not declared.
type Definition struct {
	Name            string
	Version         string
	ProtocolVersion string
	PreparerClass   string
	TrainerClass    string
	Scorer          *PhaseDefinition
	EvaluatorClass  string
}

// Has reports whether the definition declares the given phase.
func (d *Definition) Has(p Phase) bool {
	switch p {
	case PhasePrepare:
		return d.PreparerClass != ""
	case PhaseTrain:
		return d.TrainerClass != ""
	case PhaseScore:
		return d.Scorer != nil
	case PhaseEvaluate:
		return d.EvaluatorClass != ""
	}
	return false
}
