package spec

// DefinitionProtocolVersion is the protocol version written by, and the only
// one accepted for, model definition documents.
const DefinitionProtocolVersion = "model_definition-0.4.0"

// PhaseDefinition names the class implementing a phase and, optionally, the
// extractor feeding it.
type PhaseDefinition struct {
	ExtractorClass *string `mapstructure:"extractor_class" yaml:"extractor_class,omitempty"`
	PhaseClass     string  `mapstructure:"phase_class" yaml:"phase_class"`
}

// ModelDefinition declares which lifecycle phases a model implements.
// A nil class field means the phase is absent.
type ModelDefinition struct {
	Name            string           `mapstructure:"name" yaml:"name"`
	Version         string           `mapstructure:"version" yaml:"version"`
	ProtocolVersion string           `mapstructure:"protocol_version" yaml:"protocol_version"`
	PreparerClass   *string          `mapstructure:"preparer_class" yaml:"preparer_class,omitempty"`
	TrainerClass    *string          `mapstructure:"trainer_class" yaml:"trainer_class,omitempty"`
	ScorerPhase     *PhaseDefinition `mapstructure:"scorer_phase" yaml:"scorer_phase,omitempty"`
	EvaluatorClass  *string          `mapstructure:"evaluator_class" yaml:"evaluator_class,omitempty"`
}
