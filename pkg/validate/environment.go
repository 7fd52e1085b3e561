package validate

import (
	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// phaseBinding ties an environment field to the definition field that
// declares the same phase.
type phaseBinding struct {
	phase      model.Phase
	envField   string
	defField   string
	envPresent func(*spec.ModelEnvironment) bool
	defPresent func(*spec.ModelDefinition) bool
}

var phaseBindings = []phaseBinding{
	{
		phase:      model.PhasePrepare,
		envField:   "prepare_environment",
		defField:   "preparer_class",
		envPresent: func(e *spec.ModelEnvironment) bool { return e.PrepareEnvironment != nil },
		defPresent: func(d *spec.ModelDefinition) bool { return d.PreparerClass != nil },
	},
	{
		phase:      model.PhaseTrain,
		envField:   "train_environment",
		defField:   "trainer_class",
		envPresent: func(e *spec.ModelEnvironment) bool { return e.TrainEnvironment != nil },
		defPresent: func(d *spec.ModelDefinition) bool { return d.TrainerClass != nil },
	},
	{
		phase:      model.PhaseScore,
		envField:   "score_environment",
		defField:   "scorer_phase",
		envPresent: func(e *spec.ModelEnvironment) bool { return e.ScoreEnvironment != nil },
		defPresent: func(d *spec.ModelDefinition) bool { return d.ScorerPhase != nil },
	},
	{
		phase:      model.PhaseEvaluate,
		envField:   "evaluate_environment",
		defField:   "evaluator_class",
		envPresent: func(e *spec.ModelEnvironment) bool { return e.EvaluateEnvironment != nil },
		defPresent: func(d *spec.ModelDefinition) bool { return d.EvaluatorClass != nil },
	},
}

// environment assembles a validated environment. When def is non-nil the
// phases present in both documents must agree.
func environment(r *report, doc *spec.ModelEnvironment, def *spec.ModelDefinition) (*model.Environment, bool) {
	if doc == nil {
		r.addf("", MissingField, "model environment is missing")
		return nil, false
	}
	mark := r.mark()

	if doc.ProtocolVersion != spec.EnvironmentProtocolVersion {
		r.addf("protocol_version", UnsupportedProtocolVersion,
			"unsupported protocol version %q (supported: %s)", doc.ProtocolVersion, spec.EnvironmentProtocolVersion)
	}
	r.requireIdentifier("name", doc.Name)
	r.requireIdentifier("version", doc.Version)

	if def != nil {
		crossCheck(r, doc, def)
	}

	env := &model.Environment{
		ProtocolVersion: doc.ProtocolVersion,
		Name:            doc.Name,
		Version:         doc.Version,
	}
	if doc.PrepareEnvironment != nil && !r.halted() {
		env.Prepare, _ = phase(r, "prepare_environment", doc.PrepareEnvironment)
	}
	if doc.TrainEnvironment != nil && !r.halted() {
		env.Train, _ = phase(r, "train_environment", doc.TrainEnvironment)
	}
	if doc.ScoreEnvironment != nil && !r.halted() {
		env.Score, _ = score(r, "score_environment", doc.ScoreEnvironment)
	}
	if doc.EvaluateEnvironment != nil && !r.halted() {
		env.Evaluate, _ = phase(r, "evaluate_environment", doc.EvaluateEnvironment)
	}

	if !r.clean(mark) {
		return nil, false
	}
	return env, true
}

// crossCheck requires the environment to describe the model the definition
// declares: same name and version, and a phase environment for exactly the
// phases the definition implements.
func crossCheck(r *report, env *spec.ModelEnvironment, def *spec.ModelDefinition) {
	if env.Name != def.Name {
		r.addf("name", IdentityMismatch, "environment is for model %q but the definition is %q", env.Name, def.Name)
	}
	if env.Version != def.Version {
		r.addf("version", IdentityMismatch, "environment is for version %q but the definition is version %q", env.Version, def.Version)
	}

	for _, b := range phaseBindings {
		inEnv, inDef := b.envPresent(env), b.defPresent(def)
		switch {
		case inEnv && !inDef:
			r.addf(Path(b.envField), PhaseMismatch,
				"%s is configured but the model definition has no %s", b.envField, b.defField)
		case !inEnv && inDef:
			r.addf(Path(b.envField), PhaseMismatch,
				"the model definition declares %s but %s is missing", b.defField, b.envField)
		}
	}
}
