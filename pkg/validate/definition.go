package validate

import (
	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// definition validates a model definition in isolation. Class names are
// opaque: they are only required to be non-empty.
func definition(r *report, doc *spec.ModelDefinition) (*model.Definition, bool) {
	if doc == nil {
		r.addf("", MissingField, "model definition is missing")
		return nil, false
	}
	mark := r.mark()

	if doc.ProtocolVersion != spec.DefinitionProtocolVersion {
		r.addf("protocol_version", UnsupportedProtocolVersion,
			"unsupported protocol version %q (supported: %s)", doc.ProtocolVersion, spec.DefinitionProtocolVersion)
	}
	r.requireIdentifier("name", doc.Name)
	r.requireIdentifier("version", doc.Version)
	r.optionalIdentifier("preparer_class", doc.PreparerClass)
	r.optionalIdentifier("trainer_class", doc.TrainerClass)
	r.optionalIdentifier("evaluator_class", doc.EvaluatorClass)

	var scorer *model.PhaseDefinition
	if doc.ScorerPhase != nil {
		p := Path("scorer_phase")
		r.optionalIdentifier(p.Field("extractor_class"), doc.ScorerPhase.ExtractorClass)
		r.requireIdentifier(p.Field("phase_class"), doc.ScorerPhase.PhaseClass)
		scorer = &model.PhaseDefinition{PhaseClass: doc.ScorerPhase.PhaseClass}
		if doc.ScorerPhase.ExtractorClass != nil {
			scorer.ExtractorClass = *doc.ScorerPhase.ExtractorClass
		}
	}

	if !r.clean(mark) {
		return nil, false
	}
	return &model.Definition{
		Name:            doc.Name,
		Version:         doc.Version,
		ProtocolVersion: doc.ProtocolVersion,
		PreparerClass:   deref(doc.PreparerClass),
		TrainerClass:    deref(doc.TrainerClass),
		Scorer:          scorer,
		EvaluatorClass:  deref(doc.EvaluatorClass),
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
