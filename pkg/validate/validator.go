// Package validate turns loosely-constrained model definition and model
// environment documents (package spec) into validated, resolved values
// (package model), or reports every place where a document is malformed.
//
// Validation is pure: it performs no I/O and keeps no state between calls,
// so one Validator may be shared by any number of goroutines.
package validate

import (
	"log/slog"

	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// Config holds validator configuration.
type Config struct {
	// Policy selects fail-fast or accumulate error collection.
	Policy Policy
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Validator validates model definitions and environments.
type Validator struct {
	policy Policy
	logger *slog.Logger
}

// New creates a validator.
func New(cfg Config) *Validator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{policy: cfg.Policy, logger: logger}
}

// Policy returns the error collection policy.
func (v *Validator) Policy() Policy { return v.policy }

// Environment validates a model environment on its own. Errors are returned
// as an ErrorList.
func (v *Validator) Environment(doc *spec.ModelEnvironment) (*model.Environment, error) {
	r := newReport(v.policy)
	v.logger.Debug("validating model environment", "policy", v.policy.String())

	env, _ := environment(r, doc, nil)
	return finish(v, r, "model environment", env)
}

// Definition validates a model definition on its own. Errors are returned as
// an ErrorList.
func (v *Validator) Definition(doc *spec.ModelDefinition) (*model.Definition, error) {
	r := newReport(v.policy)
	v.logger.Debug("validating model definition", "policy", v.policy.String())

	def, _ := definition(r, doc)
	return finish(v, r, "model definition", def)
}

// Pair validates a model definition together with the environment that
// binds it, additionally requiring that both documents name the same model
// and declare the same set of phases. Errors carry the Document they were
// found in.
func (v *Validator) Pair(defDoc *spec.ModelDefinition, envDoc *spec.ModelEnvironment) (*model.Definition, *model.Environment, error) {
	r := newReport(v.policy)
	v.logger.Debug("validating model definition and environment", "policy", v.policy.String())

	r.doc = DefinitionDocument
	def, _ := definition(r, defDoc)

	var env *model.Environment
	if !r.halted() {
		r.doc = EnvironmentDocument
		env, _ = environment(r, envDoc, defDoc)
	}

	if _, err := finish(v, r, "model definition and environment", env); err != nil {
		return nil, nil, err
	}
	return def, env, nil
}

func finish[T any](v *Validator, r *report, what string, value *T) (*T, error) {
	if len(r.errs) > 0 || value == nil {
		v.logger.Debug("validation failed", "document", what, "errors", len(r.errs))
		if len(r.errs) == 0 {
			r.addf("", MissingField, "%s is missing", what)
		}
		return nil, r.errs
	}
	v.logger.Debug("validation succeeded", "document", what)
	return value, nil
}
