package validate

import (
	"github.com/leapstack-labs/modelspec/pkg/model"
)

// resolver builds the field-name → column mapping of one phase. Input and
// output fields live in separate namespaces: a field read from column X may
// be written back to column Y.
type resolver struct {
	r        *report
	bindings model.Bindings
	inputAt  map[string]Path
	outputAt map[string]Path
}

func newResolver(r *report) *resolver {
	return &resolver{
		r: r,
		bindings: model.Bindings{
			Inputs:  make(map[string]model.InputDescriptor),
			Outputs: make(map[string]model.OutputDescriptor),
		},
		inputAt:  make(map[string]Path),
		outputAt: make(map[string]Path),
	}
}

func (res *resolver) input(path Path, field string, d model.InputDescriptor) {
	if first, dup := res.inputAt[field]; dup {
		res.r.addf(path.Field("tuple_field_name"), DuplicateBinding,
			"input field %q is already bound at %s", field, first)
		return
	}
	res.inputAt[field] = path
	res.bindings.Inputs[field] = d
}

func (res *resolver) output(path Path, field string, d model.OutputDescriptor) {
	if first, dup := res.outputAt[field]; dup {
		res.r.addf(path.Field("tuple_field_name"), DuplicateBinding,
			"output field %q is already bound at %s", field, first)
		return
	}
	res.outputAt[field] = path
	res.bindings.Outputs[field] = d
}

func (res *resolver) kijiInput(path Path, source string, in model.KijiInput) {
	bindingsPath := path.Field("columns_to_fields")
	for i, b := range in.Bindings {
		if res.r.halted() {
			return
		}
		res.input(bindingsPath.Index(i), b.Field, model.InputDescriptor{
			Source:   source,
			TableURI: in.TableURI,
			Column:   b.Column,
		})
	}
}

// resolvePhase resolves every Kiji binding of a prepare, train or evaluate
// phase. Sources and sinks are visited in name order so that the first
// occurrence of a duplicate is deterministic.
func resolvePhase(r *report, path Path, inputs map[string]model.InputSpec, outputs map[string]model.OutputSpec) (model.Bindings, bool) {
	mark := r.mark()
	res := newResolver(r)

	for _, name := range sortedNames(inputs) {
		if in, ok := inputs[name].(model.KijiInput); ok {
			res.kijiInput(path.Field("input_spec").Key(name).Field("kiji_specification"), name, in)
		}
	}

	for _, name := range sortedNames(outputs) {
		out, ok := outputs[name].(model.KijiOutput)
		if !ok {
			continue
		}
		bindingsPath := path.Field("output_spec").Key(name).Field("kiji_specification").Field("fields_to_columns")
		for i, b := range out.Bindings {
			if r.halted() {
				break
			}
			res.output(bindingsPath.Index(i), b.Field, model.OutputDescriptor{
				Sink:     name,
				TableURI: out.TableURI,
				Column:   b.Column,
			})
		}
	}

	return res.bindings, r.clean(mark)
}

// resolveScore resolves the input bindings of the score phase. Its single
// output column is not bound to a tuple field.
func resolveScore(r *report, path Path, in model.KijiInput) (model.Bindings, bool) {
	mark := r.mark()
	res := newResolver(r)
	res.kijiInput(path.Field("input_spec"), "", in)
	return res.bindings, r.clean(mark)
}
