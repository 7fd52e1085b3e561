package validate

import (
	"sort"

	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// phase validates a prepare, train or evaluate environment and resolves its
// bindings.
func phase(r *report, path Path, doc *spec.PhaseEnvironment) (*model.PhaseEnvironment, bool) {
	mark := r.mark()
	env := &model.PhaseEnvironment{
		Inputs:  make(map[string]model.InputSpec, len(doc.InputSpec)),
		Outputs: make(map[string]model.OutputSpec, len(doc.OutputSpec)),
	}

	inputsPath := path.Field("input_spec")
	for _, name := range sortedNames(doc.InputSpec) {
		if r.halted() {
			break
		}
		p := inputsPath.Key(name)
		if name == "" {
			r.addf(p, EmptyIdentifier, "input spec name must not be empty")
			continue
		}
		if in, ok := inputSpec(r, p, doc.InputSpec[name]); ok {
			env.Inputs[name] = in
		}
	}

	outputsPath := path.Field("output_spec")
	for _, name := range sortedNames(doc.OutputSpec) {
		if r.halted() {
			break
		}
		p := outputsPath.Key(name)
		if name == "" {
			r.addf(p, EmptyIdentifier, "output spec name must not be empty")
			continue
		}
		if out, ok := outputSpec(r, p, doc.OutputSpec[name]); ok {
			env.Outputs[name] = out
		}
	}

	env.KVStores, _ = kvStores(r, path.Field("kv_stores"), doc.KVStores)

	if !r.halted() {
		env.Bindings, _ = resolvePhase(r, path, env.Inputs, env.Outputs)
	}
	if !r.clean(mark) {
		return nil, false
	}
	return env, true
}

// score validates the score environment: one Kiji input, one single-column
// Kiji output.
func score(r *report, path Path, doc *spec.ScoreEnvironment) (*model.ScoreEnvironment, bool) {
	mark := r.mark()
	env := &model.ScoreEnvironment{}

	if doc.InputSpec == nil {
		r.addf(path.Field("input_spec"), MissingField, "score environment requires a kiji input_spec")
	} else if in, ok := kijiInput(r, path.Field("input_spec"), doc.InputSpec); ok {
		env.Input = in
	}

	if !r.halted() {
		if doc.OutputSpec == nil {
			r.addf(path.Field("output_spec"), MissingField, "score environment requires a single-column kiji output_spec")
		} else if out, ok := kijiColumnOutput(r, path.Field("output_spec"), doc.OutputSpec); ok {
			env.Output = out
		}
	}

	env.KVStores, _ = kvStores(r, path.Field("kv_stores"), doc.KVStores)

	if !r.halted() && r.clean(mark) {
		env.Bindings, _ = resolveScore(r, path, env.Input)
	}
	if !r.clean(mark) {
		return nil, false
	}
	return env, true
}

func inputSpec(r *report, path Path, doc spec.InputSpec) (model.InputSpec, bool) {
	which, ok := r.pick(path, "input spec",
		variant{"kiji_specification", doc.KijiSpecification != nil},
		variant{"text_specification", doc.TextSpecification != nil},
		variant{"sequence_file_specification", doc.SequenceFileSpecification != nil},
	)
	if !ok {
		return nil, false
	}
	p := path.Field(which)
	switch which {
	case "kiji_specification":
		in, ok := kijiInput(r, p, doc.KijiSpecification)
		if !ok {
			return nil, false
		}
		return in, true
	case "text_specification":
		if !r.requireIdentifier(p.Field("file_path"), doc.TextSpecification.FilePath) {
			return nil, false
		}
		return model.TextInput{FilePath: doc.TextSpecification.FilePath}, true
	default:
		f, ok := sequenceFile(r, p, doc.SequenceFileSpecification)
		if !ok {
			return nil, false
		}
		return f, true
	}
}

func outputSpec(r *report, path Path, doc spec.OutputSpec) (model.OutputSpec, bool) {
	which, ok := r.pick(path, "output spec",
		variant{"kiji_specification", doc.KijiSpecification != nil},
		variant{"kiji_column_specification", doc.KijiColumnSpecification != nil},
		variant{"text_specification", doc.TextSpecification != nil},
		variant{"sequence_file_specification", doc.SequenceFileSpecification != nil},
	)
	if !ok {
		return nil, false
	}
	p := path.Field(which)
	switch which {
	case "kiji_specification":
		out, ok := kijiOutput(r, p, doc.KijiSpecification)
		if !ok {
			return nil, false
		}
		return out, true
	case "kiji_column_specification":
		out, ok := kijiColumnOutput(r, p, doc.KijiColumnSpecification)
		if !ok {
			return nil, false
		}
		return out, true
	case "text_specification":
		if !r.requireIdentifier(p.Field("file_path"), doc.TextSpecification.FilePath) {
			return nil, false
		}
		return model.TextOutput{FilePath: doc.TextSpecification.FilePath}, true
	default:
		f, ok := sequenceFile(r, p, doc.SequenceFileSpecification)
		if !ok {
			return nil, false
		}
		return model.SequenceFileOutput(f), true
	}
}

func sequenceFile(r *report, path Path, doc *spec.SequenceFileSourceSpec) (model.SequenceFileInput, bool) {
	mark := r.mark()
	r.requireIdentifier(path.Field("file_path"), doc.FilePath)
	r.optionalIdentifier(path.Field("key_field"), doc.KeyField)
	r.optionalIdentifier(path.Field("value_field"), doc.ValueField)
	if !r.clean(mark) {
		return model.SequenceFileInput{}, false
	}
	out := model.SequenceFileInput{FilePath: doc.FilePath}
	if doc.KeyField != nil {
		out.KeyField = *doc.KeyField
	}
	if doc.ValueField != nil {
		out.ValueField = *doc.ValueField
	}
	return out, true
}

func kijiInput(r *report, path Path, doc *spec.KijiInputSpec) (model.KijiInput, bool) {
	mark := r.mark()
	in := model.KijiInput{
		TableURI: doc.TableURI,
		Bindings: make([]model.InputBinding, 0, len(doc.ColumnsToFields)),
	}
	r.requireIdentifier(path.Field("table_uri"), doc.TableURI)
	if doc.TimeRange != nil {
		in.TimeRange, _ = timeRange(r, path.Field("time_range"), doc.TimeRange)
	}

	bindingsPath := path.Field("columns_to_fields")
	for i, b := range doc.ColumnsToFields {
		if r.halted() {
			break
		}
		p := bindingsPath.Index(i)
		fieldOK := r.requireIdentifier(p.Field("tuple_field_name"), b.TupleFieldName)
		col, ok := columnInput(r, p.Field("column"), b.Column)
		if ok && fieldOK {
			in.Bindings = append(in.Bindings, model.InputBinding{Field: b.TupleFieldName, Column: col})
		}
	}
	if !r.clean(mark) {
		return model.KijiInput{}, false
	}
	return in, true
}

func kijiOutput(r *report, path Path, doc *spec.KijiOutputSpec) (model.KijiOutput, bool) {
	mark := r.mark()
	out := model.KijiOutput{
		TableURI: doc.TableURI,
		Bindings: make([]model.OutputBinding, 0, len(doc.FieldsToColumns)),
	}
	r.requireIdentifier(path.Field("table_uri"), doc.TableURI)
	if r.optionalIdentifier(path.Field("timestamp_field"), doc.TimestampField) && doc.TimestampField != nil {
		out.TimestampField = *doc.TimestampField
	}

	bindingsPath := path.Field("fields_to_columns")
	for i, b := range doc.FieldsToColumns {
		if r.halted() {
			break
		}
		p := bindingsPath.Index(i)
		fieldOK := r.requireIdentifier(p.Field("tuple_field_name"), b.TupleFieldName)
		col, ok := columnOutput(r, p.Field("column"), b.Column)
		if ok && fieldOK {
			out.Bindings = append(out.Bindings, model.OutputBinding{Field: b.TupleFieldName, Column: col})
		}
	}
	if !r.clean(mark) {
		return model.KijiOutput{}, false
	}
	return out, true
}

func kijiColumnOutput(r *report, path Path, doc *spec.KijiSingleColumnOutputSpec) (model.KijiColumnOutput, bool) {
	mark := r.mark()
	out := model.KijiColumnOutput{TableURI: doc.TableURI}
	r.requireIdentifier(path.Field("table_uri"), doc.TableURI)
	if doc.OutputColumn == nil {
		r.addf(path.Field("output_column"), MissingField, "output_column is required")
	} else if !r.halted() {
		out.Column, _ = qualifiedColumnOutput(r, path.Field("output_column"), doc.OutputColumn)
	}
	if !r.clean(mark) {
		return model.KijiColumnOutput{}, false
	}
	return out, true
}

// timeRange requires 0 <= min < max.
func timeRange(r *report, path Path, doc *spec.TimeRange) (*model.TimeRange, bool) {
	if doc.MinTimestamp < 0 {
		r.addf(path.Field("min_timestamp"), InvalidTimeRange, "min_timestamp must not be negative, got %d", doc.MinTimestamp)
		return nil, false
	}
	if doc.MinTimestamp >= doc.MaxTimestamp {
		r.addf(path, InvalidTimeRange, "min_timestamp %d must be less than max_timestamp %d", doc.MinTimestamp, doc.MaxTimestamp)
		return nil, false
	}
	return &model.TimeRange{Min: doc.MinTimestamp, Max: doc.MaxTimestamp}, true
}

// kvStores validates the stores of one phase: names unique within the phase,
// property names unique within each store.
func kvStores(r *report, path Path, docs []spec.KVStore) ([]model.KVStore, bool) {
	mark := r.mark()
	stores := make([]model.KVStore, 0, len(docs))
	seen := make(map[string]Path, len(docs))

	for i, doc := range docs {
		if r.halted() {
			break
		}
		p := path.Index(i)
		storeMark := r.mark()

		typ, known := model.ParseStoreType(doc.StoreType)
		if !known {
			r.addf(p.Field("store_type"), InvalidValue, "unknown store_type %q (expected AVRO_KV, AVRO_RECORD, KIJI_TABLE or TEXT_FILE)", doc.StoreType)
		}
		if r.requireIdentifier(p.Field("name"), doc.Name) {
			if first, dup := seen[doc.Name]; dup {
				r.addf(p.Field("name"), DuplicateStoreName, "kv store %q is already declared at %s", doc.Name, first)
			} else {
				seen[doc.Name] = p
			}
		}
		props := storeProperties(r, p.Field("properties"), doc.Properties)

		if r.clean(storeMark) {
			stores = append(stores, model.KVStore{Type: typ, Name: doc.Name, Properties: props})
		}
	}
	return stores, r.clean(mark)
}

func storeProperties(r *report, path Path, docs []spec.Property) []model.Property {
	props := make([]model.Property, 0, len(docs))
	seen := make(map[string]Path, len(docs))
	for i, doc := range docs {
		p := path.Index(i)
		if !r.requireIdentifier(p.Field("name"), doc.Name) {
			continue
		}
		if first, dup := seen[doc.Name]; dup {
			r.addf(p.Field("name"), DuplicatePropertyName, "property %q is already set at %s", doc.Name, first)
			continue
		}
		seen[doc.Name] = p
		props = append(props, model.Property{Name: doc.Name, Value: doc.Value})
	}
	return props
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
