package model

import "github.com/leapstack-labs/modelspec/pkg/spec"

// Document converts the environment back into its document form. Validating
// the result yields a value equal to e.
func (e *Environment) Document() *spec.ModelEnvironment {
	doc := &spec.ModelEnvironment{
		ProtocolVersion:     e.ProtocolVersion,
		Name:                e.Name,
		Version:             e.Version,
		PrepareEnvironment:  phaseDocument(e.Prepare),
		TrainEnvironment:    phaseDocument(e.Train),
		EvaluateEnvironment: phaseDocument(e.Evaluate),
	}
	if e.Score != nil {
		doc.ScoreEnvironment = &spec.ScoreEnvironment{
			InputSpec:  kijiInputDocument(e.Score.Input),
			OutputSpec: kijiColumnOutputDocument(e.Score.Output),
			KVStores:   storesDocument(e.Score.KVStores),
		}
	}
	return doc
}

// Document converts the definition back into its document form.
func (d *Definition) Document() *spec.ModelDefinition {
	doc := &spec.ModelDefinition{
		Name:            d.Name,
		Version:         d.Version,
		ProtocolVersion: d.ProtocolVersion,
		PreparerClass:   optional(d.PreparerClass),
		TrainerClass:    optional(d.TrainerClass),
		EvaluatorClass:  optional(d.EvaluatorClass),
	}
	if d.Scorer != nil {
		doc.ScorerPhase = &spec.PhaseDefinition{
			ExtractorClass: optional(d.Scorer.ExtractorClass),
			PhaseClass:     d.Scorer.PhaseClass,
		}
	}
	return doc
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func phaseDocument(p *PhaseEnvironment) *spec.PhaseEnvironment {
	if p == nil {
		return nil
	}
	doc := &spec.PhaseEnvironment{
		InputSpec:  make(map[string]spec.InputSpec, len(p.Inputs)),
		OutputSpec: make(map[string]spec.OutputSpec, len(p.Outputs)),
		KVStores:   storesDocument(p.KVStores),
	}
	for name, in := range p.Inputs {
		doc.InputSpec[name] = inputDocument(in)
	}
	for name, out := range p.Outputs {
		doc.OutputSpec[name] = outputDocument(out)
	}
	return doc
}

func inputDocument(in InputSpec) spec.InputSpec {
	switch v := in.(type) {
	case KijiInput:
		return spec.InputSpec{KijiSpecification: kijiInputDocument(v)}
	case TextInput:
		return spec.InputSpec{TextSpecification: &spec.TextSourceSpec{FilePath: v.FilePath}}
	case SequenceFileInput:
		return spec.InputSpec{SequenceFileSpecification: &spec.SequenceFileSourceSpec{
			FilePath:   v.FilePath,
			KeyField:   optional(v.KeyField),
			ValueField: optional(v.ValueField),
		}}
	}
	return spec.InputSpec{}
}

func outputDocument(out OutputSpec) spec.OutputSpec {
	switch v := out.(type) {
	case KijiOutput:
		bindings := make([]spec.OutputFieldBinding, 0, len(v.Bindings))
		for _, b := range v.Bindings {
			bindings = append(bindings, spec.OutputFieldBinding{
				TupleFieldName: b.Field,
				Column:         columnOutputDocument(b.Column),
			})
		}
		return spec.OutputSpec{KijiSpecification: &spec.KijiOutputSpec{
			TableURI:        v.TableURI,
			TimestampField:  optional(v.TimestampField),
			FieldsToColumns: bindings,
		}}
	case KijiColumnOutput:
		return spec.OutputSpec{KijiColumnSpecification: kijiColumnOutputDocument(v)}
	case TextOutput:
		return spec.OutputSpec{TextSpecification: &spec.TextSourceSpec{FilePath: v.FilePath}}
	case SequenceFileOutput:
		return spec.OutputSpec{SequenceFileSpecification: &spec.SequenceFileSourceSpec{
			FilePath:   v.FilePath,
			KeyField:   optional(v.KeyField),
			ValueField: optional(v.ValueField),
		}}
	}
	return spec.OutputSpec{}
}

func kijiInputDocument(in KijiInput) *spec.KijiInputSpec {
	doc := &spec.KijiInputSpec{
		TableURI:        in.TableURI,
		ColumnsToFields: make([]spec.InputFieldBinding, 0, len(in.Bindings)),
	}
	if in.TimeRange != nil {
		doc.TimeRange = &spec.TimeRange{MinTimestamp: in.TimeRange.Min, MaxTimestamp: in.TimeRange.Max}
	}
	for _, b := range in.Bindings {
		doc.ColumnsToFields = append(doc.ColumnsToFields, spec.InputFieldBinding{
			TupleFieldName: b.Field,
			Column:         columnInputDocument(b.Column),
		})
	}
	return doc
}

func kijiColumnOutputDocument(out KijiColumnOutput) *spec.KijiSingleColumnOutputSpec {
	return &spec.KijiSingleColumnOutputSpec{
		TableURI: out.TableURI,
		OutputColumn: &spec.QualifiedColumnOutputSpec{
			Family:     out.Column.Family,
			Qualifier:  out.Column.Qualifier,
			SchemaSpec: schemaDocument(out.Column.Schema),
		},
	}
}

func columnInputDocument(c ColumnInput) *spec.ColumnInputSpec {
	switch v := c.(type) {
	case QualifiedColumnInput:
		return &spec.ColumnInputSpec{QualifiedColumn: &spec.QualifiedColumnInputSpec{
			Family:      v.Family,
			Qualifier:   v.Qualifier,
			MaxVersions: v.Read.MaxVersions,
			Filter:      filterDocument(v.Read.Filter),
			PageSize:    v.Read.PageSize,
			SchemaSpec:  schemaDocument(v.Read.Schema),
		}}
	case FamilyColumnInput:
		return &spec.ColumnInputSpec{ColumnFamily: &spec.ColumnFamilyInputSpec{
			Family:      v.Family,
			MaxVersions: v.Read.MaxVersions,
			Filter:      filterDocument(v.Read.Filter),
			PageSize:    v.Read.PageSize,
			SchemaSpec:  schemaDocument(v.Read.Schema),
		}}
	}
	return nil
}

func columnOutputDocument(c ColumnOutput) *spec.ColumnOutputSpec {
	switch v := c.(type) {
	case QualifiedColumnOutput:
		return &spec.ColumnOutputSpec{QualifiedColumn: &spec.QualifiedColumnOutputSpec{
			Family:     v.Family,
			Qualifier:  v.Qualifier,
			SchemaSpec: schemaDocument(v.Schema),
		}}
	case FamilyColumnOutput:
		return &spec.ColumnOutputSpec{ColumnFamily: &spec.ColumnFamilyOutputSpec{
			Family:            v.Family,
			QualifierSelector: v.QualifierSelector,
			SchemaSpec:        schemaDocument(v.Schema),
		}}
	}
	return nil
}

func filterDocument(f Filter) *spec.Filter {
	switch v := f.(type) {
	case AndFilter:
		return &spec.Filter{AndFilter: filterChildren(v.Children)}
	case OrFilter:
		return &spec.Filter{OrFilter: filterChildren(v.Children)}
	case RangeFilter:
		return &spec.Filter{RangeFilter: &spec.ColumnRangeFilter{
			MinQualifier:          optional(v.MinQualifier),
			MinQualifierInclusive: v.MinQualifierInclusive,
			MaxQualifier:          optional(v.MaxQualifier),
			MaxQualifierInclusive: v.MaxQualifierInclusive,
		}}
	case RegexFilter:
		return &spec.Filter{RegexFilter: &spec.RegexQualifierFilter{Regex: v.Pattern}}
	}
	return nil
}

func filterChildren(children []Filter) []spec.Filter {
	out := make([]spec.Filter, 0, len(children))
	for _, c := range children {
		if doc := filterDocument(c); doc != nil {
			out = append(out, *doc)
		}
	}
	return out
}

func schemaDocument(s SchemaSpec) *spec.SchemaSpec {
	switch v := s.(type) {
	case WriterSchema:
		return &spec.SchemaSpec{}
	case DefaultReaderSchema:
		return &spec.SchemaSpec{DefaultReader: true}
	case GenericSchema:
		return &spec.SchemaSpec{Generic: optional(v.Name)}
	case SpecificSchema:
		return &spec.SchemaSpec{Specific: &spec.SpecificSchema{ClassName: v.ClassName, Schema: v.Schema}}
	}
	return nil
}

func storesDocument(stores []KVStore) []spec.KVStore {
	out := make([]spec.KVStore, 0, len(stores))
	for _, s := range stores {
		props := make([]spec.Property, 0, len(s.Properties))
		for _, p := range s.Properties {
			props = append(props, spec.Property{Name: p.Name, Value: p.Value})
		}
		out = append(out, spec.KVStore{StoreType: string(s.Type), Name: s.Name, Properties: props})
	}
	return out
}
