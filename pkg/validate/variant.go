package validate

import (
	"regexp"

	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

// filter validates a filter tree depth-first. Empty and_filter/or_filter
// sequences count as unset, so a filter holding only an empty sequence is a
// MissingVariant.
func filter(r *report, path Path, f *spec.Filter) (model.Filter, bool) {
	which, ok := r.pick(path, "filter",
		variant{"and_filter", len(f.AndFilter) > 0},
		variant{"or_filter", len(f.OrFilter) > 0},
		variant{"range_filter", f.RangeFilter != nil},
		variant{"regex_filter", f.RegexFilter != nil},
	)
	if !ok {
		return nil, false
	}

	switch which {
	case "and_filter":
		children, ok := filterChildren(r, path.Field("and_filter"), f.AndFilter)
		if !ok {
			return nil, false
		}
		return model.AndFilter{Children: children}, true
	case "or_filter":
		children, ok := filterChildren(r, path.Field("or_filter"), f.OrFilter)
		if !ok {
			return nil, false
		}
		return model.OrFilter{Children: children}, true
	case "range_filter":
		return rangeFilter(r, path.Field("range_filter"), f.RangeFilter)
	default:
		return regexFilter(r, path.Field("regex_filter"), f.RegexFilter)
	}
}

func filterChildren(r *report, path Path, docs []spec.Filter) ([]model.Filter, bool) {
	mark := r.mark()
	children := make([]model.Filter, 0, len(docs))
	for i := range docs {
		if r.halted() {
			break
		}
		if child, ok := filter(r, path.Index(i), &docs[i]); ok {
			children = append(children, child)
		}
	}
	return children, r.clean(mark)
}

func rangeFilter(r *report, path Path, f *spec.ColumnRangeFilter) (model.Filter, bool) {
	out := model.RangeFilter{
		MinQualifierInclusive: f.MinQualifierInclusive,
		MaxQualifierInclusive: f.MaxQualifierInclusive,
	}
	if f.MinQualifier != nil {
		out.MinQualifier = *f.MinQualifier
	}
	if f.MaxQualifier != nil {
		out.MaxQualifier = *f.MaxQualifier
	}
	if out.MinQualifier == "" || out.MaxQualifier == "" {
		return out, true
	}
	switch {
	case out.MinQualifier > out.MaxQualifier:
		r.addf(path, InvalidValue, "min_qualifier %q sorts after max_qualifier %q", out.MinQualifier, out.MaxQualifier)
		return nil, false
	case out.MinQualifier == out.MaxQualifier && !(out.MinQualifierInclusive && out.MaxQualifierInclusive):
		r.addf(path, InvalidValue, "qualifier range [%s, %s] with an exclusive bound selects nothing", out.MinQualifier, out.MaxQualifier)
		return nil, false
	}
	return out, true
}

func regexFilter(r *report, path Path, f *spec.RegexQualifierFilter) (model.Filter, bool) {
	if !r.requireIdentifier(path.Field("regex"), f.Regex) {
		return nil, false
	}
	if _, err := regexp.Compile(f.Regex); err != nil {
		r.addf(path.Field("regex"), InvalidValue, "regex does not compile: %v", err)
		return nil, false
	}
	return model.RegexFilter{Pattern: f.Regex}, true
}

// schemaSpec validates an optional schema spec. A nil spec yields nil; a
// spec with nothing set selects the writer schema.
func schemaSpec(r *report, path Path, s *spec.SchemaSpec) (model.SchemaSpec, bool) {
	if s == nil {
		return nil, true
	}
	set := 0
	for _, b := range []bool{s.DefaultReader, s.Generic != nil, s.Specific != nil} {
		if b {
			set++
		}
	}
	if set > 1 {
		_, _ = r.pick(path, "schema_spec",
			variant{"default_reader", s.DefaultReader},
			variant{"generic", s.Generic != nil},
			variant{"specific", s.Specific != nil},
		)
		return nil, false
	}

	switch {
	case s.DefaultReader:
		return model.DefaultReaderSchema{}, true
	case s.Generic != nil:
		if !r.requireIdentifier(path.Field("generic"), *s.Generic) {
			return nil, false
		}
		return model.GenericSchema{Name: *s.Generic}, true
	case s.Specific != nil:
		if !r.requireIdentifier(path.Field("specific").Field("class_name"), s.Specific.ClassName) {
			return nil, false
		}
		return model.SpecificSchema{ClassName: s.Specific.ClassName, Schema: s.Specific.Schema}, true
	}
	return model.WriterSchema{}, true
}

// columnInput validates the column union of an input binding.
func columnInput(r *report, path Path, c *spec.ColumnInputSpec) (model.ColumnInput, bool) {
	if c == nil {
		c = &spec.ColumnInputSpec{}
	}
	which, ok := r.pick(path, "column",
		variant{"qualified_column", c.QualifiedColumn != nil},
		variant{"column_family", c.ColumnFamily != nil},
	)
	if !ok {
		return nil, false
	}

	mark := r.mark()
	if which == "qualified_column" {
		q := c.QualifiedColumn
		p := path.Field("qualified_column")
		r.requireIdentifier(p.Field("family"), q.Family)
		r.requireIdentifier(p.Field("qualifier"), q.Qualifier)
		read := readOptions(r, p, q.MaxVersions, q.Filter, q.PageSize, q.SchemaSpec)
		if !r.clean(mark) {
			return nil, false
		}
		return model.QualifiedColumnInput{Family: q.Family, Qualifier: q.Qualifier, Read: read}, true
	}

	f := c.ColumnFamily
	p := path.Field("column_family")
	r.requireIdentifier(p.Field("family"), f.Family)
	read := readOptions(r, p, f.MaxVersions, f.Filter, f.PageSize, f.SchemaSpec)
	if !r.clean(mark) {
		return nil, false
	}
	return model.FamilyColumnInput{Family: f.Family, Read: read}, true
}

func readOptions(r *report, path Path, maxVersions int32, f *spec.Filter, pageSize int32, s *spec.SchemaSpec) model.ReadOptions {
	read := model.ReadOptions{MaxVersions: maxVersions, PageSize: pageSize}
	if maxVersions < 1 {
		r.addf(path.Field("max_versions"), InvalidValue, "max_versions must be at least 1, got %d", maxVersions)
	}
	if pageSize < 0 {
		r.addf(path.Field("page_size"), InvalidValue, "page_size must not be negative, got %d", pageSize)
	}
	if f != nil && !r.halted() {
		read.Filter, _ = filter(r, path.Field("filter"), f)
	}
	if !r.halted() {
		read.Schema, _ = schemaSpec(r, path.Field("schema_spec"), s)
	}
	return read
}

// columnOutput validates the column union of an output binding.
func columnOutput(r *report, path Path, c *spec.ColumnOutputSpec) (model.ColumnOutput, bool) {
	if c == nil {
		c = &spec.ColumnOutputSpec{}
	}
	which, ok := r.pick(path, "column",
		variant{"qualified_column", c.QualifiedColumn != nil},
		variant{"column_family", c.ColumnFamily != nil},
	)
	if !ok {
		return nil, false
	}

	if which == "qualified_column" {
		out, ok := qualifiedColumnOutput(r, path.Field("qualified_column"), c.QualifiedColumn)
		if !ok {
			return nil, false
		}
		return out, true
	}

	mark := r.mark()
	f := c.ColumnFamily
	p := path.Field("column_family")
	r.requireIdentifier(p.Field("family"), f.Family)
	r.requireIdentifier(p.Field("qualifier_selector"), f.QualifierSelector)
	schema, _ := schemaSpec(r, p.Field("schema_spec"), f.SchemaSpec)
	if !r.clean(mark) {
		return nil, false
	}
	return model.FamilyColumnOutput{Family: f.Family, QualifierSelector: f.QualifierSelector, Schema: schema}, true
}

func qualifiedColumnOutput(r *report, path Path, q *spec.QualifiedColumnOutputSpec) (model.QualifiedColumnOutput, bool) {
	mark := r.mark()
	r.requireIdentifier(path.Field("family"), q.Family)
	r.requireIdentifier(path.Field("qualifier"), q.Qualifier)
	schema, _ := schemaSpec(r, path.Field("schema_spec"), q.SchemaSpec)
	if !r.clean(mark) {
		return model.QualifiedColumnOutput{}, false
	}
	return model.QualifiedColumnOutput{Family: q.Family, Qualifier: q.Qualifier, Schema: schema}, true
}
