package model

import "fmt"

// ReadOptions control how cells of an input column are fetched.
type ReadOptions struct {
	MaxVersions int32
	Filter      Filter     // nil when unfiltered
	PageSize    int32      // 0 disables paging
	Schema      SchemaSpec // nil when the document left it unset
}

// ColumnInput is a column read into a tuple field. Implementations:
// QualifiedColumnInput, FamilyColumnInput.
type ColumnInput interface {
	ColumnName() string
	ReadOptions() ReadOptions
	isColumnInput()
}

// QualifiedColumnInput reads one family:qualifier column.
type QualifiedColumnInput struct {
	Family    string
	Qualifier string
	Read      ReadOptions
}

// FamilyColumnInput reads every qualifier of a map-type family.
type FamilyColumnInput struct {
	Family string
	Read   ReadOptions
}

func (c QualifiedColumnInput) ColumnName() string { return fmt.Sprintf("%s:%s", c.Family, c.Qualifier) }
func (c FamilyColumnInput) ColumnName() string    { return c.Family }

func (c QualifiedColumnInput) ReadOptions() ReadOptions { return c.Read }
func (c FamilyColumnInput) ReadOptions() ReadOptions    { return c.Read }

func (QualifiedColumnInput) isColumnInput() {}
func (FamilyColumnInput) isColumnInput()    {}

// ColumnOutput is a column a tuple field is written to. Implementations:
// QualifiedColumnOutput, FamilyColumnOutput.
type ColumnOutput interface {
	ColumnName() string
	SchemaSpec() SchemaSpec
	isColumnOutput()
}

// QualifiedColumnOutput writes to one family:qualifier column.
type QualifiedColumnOutput struct {
	Family    string
	Qualifier string
	Schema    SchemaSpec
}

// FamilyColumnOutput writes to a map-type family; the qualifier is taken from
// the tuple field named by QualifierSelector.
type FamilyColumnOutput struct {
	Family            string
	QualifierSelector string
	Schema            SchemaSpec
}

func (c QualifiedColumnOutput) ColumnName() string {
	return fmt.Sprintf("%s:%s", c.Family, c.Qualifier)
}
func (c FamilyColumnOutput) ColumnName() string { return c.Family }

func (c QualifiedColumnOutput) SchemaSpec() SchemaSpec { return c.Schema }
func (c FamilyColumnOutput) SchemaSpec() SchemaSpec    { return c.Schema }

func (QualifiedColumnOutput) isColumnOutput() {}
func (FamilyColumnOutput) isColumnOutput()    {}

// InputBinding reads Column into the tuple field Field.
type InputBinding struct {
	Field  string
	Column ColumnInput
}

// OutputBinding writes the tuple field Field into Column.
type OutputBinding struct {
	Field  string
	Column ColumnOutput
}
