package model

// SchemaKind identifies how a column's cells are decoded.
type SchemaKind string

// Schema kinds.
const (
	SchemaWriter        SchemaKind = "writer"
	SchemaDefaultReader SchemaKind = "default_reader"
	SchemaGeneric       SchemaKind = "generic"
	SchemaSpecific      SchemaKind = "specific"
)

// SchemaSpec selects the reader schema for a column. Implementations:
// WriterSchema, DefaultReaderSchema, GenericSchema, SpecificSchema.
type SchemaSpec interface {
	SchemaKind() SchemaKind
	isSchemaSpec()
}

// WriterSchema decodes cells with the schema they were written with.
type WriterSchema struct{}

// DefaultReaderSchema decodes cells with the column's default reader schema.
type DefaultReaderSchema struct{}

// GenericSchema decodes cells as generic records of the named schema.
type GenericSchema struct {
	Name string
}

// SpecificSchema decodes cells into a generated record class.
type SpecificSchema struct {
	ClassName string
	Schema    string
}

func (WriterSchema) SchemaKind() SchemaKind        { return SchemaWriter }
func (DefaultReaderSchema) SchemaKind() SchemaKind { return SchemaDefaultReader }
func (GenericSchema) SchemaKind() SchemaKind       { return SchemaGeneric }
func (SpecificSchema) SchemaKind() SchemaKind      { return SchemaSpecific }

func (WriterSchema) isSchemaSpec()        {}
func (DefaultReaderSchema) isSchemaSpec() {}
func (GenericSchema) isSchemaSpec()       {}
func (SpecificSchema) isSchemaSpec()      {}
