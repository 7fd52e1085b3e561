package model

// SourceKind identifies the variant of an InputSpec or OutputSpec.
type SourceKind string

// Source and sink variants.
const (
	SourceKiji         SourceKind = "kiji"
	SourceKijiColumn   SourceKind = "kiji_column"
	SourceText         SourceKind = "text"
	SourceSequenceFile SourceKind = "sequence_file"
)

// TimeRange bounds cell timestamps; Min < Max always holds.
type TimeRange struct {
	Min int64
	Max int64
}

// InputSpec is a data source bound to a phase. Implementations: KijiInput,
// TextInput, SequenceFileInput.
type InputSpec interface {
	SourceKind() SourceKind
	isInputSpec()
}

// OutputSpec is a data sink bound to a phase. Implementations: KijiOutput,
// KijiColumnOutput, TextOutput, SequenceFileOutput.
type OutputSpec interface {
	SourceKind() SourceKind
	isOutputSpec()
}

// KijiInput reads columns of a Kiji table.
type KijiInput struct {
	TableURI  string
	TimeRange *TimeRange
	Bindings  []InputBinding
}

// TextInput reads lines of a text file.
type TextInput struct {
	FilePath string
}

// SequenceFileInput reads key/value pairs of a sequence file.
type SequenceFileInput struct {
	FilePath   string
	KeyField   string // empty when unset
	ValueField string // empty when unset
}

// KijiOutput writes tuple fields to columns of a Kiji table.
type KijiOutput struct {
	TableURI       string
	TimestampField string // empty when unset
	Bindings       []OutputBinding
}

// KijiColumnOutput writes one value to one fully-qualified column.
type KijiColumnOutput struct {
	TableURI string
	Column   QualifiedColumnOutput
}

// TextOutput writes lines to a text file.
type TextOutput struct {
	FilePath string
}

// SequenceFileOutput writes key/value pairs to a sequence file.
type SequenceFileOutput struct {
	FilePath   string
	KeyField   string
	ValueField string
}

func (KijiInput) SourceKind() SourceKind          { return SourceKiji }
func (TextInput) SourceKind() SourceKind          { return SourceText }
func (SequenceFileInput) SourceKind() SourceKind  { return SourceSequenceFile }
func (KijiOutput) SourceKind() SourceKind         { return SourceKiji }
func (KijiColumnOutput) SourceKind() SourceKind   { return SourceKijiColumn }
func (TextOutput) SourceKind() SourceKind         { return SourceText }
func (SequenceFileOutput) SourceKind() SourceKind { return SourceSequenceFile }

func (KijiInput) isInputSpec()         {}
func (TextInput) isInputSpec()         {}
func (SequenceFileInput) isInputSpec() {}

func (KijiOutput) isOutputSpec()         {}
func (KijiColumnOutput) isOutputSpec()   {}
func (TextOutput) isOutputSpec()         {}
func (SequenceFileOutput) isOutputSpec() {}

// StoreType is the backing implementation of a key-value store.
type StoreType string

// Store types.
const (
	StoreAvroKV     StoreType = "AVRO_KV"
	StoreAvroRecord StoreType = "AVRO_RECORD"
	StoreKijiTable  StoreType = "KIJI_TABLE"
	StoreTextFile   StoreType = "TEXT_FILE"
)

// ParseStoreType returns the StoreType for s, reporting whether it is known.
func ParseStoreType(s string) (StoreType, bool) {
	switch t := StoreType(s); t {
	case StoreAvroKV, StoreAvroRecord, StoreKijiTable, StoreTextFile:
		return t, true
	}
	return "", false
}

// Property is a named store setting.
type Property struct {
	Name  string
	Value string
}

// KVStore is an auxiliary lookup store. Property names are unique.
type KVStore struct {
	Type       StoreType
	Name       string
	Properties []Property
}

// Property returns the value of the named property.
func (s KVStore) Property(name string) (string, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}
