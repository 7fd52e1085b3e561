package spec

import "math"

// EnvironmentProtocolVersion is the protocol version written by, and the only
// one accepted for, model environment documents.
const EnvironmentProtocolVersion = "model_environment-0.4.0"

// Document defaults applied when a field is absent from the tree.
const (
	DefaultMaxVersions  int32 = 1
	DefaultPageSize     int32 = 0
	DefaultMinTimestamp int64 = 0
	DefaultMaxTimestamp int64 = math.MaxInt64
)

// Store types accepted in KVStore.StoreType.
const (
	StoreTypeAvroKV     = "AVRO_KV"
	StoreTypeAvroRecord = "AVRO_RECORD"
	StoreTypeKijiTable  = "KIJI_TABLE"
	StoreTypeTextFile   = "TEXT_FILE"
)

// ModelEnvironment binds the phases of a model definition to concrete
// sources, sinks and key-value stores.
type ModelEnvironment struct {
	ProtocolVersion     string            `mapstructure:"protocol_version" yaml:"protocol_version"`
	Name                string            `mapstructure:"name" yaml:"name"`
	Version             string            `mapstructure:"version" yaml:"version"`
	PrepareEnvironment  *PhaseEnvironment `mapstructure:"prepare_environment" yaml:"prepare_environment,omitempty"`
	TrainEnvironment    *PhaseEnvironment `mapstructure:"train_environment" yaml:"train_environment,omitempty"`
	ScoreEnvironment    *ScoreEnvironment `mapstructure:"score_environment" yaml:"score_environment,omitempty"`
	EvaluateEnvironment *PhaseEnvironment `mapstructure:"evaluate_environment" yaml:"evaluate_environment,omitempty"`
}

// PhaseEnvironment is the shape shared by the prepare, train and evaluate
// phases: named inputs, named outputs and key-value stores.
type PhaseEnvironment struct {
	InputSpec  map[string]InputSpec  `mapstructure:"input_spec" yaml:"input_spec"`
	OutputSpec map[string]OutputSpec `mapstructure:"output_spec" yaml:"output_spec"`
	KVStores   []KVStore             `mapstructure:"kv_stores" yaml:"kv_stores"`
}

// ScoreEnvironment reads a single Kiji row and writes a single column.
type ScoreEnvironment struct {
	InputSpec  *KijiInputSpec              `mapstructure:"input_spec" yaml:"input_spec,omitempty"`
	OutputSpec *KijiSingleColumnOutputSpec `mapstructure:"output_spec" yaml:"output_spec,omitempty"`
	KVStores   []KVStore                   `mapstructure:"kv_stores" yaml:"kv_stores"`
}

// InputSpec is a union: exactly one field should be set.
type InputSpec struct {
	KijiSpecification         *KijiInputSpec          `mapstructure:"kiji_specification" yaml:"kiji_specification,omitempty"`
	TextSpecification         *TextSourceSpec         `mapstructure:"text_specification" yaml:"text_specification,omitempty"`
	SequenceFileSpecification *SequenceFileSourceSpec `mapstructure:"sequence_file_specification" yaml:"sequence_file_specification,omitempty"`
}

// OutputSpec is a union: exactly one field should be set.
type OutputSpec struct {
	KijiSpecification         *KijiOutputSpec             `mapstructure:"kiji_specification" yaml:"kiji_specification,omitempty"`
	KijiColumnSpecification   *KijiSingleColumnOutputSpec `mapstructure:"kiji_column_specification" yaml:"kiji_column_specification,omitempty"`
	TextSpecification         *TextSourceSpec             `mapstructure:"text_specification" yaml:"text_specification,omitempty"`
	SequenceFileSpecification *SequenceFileSourceSpec     `mapstructure:"sequence_file_specification" yaml:"sequence_file_specification,omitempty"`
}

// KijiInputSpec reads columns of a Kiji table into tuple fields.
type KijiInputSpec struct {
	TableURI        string              `mapstructure:"table_uri" yaml:"table_uri"`
	TimeRange       *TimeRange          `mapstructure:"time_range" yaml:"time_range,omitempty"`
	ColumnsToFields []InputFieldBinding `mapstructure:"columns_to_fields" yaml:"columns_to_fields"`
}

// KijiOutputSpec writes tuple fields to columns of a Kiji table.
type KijiOutputSpec struct {
	TableURI        string               `mapstructure:"table_uri" yaml:"table_uri"`
	TimestampField  *string              `mapstructure:"timestamp_field" yaml:"timestamp_field,omitempty"`
	FieldsToColumns []OutputFieldBinding `mapstructure:"fields_to_columns" yaml:"fields_to_columns"`
}

// KijiSingleColumnOutputSpec writes one value to one fully-qualified column.
type KijiSingleColumnOutputSpec struct {
	TableURI     string                     `mapstructure:"table_uri" yaml:"table_uri"`
	OutputColumn *QualifiedColumnOutputSpec `mapstructure:"output_column" yaml:"output_column,omitempty"`
}

// TextSourceSpec is a line-oriented text file.
type TextSourceSpec struct {
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
}

// SequenceFileSourceSpec is a Hadoop sequence file.
type SequenceFileSourceSpec struct {
	FilePath   string  `mapstructure:"file_path" yaml:"file_path"`
	KeyField   *string `mapstructure:"key_field" yaml:"key_field,omitempty"`
	ValueField *string `mapstructure:"value_field" yaml:"value_field,omitempty"`
}

// TimeRange bounds the cell timestamps read from a table.
type TimeRange struct {
	MinTimestamp int64 `mapstructure:"min_timestamp" yaml:"min_timestamp"`
	MaxTimestamp int64 `mapstructure:"max_timestamp" yaml:"max_timestamp"`
}

// InputFieldBinding reads one column (or family) into one tuple field.
type InputFieldBinding struct {
	TupleFieldName string           `mapstructure:"tuple_field_name" yaml:"tuple_field_name"`
	Column         *ColumnInputSpec `mapstructure:"column" yaml:"column,omitempty"`
}

// OutputFieldBinding writes one tuple field into one column (or family).
type OutputFieldBinding struct {
	TupleFieldName string            `mapstructure:"tuple_field_name" yaml:"tuple_field_name"`
	Column         *ColumnOutputSpec `mapstructure:"column" yaml:"column,omitempty"`
}

// ColumnInputSpec is a union: exactly one field should be set.
type ColumnInputSpec struct {
	QualifiedColumn *QualifiedColumnInputSpec `mapstructure:"qualified_column" yaml:"qualified_column,omitempty"`
	ColumnFamily    *ColumnFamilyInputSpec    `mapstructure:"column_family" yaml:"column_family,omitempty"`
}

// QualifiedColumnInputSpec reads a single family:qualifier column.
type QualifiedColumnInputSpec struct {
	Family      string      `mapstructure:"family" yaml:"family"`
	Qualifier   string      `mapstructure:"qualifier" yaml:"qualifier"`
	MaxVersions int32       `mapstructure:"max_versions" yaml:"max_versions"`
	Filter      *Filter     `mapstructure:"filter" yaml:"filter,omitempty"`
	PageSize    int32       `mapstructure:"page_size" yaml:"page_size"`
	SchemaSpec  *SchemaSpec `mapstructure:"schema_spec" yaml:"schema_spec,omitempty"`
}

// ColumnFamilyInputSpec reads every qualifier of a map-type family.
type ColumnFamilyInputSpec struct {
	Family      string      `mapstructure:"family" yaml:"family"`
	MaxVersions int32       `mapstructure:"max_versions" yaml:"max_versions"`
	Filter      *Filter     `mapstructure:"filter" yaml:"filter,omitempty"`
	PageSize    int32       `mapstructure:"page_size" yaml:"page_size"`
	SchemaSpec  *SchemaSpec `mapstructure:"schema_spec" yaml:"schema_spec,omitempty"`
}

// ColumnOutputSpec is a union: exactly one field should be set.
type ColumnOutputSpec struct {
	QualifiedColumn *QualifiedColumnOutputSpec `mapstructure:"qualified_column" yaml:"qualified_column,omitempty"`
	ColumnFamily    *ColumnFamilyOutputSpec    `mapstructure:"column_family" yaml:"column_family,omitempty"`
}

// QualifiedColumnOutputSpec writes to a single family:qualifier column.
type QualifiedColumnOutputSpec struct {
	Family     string      `mapstructure:"family" yaml:"family"`
	Qualifier  string      `mapstructure:"qualifier" yaml:"qualifier"`
	SchemaSpec *SchemaSpec `mapstructure:"schema_spec" yaml:"schema_spec,omitempty"`
}

// ColumnFamilyOutputSpec writes to a map-type family, taking the qualifier
// from the named tuple field.
type ColumnFamilyOutputSpec struct {
	Family            string      `mapstructure:"family" yaml:"family"`
	QualifierSelector string      `mapstructure:"qualifier_selector" yaml:"qualifier_selector"`
	SchemaSpec        *SchemaSpec `mapstructure:"schema_spec" yaml:"schema_spec,omitempty"`
}

// Filter is a union: exactly one field should be set. And/or filters nest.
//
// The source documentation describes and_filter as dropping cells that pass
// none of the children and or_filter as dropping cells that fail any of them,
// which is inverted with respect to the names. Evaluation is left to the
// execution engines; only the structure is checked here.
type Filter struct {
	AndFilter   []Filter              `mapstructure:"and_filter" yaml:"and_filter,omitempty"`
	OrFilter    []Filter              `mapstructure:"or_filter" yaml:"or_filter,omitempty"`
	RangeFilter *ColumnRangeFilter    `mapstructure:"range_filter" yaml:"range_filter,omitempty"`
	RegexFilter *RegexQualifierFilter `mapstructure:"regex_filter" yaml:"regex_filter,omitempty"`
}

// ColumnRangeFilter keeps qualifiers within [min, max], each bound optional.
type ColumnRangeFilter struct {
	MinQualifier          *string `mapstructure:"min_qualifier" yaml:"min_qualifier,omitempty"`
	MinQualifierInclusive bool    `mapstructure:"min_qualifier_inclusive" yaml:"min_qualifier_inclusive"`
	MaxQualifier          *string `mapstructure:"max_qualifier" yaml:"max_qualifier,omitempty"`
	MaxQualifierInclusive bool    `mapstructure:"max_qualifier_inclusive" yaml:"max_qualifier_inclusive"`
}

// RegexQualifierFilter keeps qualifiers matching a regular expression.
type RegexQualifierFilter struct {
	Regex string `mapstructure:"regex" yaml:"regex"`
}

// SchemaSpec selects the reader schema for a column. DefaultReader, Generic
// and Specific are mutually exclusive; none set means the writer schema.
type SchemaSpec struct {
	DefaultReader bool            `mapstructure:"default_reader" yaml:"default_reader"`
	Generic       *string         `mapstructure:"generic" yaml:"generic,omitempty"`
	Specific      *SpecificSchema `mapstructure:"specific" yaml:"specific,omitempty"`
}

// SpecificSchema reads with a generated record class.
type SpecificSchema struct {
	ClassName string `mapstructure:"class_name" yaml:"class_name"`
	Schema    string `mapstructure:"schema" yaml:"schema"`
}

// KVStore configures an auxiliary lookup store available to a phase.
type KVStore struct {
	StoreType  string     `mapstructure:"store_type" yaml:"store_type"`
	Name       string     `mapstructure:"name" yaml:"name"`
	Properties []Property `mapstructure:"properties" yaml:"properties"`
}

// Property is a single store configuration entry.
type Property struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Value string `mapstructure:"value" yaml:"value"`
}
