package spec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// defaults lists, per record type, the values filled in for keys that are
// absent from the tree. Keys present with a null value are left alone so the
// validators can see them.
var defaults = map[reflect.Type]map[string]any{
	reflect.TypeOf(ModelDefinition{}): {
		"protocol_version": DefinitionProtocolVersion,
	},
	reflect.TypeOf(ModelEnvironment{}): {
		"protocol_version": EnvironmentProtocolVersion,
	},
	reflect.TypeOf(QualifiedColumnInputSpec{}): {
		"max_versions": DefaultMaxVersions,
		"page_size":    DefaultPageSize,
	},
	reflect.TypeOf(ColumnFamilyInputSpec{}): {
		"max_versions": DefaultMaxVersions,
		"page_size":    DefaultPageSize,
	},
	reflect.TypeOf(TimeRange{}): {
		"min_timestamp": DefaultMinTimestamp,
		"max_timestamp": DefaultMaxTimestamp,
	},
}

// defaultsHook injects record defaults before mapstructure decodes a map
// into one of the types listed in defaults.
func defaultsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	for to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	fill, ok := defaults[to]
	if !ok {
		return data, nil
	}
	tree, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	var out map[string]any
	for key, value := range fill {
		if _, present := tree[key]; present {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(tree)+len(fill))
			for k, v := range tree {
				out[k] = v
			}
		}
		out[key] = value
	}
	if out == nil {
		return data, nil
	}
	return out, nil
}

// integerHook converts numbers bound for signed integer fields, rejecting
// values the field cannot hold and fractional floats. Trees decoded from JSON
// carry every number as float64; 2^63, the float64 nearest to
// math.MaxInt64, is read as math.MaxInt64 for 64-bit fields.
func integerHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	bits := to.Bits()
	lo := int64(-1) << (bits - 1)
	hi := -(lo + 1)

	var n int64
	switch v := data.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		return checkUnsigned(uint64(v), bits, hi)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		return checkUnsigned(v, bits, hi)
	case float32:
		return convertFloat(float64(v), bits, lo, hi)
	case float64:
		return convertFloat(v, bits, lo, hi)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s is not a %d-bit integer", v, bits)
		}
		n = i
	default:
		return data, nil
	}
	if n < lo || n > hi {
		return nil, fmt.Errorf("%d is out of range for a %d-bit integer", n, bits)
	}
	return n, nil
}

func checkUnsigned(v uint64, bits int, hi int64) (any, error) {
	if v > uint64(hi) {
		return nil, fmt.Errorf("%d is out of range for a %d-bit integer", v, bits)
	}
	return int64(v), nil
}

func convertFloat(f float64, bits int, lo, hi int64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	if bits == 64 && f == math.Ldexp(1, 63) {
		return int64(math.MaxInt64), nil
	}
	if f < float64(lo) || f >= -float64(lo) {
		return nil, fmt.Errorf("%.0f is out of range for a %d-bit integer", f, bits)
	}
	n := int64(f)
	if n < lo || n > hi {
		return nil, fmt.Errorf("%d is out of range for a %d-bit integer", n, bits)
	}
	return n, nil
}

func decode(tree map[string]any, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(defaultsHook, integerHook),
		ErrorUnused: true,
		TagName:     "mapstructure",
		Result:      result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(tree)
}

// DecodeEnvironment decodes a generic tree into a ModelEnvironment record,
// filling in document defaults. Unknown keys are rejected.
func DecodeEnvironment(tree map[string]any) (*ModelEnvironment, error) {
	var env ModelEnvironment
	if err := decode(tree, &env); err != nil {
		return nil, fmt.Errorf("failed to decode model environment: %w", err)
	}
	return &env, nil
}

// DecodeDefinition decodes a generic tree into a ModelDefinition record,
// filling in document defaults. Unknown keys are rejected.
func DecodeDefinition(tree map[string]any) (*ModelDefinition, error) {
	var def ModelDefinition
	if err := decode(tree, &def); err != nil {
		return nil, fmt.Errorf("failed to decode model definition: %w", err)
	}
	return &def, nil
}

// Tree converts a record back into the generic tree form accepted by the
// Decode functions.
func Tree(record any) (map[string]any, error) {
	raw, err := yaml.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to re-read encoded record: %w", err)
	}
	return tree, nil
}
