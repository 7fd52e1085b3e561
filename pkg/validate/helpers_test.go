package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelspec/internal/testutil"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

func newTestValidator(t *testing.T, policy Policy) *Validator {
	t.Helper()
	return New(Config{Policy: policy, Logger: testutil.NewTestLogger(t)})
}

func qualifiedInput(field, family, qualifier string) map[string]any {
	return map[string]any{
		"tuple_field_name": field,
		"column": map[string]any{
			"qualified_column": map[string]any{
				"family":    family,
				"qualifier": qualifier,
			},
		},
	}
}

func qualifiedOutput(field, family, qualifier string) map[string]any {
	return map[string]any{
		"tuple_field_name": field,
		"column": map[string]any{
			"qualified_column": map[string]any{
				"family":    family,
				"qualifier": qualifier,
			},
		},
	}
}

func kijiSource(table string, bindings ...any) map[string]any {
	return map[string]any{
		"kiji_specification": map[string]any{
			"table_uri":         table,
			"columns_to_fields": bindings,
		},
	}
}

func kijiSink(table string, bindings ...any) map[string]any {
	return map[string]any{
		"kiji_specification": map[string]any{
			"table_uri":         table,
			"fields_to_columns": bindings,
		},
	}
}

// scoreEnvironment is the minimal valid score-only environment.
func scoreEnvironment() map[string]any {
	return map[string]any{
		"protocol_version": spec.EnvironmentProtocolVersion,
		"name":             "churn",
		"version":          "1.0.0",
		"score_environment": map[string]any{
			"input_spec": map[string]any{
				"table_uri": "kiji://.env/default/users",
				"columns_to_fields": []any{
					qualifiedInput("user_id", "info", "id"),
					qualifiedInput("visits", "stats", "visits"),
				},
			},
			"output_spec": map[string]any{
				"table_uri": "kiji://.env/default/users",
				"output_column": map[string]any{
					"family":    "model",
					"qualifier": "churn_score",
				},
			},
			"kv_stores": []any{},
		},
	}
}

// trainEnvironment is a valid environment with a train phase reading from
// Kiji and text, writing to Kiji.
func trainEnvironment() map[string]any {
	return map[string]any{
		"name":    "churn",
		"version": "1.0.0",
		"train_environment": map[string]any{
			"input_spec": map[string]any{
				"users": kijiSource("kiji://.env/default/users",
					qualifiedInput("user_id", "info", "id"),
					qualifiedInput("visits", "stats", "visits"),
				),
				"labels": map[string]any{
					"text_specification": map[string]any{"file_path": "/data/labels.txt"},
				},
			},
			"output_spec": map[string]any{
				"sink1": kijiSink("kiji://.env/default/models",
					qualifiedOutput("user_id", "model", "user"),
					qualifiedOutput("weights", "model", "weights"),
				),
			},
			"kv_stores": []any{
				map[string]any{
					"store_type": "KIJI_TABLE",
					"name":       "profiles",
					"properties": []any{
						map[string]any{"name": "uri", "value": "kiji://.env/default/profiles"},
						map[string]any{"name": "column", "value": "info:profile"},
					},
				},
			},
		},
	}
}

// dig walks nested maps and slices to reach a subtree for mutation.
func dig(t *testing.T, tree map[string]any, keys ...any) map[string]any {
	t.Helper()
	var cur any = tree
	for _, k := range keys {
		switch key := k.(type) {
		case string:
			m, ok := cur.(map[string]any)
			require.True(t, ok, "expected map at %v", key)
			cur = m[key]
		case int:
			s, ok := cur.([]any)
			require.True(t, ok, "expected slice at %v", key)
			cur = s[key]
		}
	}
	m, ok := cur.(map[string]any)
	require.True(t, ok, "expected map at end of %v", keys)
	return m
}

func decodeEnv(t *testing.T, tree map[string]any) *spec.ModelEnvironment {
	t.Helper()
	doc, err := spec.DecodeEnvironment(tree)
	require.NoError(t, err)
	return doc
}

func decodeDef(t *testing.T, tree map[string]any) *spec.ModelDefinition {
	t.Helper()
	doc, err := spec.DecodeDefinition(tree)
	require.NoError(t, err)
	return doc
}

func requireErrors(t *testing.T, err error) ErrorList {
	t.Helper()
	require.Error(t, err)
	errs := Errors(err)
	require.NotEmpty(t, errs, "expected validation errors, got %v", err)
	return errs
}
