package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelspec/pkg/model"
	"github.com/leapstack-labs/modelspec/pkg/spec"
)

const usersColumn = `train_environment.input_spec["users"].kiji_specification.columns_to_fields[0].column.qualified_column`

func TestEnvironment_Scenarios(t *testing.T) {
	t.Run("filter with two variants is ambiguous", func(t *testing.T) {
		tree := trainEnvironment()
		col := dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")
		col["filter"] = map[string]any{
			"and_filter":   []any{map[string]any{"regex_filter": map[string]any{"regex": "^a"}}},
			"range_filter": map[string]any{"min_qualifier": "a"},
		}

		_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
		errs := requireErrors(t, err)

		require.Len(t, errs, 1)
		assert.Equal(t, AmbiguousVariant, errs[0].Kind)
		assert.Equal(t, Path(usersColumn+".filter"), errs[0].Path)
	})

	t.Run("filter with range and regex is ambiguous", func(t *testing.T) {
		tree := trainEnvironment()
		col := dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")
		col["filter"] = map[string]any{
			"range_filter": map[string]any{"min_qualifier": "a", "max_qualifier": "m"},
			"regex_filter": map[string]any{"regex": "^a"},
		}

		_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
		errs := requireErrors(t, err)

		require.Len(t, errs, 1)
		assert.Equal(t, AmbiguousVariant, errs[0].Kind)
		assert.Equal(t, Path(usersColumn+".filter"), errs[0].Path)
	})

	t.Run("field bound by two inputs is a duplicate", func(t *testing.T) {
		tree := trainEnvironment()
		inputs := dig(t, tree, "train_environment", "input_spec")
		inputs["events"] = kijiSource("kiji://.env/default/events",
			qualifiedInput("user_id", "info", "uid"),
		)

		_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
		errs := requireErrors(t, err)

		require.Len(t, errs, 1)
		assert.Equal(t, DuplicateBinding, errs[0].Kind)
		// "events" sorts first, so the binding in "users" is the duplicate.
		assert.Equal(t, Path(`train_environment.input_spec["users"].kiji_specification.columns_to_fields[0].tuple_field_name`), errs[0].Path)
		assert.Contains(t, errs[0].Message, `"user_id"`)
	})

	t.Run("time range with min after max", func(t *testing.T) {
		tree := trainEnvironment()
		kiji := dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification")
		kiji["time_range"] = map[string]any{"min_timestamp": 100, "max_timestamp": 50}

		_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
		errs := requireErrors(t, err)

		require.Len(t, errs, 1)
		assert.Equal(t, InvalidTimeRange, errs[0].Kind)
		assert.Equal(t, Path(`train_environment.input_spec["users"].kiji_specification.time_range`), errs[0].Path)
	})

	t.Run("minimal score environment", func(t *testing.T) {
		env, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, scoreEnvironment()))
		require.NoError(t, err)

		assert.Nil(t, env.Prepare)
		assert.Nil(t, env.Train)
		assert.Nil(t, env.Evaluate)
		require.NotNil(t, env.Score)
		assert.True(t, env.Has(model.PhaseScore))

		bindings, ok := env.Bindings(model.PhaseScore)
		require.True(t, ok)
		assert.Equal(t, []string{"user_id", "visits"}, bindings.InputFields())
		assert.Empty(t, bindings.OutputFields())

		userID := bindings.Inputs["user_id"]
		assert.Equal(t, "", userID.Source)
		assert.Equal(t, "kiji://.env/default/users", userID.TableURI)
		assert.Equal(t, model.QualifiedColumnInput{
			Family:    "info",
			Qualifier: "id",
			Read:      model.ReadOptions{MaxVersions: spec.DefaultMaxVersions, PageSize: spec.DefaultPageSize},
		}, userID.Column)

		assert.Equal(t, model.KijiColumnOutput{
			TableURI: "kiji://.env/default/users",
			Column:   model.QualifiedColumnOutput{Family: "model", Qualifier: "churn_score"},
		}, env.Score.Output)
		assert.Empty(t, env.Score.KVStores)
	})
}

func TestEnvironment_TrainPhase(t *testing.T) {
	env, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, trainEnvironment()))
	require.NoError(t, err)

	require.NotNil(t, env.Train)
	assert.Equal(t, spec.EnvironmentProtocolVersion, env.ProtocolVersion)
	assert.Equal(t, []string{"labels", "users"}, env.Train.InputNames())
	assert.Equal(t, []string{"sink1"}, env.Train.OutputNames())
	assert.Equal(t, model.TextInput{FilePath: "/data/labels.txt"}, env.Train.Inputs["labels"])

	// A field may be read from one column and written to another.
	b := env.Train.Bindings
	assert.Equal(t, []string{"user_id", "visits"}, b.InputFields())
	assert.Equal(t, []string{"user_id", "weights"}, b.OutputFields())
	assert.Equal(t, "users", b.Inputs["user_id"].Source)
	assert.Equal(t, "sink1", b.Outputs["user_id"].Sink)
	assert.Equal(t, model.QualifiedColumnOutput{Family: "model", Qualifier: "user"}, b.Outputs["user_id"].Column)

	require.Len(t, env.Train.KVStores, 1)
	store := env.Train.KVStores[0]
	assert.Equal(t, model.StoreKijiTable, store.Type)
	value, ok := store.Property("column")
	assert.True(t, ok)
	assert.Equal(t, "info:profile", value)
}

func TestEnvironment_ProtocolVersion(t *testing.T) {
	tests := []struct {
		name    string
		version any
		wantErr bool
	}{
		{name: "defaulted", version: nil},
		{name: "current", version: "model_environment-0.4.0"},
		{name: "older", version: "model_environment-0.1.0", wantErr: true},
		{name: "wrong document", version: "model_definition-0.4.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := scoreEnvironment()
			delete(tree, "protocol_version")
			if tt.version != nil {
				tree["protocol_version"] = tt.version
			}

			_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			errs := requireErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, UnsupportedProtocolVersion, errs[0].Kind)
			assert.Equal(t, Path("protocol_version"), errs[0].Path)
		})
	}
}

func TestEnvironment_Structure(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, tree map[string]any)
		wantKind Kind
		wantPath string
	}{
		{
			name:     "empty name",
			mutate:   func(_ *testing.T, tree map[string]any) { tree["name"] = "" },
			wantKind: EmptyIdentifier,
			wantPath: "name",
		},
		{
			name: "input spec with no source",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "input_spec")["empty"] = map[string]any{}
			},
			wantKind: MissingVariant,
			wantPath: `train_environment.input_spec["empty"]`,
		},
		{
			name: "input spec with two sources",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "input_spec", "labels")["sequence_file_specification"] = map[string]any{"file_path": "/x"}
			},
			wantKind: AmbiguousVariant,
			wantPath: `train_environment.input_spec["labels"]`,
		},
		{
			name: "binding with no column",
			mutate: func(t *testing.T, tree map[string]any) {
				delete(dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0), "column")
			},
			wantKind: MissingVariant,
			wantPath: `train_environment.input_spec["users"].kiji_specification.columns_to_fields[0].column`,
		},
		{
			name: "empty tuple field name",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "output_spec", "sink1", "kiji_specification", "fields_to_columns", 1)["tuple_field_name"] = ""
			},
			wantKind: EmptyIdentifier,
			wantPath: `train_environment.output_spec["sink1"].kiji_specification.fields_to_columns[1].tuple_field_name`,
		},
		{
			name: "duplicate output field",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "output_spec")["sink2"] = kijiSink("kiji://.env/default/other",
					qualifiedOutput("weights", "model", "w"),
				)
			},
			wantKind: DuplicateBinding,
			wantPath: `train_environment.output_spec["sink2"].kiji_specification.fields_to_columns[0].tuple_field_name`,
		},
		{
			name: "zero max versions",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")["max_versions"] = 0
			},
			wantKind: InvalidValue,
			wantPath: usersColumn + ".max_versions",
		},
		{
			name: "negative page size",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")["page_size"] = -1
			},
			wantKind: InvalidValue,
			wantPath: usersColumn + ".page_size",
		},
		{
			name: "negative min timestamp",
			mutate: func(t *testing.T, tree map[string]any) {
				dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification")["time_range"] = map[string]any{"min_timestamp": -1}
			},
			wantKind: InvalidTimeRange,
			wantPath: `train_environment.input_spec["users"].kiji_specification.time_range.min_timestamp`,
		},
		{
			name: "column family output without selector",
			mutate: func(t *testing.T, tree map[string]any) {
				binding := dig(t, tree, "train_environment", "output_spec", "sink1", "kiji_specification", "fields_to_columns", 1)
				binding["column"] = map[string]any{"column_family": map[string]any{"family": "model"}}
			},
			wantKind: EmptyIdentifier,
			wantPath: `train_environment.output_spec["sink1"].kiji_specification.fields_to_columns[1].column.column_family.qualifier_selector`,
		},
		{
			name: "score without output",
			mutate: func(_ *testing.T, tree map[string]any) {
				delete(tree, "train_environment")
				tree["score_environment"] = scoreEnvironment()["score_environment"]
				delete(tree["score_environment"].(map[string]any), "output_spec")
			},
			wantKind: MissingField,
			wantPath: "score_environment.output_spec",
		},
		{
			name: "score output without column",
			mutate: func(_ *testing.T, tree map[string]any) {
				delete(tree, "train_environment")
				tree["score_environment"] = scoreEnvironment()["score_environment"]
				delete(tree["score_environment"].(map[string]any)["output_spec"].(map[string]any), "output_column")
			},
			wantKind: MissingField,
			wantPath: "score_environment.output_spec.output_column",
		},
		{
			name: "duplicate score input field",
			mutate: func(_ *testing.T, tree map[string]any) {
				delete(tree, "train_environment")
				score := scoreEnvironment()["score_environment"].(map[string]any)
				input := score["input_spec"].(map[string]any)
				input["columns_to_fields"] = append(input["columns_to_fields"].([]any), qualifiedInput("visits", "stats", "v2"))
				tree["score_environment"] = score
			},
			wantKind: DuplicateBinding,
			wantPath: "score_environment.input_spec.columns_to_fields[2].tuple_field_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := trainEnvironment()
			tt.mutate(t, tree)

			env, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
			assert.Nil(t, env)
			errs := requireErrors(t, err)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.wantKind, errs[0].Kind)
			assert.Equal(t, Path(tt.wantPath), errs[0].Path)
		})
	}
}

func TestEnvironment_KVStores(t *testing.T) {
	store := func(typ, name string, props ...string) map[string]any {
		properties := make([]any, 0, len(props))
		for _, p := range props {
			properties = append(properties, map[string]any{"name": p, "value": "v"})
		}
		return map[string]any{"store_type": typ, "name": name, "properties": properties}
	}

	tests := []struct {
		name     string
		stores   []any
		wantKind Kind
		wantPath string
	}{
		{
			name:   "distinct stores",
			stores: []any{store("AVRO_KV", "a", "path"), store("TEXT_FILE", "b", "path", "delim")},
		},
		{
			name:     "duplicate store name",
			stores:   []any{store("AVRO_KV", "a"), store("AVRO_RECORD", "a")},
			wantKind: DuplicateStoreName,
			wantPath: "train_environment.kv_stores[1].name",
		},
		{
			name:     "duplicate property name",
			stores:   []any{store("KIJI_TABLE", "a", "uri", "uri")},
			wantKind: DuplicatePropertyName,
			wantPath: "train_environment.kv_stores[0].properties[1].name",
		},
		{
			name:     "unknown store type",
			stores:   []any{store("REDIS", "a")},
			wantKind: InvalidValue,
			wantPath: "train_environment.kv_stores[0].store_type",
		},
		{
			name:     "empty store name",
			stores:   []any{store("AVRO_KV", "")},
			wantKind: EmptyIdentifier,
			wantPath: "train_environment.kv_stores[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := trainEnvironment()
			dig(t, tree, "train_environment")["kv_stores"] = tt.stores

			env, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Len(t, env.Train.KVStores, len(tt.stores))
				return
			}
			errs := requireErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantKind, errs[0].Kind)
			assert.Equal(t, Path(tt.wantPath), errs[0].Path)
		})
	}
}

func TestEnvironment_Policy(t *testing.T) {
	broken := func(t *testing.T) *spec.ModelEnvironment {
		tree := trainEnvironment()
		tree["name"] = ""
		tree["version"] = ""
		dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification")["time_range"] = map[string]any{
			"min_timestamp": 100, "max_timestamp": 50,
		}
		return decodeEnv(t, tree)
	}

	t.Run("accumulate reports every error", func(t *testing.T) {
		_, err := newTestValidator(t, Accumulate).Environment(broken(t))
		errs := requireErrors(t, err)
		assert.Len(t, errs, 3)
		assert.Equal(t, []Kind{EmptyIdentifier, InvalidTimeRange}, errs.Kinds())
	})

	t.Run("fail fast reports the first error", func(t *testing.T) {
		_, err := newTestValidator(t, FailFast).Environment(broken(t))
		errs := requireErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, Path("name"), errs[0].Path)
	})

	t.Run("accumulate does not descend into an ambiguous record", func(t *testing.T) {
		tree := trainEnvironment()
		col := dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")
		col["filter"] = map[string]any{
			"or_filter":    []any{map[string]any{"regex_filter": map[string]any{"regex": "("}}},
			"regex_filter": map[string]any{"regex": ""},
		}

		_, err := newTestValidator(t, Accumulate).Environment(decodeEnv(t, tree))
		errs := requireErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, AmbiguousVariant, errs[0].Kind)
	})
}

func TestEnvironment_RoundTrip(t *testing.T) {
	tree := trainEnvironment()
	col := dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification", "columns_to_fields", 0, "column", "qualified_column")
	col["filter"] = map[string]any{
		"and_filter": []any{
			map[string]any{"regex_filter": map[string]any{"regex": "^2026"}},
			map[string]any{"range_filter": map[string]any{"min_qualifier": "a", "max_qualifier": "m", "max_qualifier_inclusive": true}},
		},
	}
	col["schema_spec"] = map[string]any{"specific": map[string]any{"class_name": "org.example.User"}}
	dig(t, tree, "train_environment", "input_spec", "users", "kiji_specification")["time_range"] = map[string]any{"min_timestamp": 10}
	dig(t, tree, "train_environment", "input_spec")["seq"] = map[string]any{
		"sequence_file_specification": map[string]any{"file_path": "/data/seq", "key_field": "k"},
	}
	dig(t, tree, "train_environment", "output_spec")["col"] = map[string]any{
		"kiji_column_specification": map[string]any{
			"table_uri":     "kiji://.env/default/out",
			"output_column": map[string]any{"family": "f", "qualifier": "q", "schema_spec": map[string]any{}},
		},
	}
	tree["score_environment"] = scoreEnvironment()["score_environment"]

	v := newTestValidator(t, Accumulate)
	first, err := v.Environment(decodeEnv(t, tree))
	require.NoError(t, err)

	again, err := spec.Tree(first.Document())
	require.NoError(t, err)
	second, err := v.Environment(decodeEnv(t, again))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDefinition(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"name":          "churn",
			"version":       "1.0.0",
			"trainer_class": "org.example.ChurnTrainer",
			"scorer_phase": map[string]any{
				"phase_class": "org.example.ChurnScorer",
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		def, err := newTestValidator(t, Accumulate).Definition(decodeDef(t, base()))
		require.NoError(t, err)
		assert.Equal(t, spec.DefinitionProtocolVersion, def.ProtocolVersion)
		assert.True(t, def.Has(model.PhaseTrain))
		assert.True(t, def.Has(model.PhaseScore))
		assert.False(t, def.Has(model.PhasePrepare))
		assert.Equal(t, &model.PhaseDefinition{PhaseClass: "org.example.ChurnScorer"}, def.Scorer)
	})

	tests := []struct {
		name     string
		mutate   func(tree map[string]any)
		wantKind Kind
		wantPath string
	}{
		{
			name:     "unsupported protocol",
			mutate:   func(tree map[string]any) { tree["protocol_version"] = "model_definition-0.1.0" },
			wantKind: UnsupportedProtocolVersion,
			wantPath: "protocol_version",
		},
		{
			name:     "empty version",
			mutate:   func(tree map[string]any) { tree["version"] = "" },
			wantKind: EmptyIdentifier,
			wantPath: "version",
		},
		{
			name:     "empty trainer class",
			mutate:   func(tree map[string]any) { tree["trainer_class"] = "" },
			wantKind: EmptyIdentifier,
			wantPath: "trainer_class",
		},
		{
			name:     "scorer without phase class",
			mutate:   func(tree map[string]any) { tree["scorer_phase"] = map[string]any{"extractor_class": "org.example.X"} },
			wantKind: EmptyIdentifier,
			wantPath: "scorer_phase.phase_class",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := base()
			tt.mutate(tree)

			_, err := newTestValidator(t, Accumulate).Definition(decodeDef(t, tree))
			errs := requireErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantKind, errs[0].Kind)
			assert.Equal(t, Path(tt.wantPath), errs[0].Path)
		})
	}
}

func TestPair(t *testing.T) {
	definition := func(fields map[string]any) *spec.ModelDefinition {
		tree := map[string]any{"name": "churn", "version": "1.0.0"}
		for k, v := range fields {
			tree[k] = v
		}
		return decodeDef(t, tree)
	}

	t.Run("matching phases", func(t *testing.T) {
		def, env, err := newTestValidator(t, Accumulate).Pair(
			definition(map[string]any{"scorer_phase": map[string]any{"phase_class": "org.example.Scorer"}}),
			decodeEnv(t, scoreEnvironment()),
		)
		require.NoError(t, err)
		for _, p := range model.Phases {
			assert.Equal(t, def.Has(p), env.Has(p), "phase %s", p)
		}
	})

	t.Run("phase sets differ", func(t *testing.T) {
		_, _, err := newTestValidator(t, Accumulate).Pair(
			definition(map[string]any{"trainer_class": "org.example.Trainer"}),
			decodeEnv(t, scoreEnvironment()),
		)
		errs := requireErrors(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, Path("train_environment"), errs[0].Path)
		assert.Equal(t, Path("score_environment"), errs[1].Path)
		for _, e := range errs {
			assert.Equal(t, PhaseMismatch, e.Kind)
			assert.Equal(t, EnvironmentDocument, e.Document)
		}
		assert.True(t, errors.Is(err, PhaseMismatch))
	})

	t.Run("train environment without a trainer", func(t *testing.T) {
		env := trainEnvironment()
		env["score_environment"] = scoreEnvironment()["score_environment"]

		_, _, err := newTestValidator(t, Accumulate).Pair(
			definition(map[string]any{"scorer_phase": map[string]any{"phase_class": "org.example.Scorer"}}),
			decodeEnv(t, env),
		)
		errs := requireErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, PhaseMismatch, errs[0].Kind)
		assert.Equal(t, Path("train_environment"), errs[0].Path)
		assert.Equal(t, EnvironmentDocument, errs[0].Document)
	})

	t.Run("different model", func(t *testing.T) {
		def := definition(map[string]any{"scorer_phase": map[string]any{"phase_class": "org.example.Scorer"}})
		def.Version = "2.0.0"
		_, _, err := newTestValidator(t, Accumulate).Pair(def, decodeEnv(t, scoreEnvironment()))
		errs := requireErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, IdentityMismatch, errs[0].Kind)
		assert.Equal(t, Path("version"), errs[0].Path)
	})

	t.Run("definition errors are attributed", func(t *testing.T) {
		def := definition(map[string]any{"scorer_phase": map[string]any{"phase_class": "org.example.Scorer"}})
		def.Name = ""
		_, _, err := newTestValidator(t, FailFast).Pair(def, decodeEnv(t, scoreEnvironment()))
		errs := requireErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, DefinitionDocument, errs[0].Document)
		assert.Equal(t, "model_definition:name: EmptyIdentifier: name must not be empty", errs[0].Error())
	})

	t.Run("missing documents", func(t *testing.T) {
		_, _, err := newTestValidator(t, Accumulate).Pair(nil, nil)
		errs := requireErrors(t, err)
		assert.Equal(t, []Kind{MissingField}, errs.Kinds())
	})
}
