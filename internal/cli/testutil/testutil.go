// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/modelspec/internal/cli/output"
)

// DefinitionYAML declares a model with train and score phases.
const DefinitionYAML = `protocol_version: model_definition-0.4.0
name: churn
version: 1.0.0
trainer_class: org.example.ChurnTrainer
scorer_phase:
  extractor_class: org.example.ChurnExtractor
  phase_class: org.example.ChurnScorer
`

// EnvironmentYAML binds the train and score phases of DefinitionYAML.
const EnvironmentYAML = `protocol_version: model_environment-0.4.0
name: churn
version: 1.0.0
train_environment:
  input_spec:
    users:
      kiji_specification:
        table_uri: kiji://.env/default/users
        columns_to_fields:
          - tuple_field_name: user_id
            column:
              qualified_column:
                family: info
                qualifier: id
          - tuple_field_name: visits
            column:
              qualified_column:
                family: stats
                qualifier: visits
  output_spec:
    weights:
      kiji_specification:
        table_uri: kiji://.env/default/models
        fields_to_columns:
          - tuple_field_name: weights
            column:
              qualified_column:
                family: model
                qualifier: weights
  kv_stores: []
score_environment:
  input_spec:
    table_uri: kiji://.env/default/users
    columns_to_fields:
      - tuple_field_name: user_id
        column:
          qualified_column:
            family: info
            qualifier: id
  output_spec:
    table_uri: kiji://.env/default/users
    output_column:
      family: model
      qualifier: churn_score
  kv_stores: []
`

// BrokenEnvironmentYAML has an empty name and an inverted time range.
const BrokenEnvironmentYAML = `protocol_version: model_environment-0.4.0
name: ""
version: 2.0.0
score_environment:
  input_spec:
    table_uri: kiji://.env/default/users
    time_range:
      min_timestamp: 10
      max_timestamp: 5
    columns_to_fields:
      - tuple_field_name: user_id
        column:
          qualified_column:
            family: info
            qualifier: id
  output_spec:
    table_uri: kiji://.env/default/users
    output_column:
      family: model
      qualifier: score
  kv_stores: []
`

// SetupTestProject creates a temporary project holding a valid churn
// definition and environment under models/.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteFile(t, filepath.Join(tmpDir, "models", "churn.def.yaml"), DefinitionYAML)
	WriteFile(t, filepath.Join(tmpDir, "models", "churn.env.yaml"), EnvironmentYAML)
	return tmpDir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
