package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelspec/internal/cli/config"
	"github.com/leapstack-labs/modelspec/internal/cli/output"
	"github.com/leapstack-labs/modelspec/internal/cli/testutil"
)

// execute runs the root command and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func setupProject(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	return dir
}

func TestRoot_ValidateMarkdown(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "validate", "models")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Validation")
	assert.Contains(t, stdout, "- churn@1.0.0: **ok** (churn.def.yaml, churn.env.yaml [train, score])")
	assert.Contains(t, stdout, "Summary: 1 model, 1 passed, 0 failed, 0 errors")
	testutil.AssertNoANSI(t, stdout)
	testutil.AssertValidMarkdown(t, stdout)
}

func TestRoot_ValidateDefaultsToWorkingDirectory(t *testing.T) {
	setupProject(t)

	stdout, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "churn@1.0.0")
}

func TestRoot_ValidateFailures(t *testing.T) {
	dir := setupProject(t)
	testutil.WriteFile(t, filepath.Join(dir, "models", "broken.env.yaml"), testutil.BrokenEnvironmentYAML)
	testutil.WriteFile(t, filepath.Join(dir, "models", "garbage.yaml"), "name: [unclosed\n")
	broken := filepath.Join("models", "broken.env.yaml")
	garbage := filepath.Join("models", "garbage.yaml")

	stdout, _, err := execute(t, "validate", "models", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of the validated models failed")

	var got output.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, output.ValidateSummary{Units: 3, Passed: 1, Failed: 2, Errors: 3}, got.Summary)
	require.Len(t, got.Units, 3)

	// Units come first in file order, then files that failed to load.
	brokenUnit := got.Units[0]
	assert.Equal(t, broken, brokenUnit.Label)
	assert.Equal(t, "failed", brokenUnit.Status)
	require.Len(t, brokenUnit.Errors, 2)
	assert.Equal(t, "EmptyIdentifier", brokenUnit.Errors[0].Kind)
	assert.Equal(t, "name", brokenUnit.Errors[0].Path)
	assert.Equal(t, broken, brokenUnit.Errors[0].File)
	assert.Equal(t, "InvalidTimeRange", brokenUnit.Errors[1].Kind)

	assert.Equal(t, "churn@1.0.0", got.Units[1].Label)
	assert.Equal(t, "passed", got.Units[1].Status)
	assert.Equal(t, []string{"train", "score"}, got.Units[1].Phases)

	loadFailure := got.Units[2]
	assert.Equal(t, garbage, loadFailure.Label)
	assert.Equal(t, "error", loadFailure.Status)
	require.Len(t, loadFailure.Errors, 1)
	assert.Equal(t, "LoadError", loadFailure.Errors[0].Kind)
}

func TestRoot_ValidateFailFast(t *testing.T) {
	dir := setupProject(t)
	testutil.WriteFile(t, filepath.Join(dir, "models", "broken.env.yaml"), testutil.BrokenEnvironmentYAML)

	stdout, _, err := execute(t, "validate", filepath.Join("models", "broken.env.yaml"), "--policy", "fail-fast", "-o", "json")
	require.Error(t, err)

	var got output.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Units, 1)
	assert.Len(t, got.Units[0].Errors, 1)
}

func TestRoot_ValidatePhaseMismatch(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// The definition declares train and score; this environment binds only score.
	testutil.WriteFile(t, filepath.Join(dir, "churn.def.yaml"), testutil.DefinitionYAML)
	testutil.WriteFile(t, filepath.Join(dir, "churn.env.yaml"), `name: churn
version: 1.0.0
score_environment:
  input_spec:
    table_uri: kiji://.env/default/users
    columns_to_fields: []
  output_spec:
    table_uri: kiji://.env/default/users
    output_column: {family: model, qualifier: score}
  kv_stores: []
`)

	stdout, _, err := execute(t, "validate", "-o", "json")
	require.Error(t, err)

	var got output.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Units, 1)
	require.NotEmpty(t, got.Units[0].Errors)
	assert.Equal(t, "PhaseMismatch", got.Units[0].Errors[0].Kind)
	assert.Equal(t, "model_environment", got.Units[0].Errors[0].Document)
}

func TestRoot_ValidateNoDocuments(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model documents found")
}

func TestRoot_RecordAndHistory(t *testing.T) {
	dir := setupProject(t)
	statePath := filepath.Join(dir, "state", "history.db")

	_, _, err := execute(t, "validate", "models", "--record", "--state", statePath, "-o", "json")
	require.NoError(t, err)

	stdout, _, err := execute(t, "history", "--state", statePath, "-o", "json")
	require.NoError(t, err)

	var history output.HistoryOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &history))
	require.Len(t, history.Runs, 1)
	run := history.Runs[0]
	assert.Equal(t, "churn@1.0.0", run.Label)
	assert.Equal(t, "passed", run.Status)
	assert.Len(t, run.Files, 2)

	stdout, _, err = execute(t, "history", run.ID[:8], "--state", statePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Run "+run.ID)
	assert.Contains(t, stdout, "- **Status:** passed")
	assert.Contains(t, stdout, "**OK** No errors")
}

func TestRoot_HistoryEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := execute(t, "history", "--state", filepath.Join(dir, "h.db"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Validation history (0 runs)")
	assert.Contains(t, stdout, "No runs recorded")
}

func TestRoot_Inspect(t *testing.T) {
	setupProject(t)
	envPath := filepath.Join("models", "churn.env.yaml")
	defPath := filepath.Join("models", "churn.def.yaml")

	t.Run("markdown", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", envPath, "--definition", defPath)
		require.NoError(t, err)
		assert.Contains(t, stdout, "# churn@1.0.0")
		assert.Contains(t, stdout, "## Train")
		assert.Contains(t, stdout, "## Score")
		assert.Contains(t, stdout, "- **Class:** org.example.ChurnTrainer")
		assert.Contains(t, stdout, "| user_id | users | kiji://.env/default/users | info:id | versions=1 |")
		assert.Contains(t, stdout, "| weights | weights | kiji://.env/default/models | model:weights | - |")
		assert.Contains(t, stdout, "model:churn_score")
		testutil.AssertNoANSI(t, stdout)
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", envPath, "-o", "json")
		require.NoError(t, err)

		var got output.InspectOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, "churn", got.Name)
		require.Len(t, got.Phases, 2)
		assert.Equal(t, "train", got.Phases[0].Phase)
		assert.Empty(t, got.Phases[0].Class)
		require.Len(t, got.Phases[0].Inputs, 2)
		assert.Equal(t, "user_id", got.Phases[0].Inputs[0].Field)
		assert.Equal(t, "visits", got.Phases[0].Inputs[1].Field)
		assert.Equal(t, "score", got.Phases[1].Phase)
	})

	t.Run("normalized", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", envPath, "--normalized", "-o", "text")
		require.NoError(t, err)
		assert.Contains(t, stdout, "protocol_version: model_environment-0.4.0")
		assert.Contains(t, stdout, "max_versions: 1")
		assert.Contains(t, stdout, "table_uri: kiji://.env/default/users")
	})

	t.Run("definition given as environment", func(t *testing.T) {
		_, _, err := execute(t, "inspect", defPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a model environment")
	})
}

func TestRoot_InvalidConfig(t *testing.T) {
	setupProject(t)

	_, _, err := execute(t, "validate", "--policy", "sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid policy")
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "modelspec v"+Version)
}

func TestRoot_Completion(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "modelspec")
}

func TestGetConfig_Default(t *testing.T) {
	cfg := GetConfig(t.Context())
	assert.Equal(t, config.DefaultPolicy, cfg.Policy)
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
}
