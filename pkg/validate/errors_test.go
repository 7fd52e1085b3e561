package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	p := Path("").
		Field("train_environment").
		Field("output_spec").Key("sink1").
		Field("fields_to_columns").Index(2)

	assert.Equal(t, `train_environment.output_spec["sink1"].fields_to_columns[2]`, p.String())
	assert.Equal(t, "fields_to_columns", fieldName(p))
	assert.Equal(t, "value", fieldName(""))
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "root",
			err:  &Error{Kind: MissingField, Message: "model environment is missing"},
			want: "MissingField: model environment is missing",
		},
		{
			name: "path",
			err:  &Error{Kind: EmptyIdentifier, Path: "name", Message: "name must not be empty"},
			want: "name: EmptyIdentifier: name must not be empty",
		},
		{
			name: "document root",
			err:  &Error{Kind: MissingField, Document: DefinitionDocument, Message: "model definition is missing"},
			want: "model_definition: MissingField: model definition is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorList(t *testing.T) {
	list := ErrorList{
		{Kind: EmptyIdentifier, Path: "name", Message: "name must not be empty"},
		{Kind: EmptyIdentifier, Path: "version", Message: "version must not be empty"},
		{Kind: InvalidTimeRange, Path: "t", Message: "bad"},
	}

	assert.Equal(t, "3 validation errors:\n"+
		"  name: EmptyIdentifier: name must not be empty\n"+
		"  version: EmptyIdentifier: version must not be empty\n"+
		"  t: InvalidTimeRange: bad", list.Error())
	assert.Equal(t, []Kind{EmptyIdentifier, InvalidTimeRange}, list.Kinds())

	var err error = list
	assert.True(t, errors.Is(err, InvalidTimeRange))
	assert.False(t, errors.Is(err, DuplicateBinding))

	var target *Error
	require.True(t, errors.As(err, &target))
	assert.Equal(t, Path("name"), target.Path)

	wrapped := fmt.Errorf("failed to validate churn.yaml: %w", err)
	assert.Equal(t, list, Errors(wrapped))
	assert.Nil(t, Errors(errors.New("boom")))
	assert.Nil(t, Errors(nil))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "accumulate", want: Accumulate},
		{in: "Fail-Fast", want: FailFast},
		{in: " failfast ", want: FailFast},
		{in: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Policy {
	t.Helper()
	p, err := ParsePolicy(s)
	require.NoError(t, err)
	return p
}
