package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a validation failure. Kind implements error so callers can
// test for a class of failure with errors.Is(err, validate.DuplicateBinding).
type Kind string

// Error kinds.
const (
	MissingVariant             Kind = "MissingVariant"
	AmbiguousVariant           Kind = "AmbiguousVariant"
	EmptyIdentifier            Kind = "EmptyIdentifier"
	DuplicateBinding           Kind = "DuplicateBinding"
	DuplicateStoreName         Kind = "DuplicateStoreName"
	DuplicatePropertyName      Kind = "DuplicatePropertyName"
	InvalidTimeRange           Kind = "InvalidTimeRange"
	UnsupportedProtocolVersion Kind = "UnsupportedProtocolVersion"
	PhaseMismatch              Kind = "PhaseMismatch"
	MissingField               Kind = "MissingField"
	InvalidValue               Kind = "InvalidValue"
	IdentityMismatch           Kind = "IdentityMismatch"
)

func (k Kind) Error() string { return string(k) }

// Document names which input document an error belongs to. It is only set
// when two documents are validated together.
type Document string

// Documents.
const (
	DefinitionDocument  Document = "model_definition"
	EnvironmentDocument Document = "model_environment"
)

// Error is a single validation failure located within a document.
type Error struct {
	Kind     Kind
	Path     Path
	Message  string
	Document Document
}

func (e *Error) Error() string {
	loc := e.Path.String()
	if e.Document != "" {
		if loc == "" {
			loc = string(e.Document)
		} else {
			loc = string(e.Document) + ":" + loc
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Message)
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// ErrorList is every failure found in one validation run, in discovery
// order. Under FailFast it holds exactly one error.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// Kinds returns the distinct kinds present in the list, in first-seen order.
func (l ErrorList) Kinds() []Kind {
	seen := make(map[Kind]bool, len(l))
	var kinds []Kind
	for _, e := range l {
		if !seen[e.Kind] {
			seen[e.Kind] = true
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// Errors extracts the validation errors carried by err, or nil if err did
// not come from this package.
func Errors(err error) ErrorList {
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var single *Error
	if errors.As(err, &single) {
		return ErrorList{single}
	}
	return nil
}
