package validate

import (
	"fmt"
	"strings"
)

// Policy selects how many errors a validation run collects.
type Policy int

const (
	// Accumulate walks the whole document and reports every structural
	// error. A record whose own variant check fails is not descended into.
	Accumulate Policy = iota
	// FailFast stops at the first error.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case Accumulate:
		return "accumulate"
	case FailFast:
		return "fail-fast"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "accumulate" or "fail-fast" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accumulate", "all":
		return Accumulate, nil
	case "fail-fast", "failfast", "first":
		return FailFast, nil
	}
	return 0, fmt.Errorf("unknown validation policy %q (expected accumulate or fail-fast)", s)
}

// report collects errors for one validation run.
type report struct {
	policy Policy
	doc    Document
	errs   ErrorList
}

func newReport(policy Policy) *report {
	return &report{policy: policy}
}

func (r *report) addf(path Path, kind Kind, format string, args ...any) {
	if r.halted() {
		return
	}
	r.errs = append(r.errs, &Error{
		Kind:     kind,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Document: r.doc,
	})
}

// halted reports whether the run must stop: only after the first error
// under FailFast.
func (r *report) halted() bool {
	return r.policy == FailFast && len(r.errs) > 0
}

// mark returns a checkpoint for clean.
func (r *report) mark() int { return len(r.errs) }

// clean reports whether no error was added since the checkpoint.
func (r *report) clean(mark int) bool { return len(r.errs) == mark }

func (r *report) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs
}

// requireIdentifier reports EmptyIdentifier when s is empty.
func (r *report) requireIdentifier(path Path, s string) bool {
	if s != "" {
		return true
	}
	r.addf(path, EmptyIdentifier, "%s must not be empty", fieldName(path))
	return false
}

// optionalIdentifier reports EmptyIdentifier when s is set but empty.
func (r *report) optionalIdentifier(path Path, s *string) bool {
	if s == nil {
		return true
	}
	return r.requireIdentifier(path, *s)
}

// fieldName returns the last field of a path, for messages.
func fieldName(p Path) string {
	s := string(p)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '['); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return "value"
	}
	return s
}

// variant is one populated (or not) branch of a union record.
type variant struct {
	name string
	set  bool
}

// pick enforces "exactly one of" over the given branches and returns the
// name of the populated one. record names the union for messages.
func (r *report) pick(path Path, record string, branches ...variant) (string, bool) {
	var set []string
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.name)
		if b.set {
			set = append(set, b.name)
		}
	}
	switch len(set) {
	case 1:
		return set[0], true
	case 0:
		r.addf(path, MissingVariant, "%s must set exactly one of %s; none is set", record, strings.Join(names, ", "))
	default:
		r.addf(path, AmbiguousVariant, "%s must set exactly one of %s; found %s", record, strings.Join(names, ", "), strings.Join(set, " and "))
	}
	return "", false
}
