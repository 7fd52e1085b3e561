package model

// FilterKind identifies the variant of a Filter.
type FilterKind string

// Filter variants.
const (
	FilterAnd   FilterKind = "and"
	FilterOr    FilterKind = "or"
	FilterRange FilterKind = "range"
	FilterRegex FilterKind = "regex"
)

// Filter is a column filter tree. Implementations: AndFilter, OrFilter,
// RangeFilter, RegexFilter.
type Filter interface {
	FilterKind() FilterKind
	isFilter()
}

// AndFilter combines at least one child filter.
type AndFilter struct {
	Children []Filter
}

// OrFilter combines at least one child filter.
type OrFilter struct {
	Children []Filter
}

// RangeFilter keeps qualifiers inside the given bounds. An empty bound is
// unbounded on that side.
type RangeFilter struct {
	MinQualifier          string
	MinQualifierInclusive bool
	MaxQualifier          string
	MaxQualifierInclusive bool
}

// RegexFilter keeps qualifiers matching Pattern. The pattern is known to
// compile.
type RegexFilter struct {
	Pattern string
}

func (AndFilter) FilterKind() FilterKind   { return FilterAnd }
func (OrFilter) FilterKind() FilterKind    { return FilterOr }
func (RangeFilter) FilterKind() FilterKind { return FilterRange }
func (RegexFilter) FilterKind() FilterKind { return FilterRegex }

func (AndFilter) isFilter()   {}
func (OrFilter) isFilter()    {}
func (RangeFilter) isFilter() {}
func (RegexFilter) isFilter() {}

// FilterDepth returns the number of levels in a filter tree; nil has depth 0.
func FilterDepth(f Filter) int {
	var children []Filter
	switch v := f.(type) {
	case nil:
		return 0
	case AndFilter:
		children = v.Children
	case OrFilter:
		children = v.Children
	default:
		return 1
	}
	deepest := 0
	for _, c := range children {
		if d := FilterDepth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
