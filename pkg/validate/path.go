package validate

import (
	"strconv"
)

// Path locates a value within a document, for example
// train_environment.output_spec["sink1"].fields_to_columns[2].
// The zero value is the document root.
type Path string

// Field appends a record field.
func (p Path) Field(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

// Key appends a map key.
func (p Path) Key(key string) Path {
	return p + Path("["+strconv.Quote(key)+"]")
}

// Index appends a sequence index.
func (p Path) Index(i int) Path {
	return p + Path("["+strconv.Itoa(i)+"]")
}

func (p Path) String() string { return string(p) }
