// Package spec defines the document shape of model definitions and model
// environments exactly as they appear on the wire.
//
// Records in this package are loosely constrained: every nullable field is a
// pointer, unions are modelled as several optional fields, and nothing checks
// that the populated fields make sense together. Package validate turns these
// records into the immutable, fully resolved values of package model.
//
// Field names (the mapstructure and yaml tags) are document-level contracts
// and must not change.
package spec
