// Package model holds the validated, fully resolved form of model
// definitions and model environments.
//
// Every place where the document format allows "exactly one of N optional
// fields" is a sealed interface here: a value is one concrete variant, so a
// doubly-populated union cannot be represented. Values are built only by
// package validate and are never mutated afterwards; they are safe to share
// between goroutines.
package model
