// Package codec owns the declarative binary codec engine.
//
// Ownership boundary:
// - codec contract, decode stream and per-call context
// - fixed-width primitives and variable-length integers
// - length-prefixed containers and the Variant tagged union
// - composite records and the repetition combinator
package codec
