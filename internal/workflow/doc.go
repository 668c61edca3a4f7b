// Package workflow holds the configured workflow definitions and the
// transition detector.
//
// A Definition maps a record type to its ordered transitions and names
// the record field carrying the workflow state. Field names are not
// assumed fixed: the FieldResolver memoizes, per record type, the
// declared field (or the configured default), and the Detector falls
// back to the conventional field when a record does not carry the
// declared one. Detection is a pure before/after comparison over one
// save cycle; the snapshot is transient and never persisted.
package workflow
