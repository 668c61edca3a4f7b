// Package services holds the cross-cutting helpers shared by the
// notification pipeline: the sentinel error taxonomy with Wrap for
// classification, and context carriers for save-cycle correlation
// identifiers and the record under mutation.
package services
