// Package rules carries detected state changes to downstream
// automation. Every transition emits exactly one event, keyed by the
// workflow_state_changed method, before any recipient is notified.
package rules
