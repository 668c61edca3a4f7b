// Package recipients resolves who should be notified about a workflow
// state change: the record owner, the members of the roles allowed to
// act on the matched transition, and the record's extra-recipient
// entries, deduplicated into a stable ordered set. Broad roles such as
// Employee never expand to their full membership; they resolve only to
// users the record links to directly.
package recipients
