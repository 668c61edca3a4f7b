// Package engine coordinates the two-phase save cycle: snapshot before
// mutation, persist, then compare and notify. Saves always win; the
// notification pipeline may degrade or fail but never blocks a write.
package engine
