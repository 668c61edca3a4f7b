// Package directory answers "who holds this role" and "which user is
// this employee" questions for recipient resolution. The SQLite store
// is the default backing; any implementation of Directory can stand in
// for it when statewatch is embedded next to an existing user system.
package directory
