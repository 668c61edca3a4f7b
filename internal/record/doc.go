// Package record models the business documents under workflow control
// and persists them in SQLite.
//
// A record carries dynamic string fields (the workflow state field name
// varies by record type) plus the extra-recipient role entries it owns.
// The store applies WAL mode and retries briefly on SQLITE_BUSY so CLI
// and serve-mode writers can share a database file.
package record
