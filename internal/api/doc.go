// Package api serves the save pipeline over HTTP: record reads and
// saves, per-user inboxes, health, and metrics.
package api
