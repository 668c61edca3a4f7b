// Package logging builds the slog loggers used across statewatch.
//
// It supports JSON output for machine consumption and a compact console
// format for interactive use, honours the [logging] section of the
// configuration, and exposes standardized attribute constructors plus
// field-name constants so save cycles, resolution, and dispatch all log
// with consistent keys. Loggers derived through WithContext carry the
// save-cycle correlation fields automatically.
package logging
