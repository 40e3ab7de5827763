// Package logging builds the slog loggers used across the daemon and CLI.
//
// It exposes attr helpers with standardized field keys (component, job_id,
// stage, event_type) so log output stays queryable, a no-op logger for
// tests and optional collaborators, and context-aware derivation that
// stamps job and stage identifiers onto every record emitted while a
// pipeline stage runs.
//
// New log fields belong here; handlers and stages should never invent
// ad-hoc keys.
package logging
