// Package services defines the shared error taxonomy and context annotations
// used by stage handlers, the workflow manager, and the HTTP API.
//
// Errors are tagged with sentinel markers (validation, not found, unknown
// voice, transient, external service) via Wrap so callers can classify a
// failure without parsing message text. Subpackages hold clients for the
// external services the pipeline calls (llm, tts).
package services
