// Package research implements the first pipeline stage. It gathers sources
// and talking-point topics for the requested podcast subject, either by
// asking the LLM for a structured JSON payload or, when no LLM is
// configured, by generating deterministic placeholder research so the rest
// of the pipeline can run end to end.
package research
