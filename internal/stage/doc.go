// Package stage defines the contract between the workflow manager and the
// four pipeline stage handlers.
//
// A handler consumes the artifact produced by the preceding stage and
// returns an enriched one; it never writes to the job store. The manager
// owns all status, stage, and progress mutation.
package stage
