// Package workflow coordinates podcast generation. A single background
// worker drains the queue in FIFO order, driving each job through the
// research, summarize, script, and voice stages and recording progress in
// the store after every transition, so at most one job is ever running.
//
// A stage failure marks its job failed and the worker moves on to the next
// queued job. The manager owns no job state of its own; the store is the
// source of truth and the "current job" is simply the one whose status is
// running.
package workflow
