// Package queue persists podcast generation jobs in SQLite and exposes
// helpers for driving their lifecycle.
//
// The Store manages database connections, schema initialization, FIFO
// dequeue queries, and the atomic read-modify-write Update the workflow
// manager uses for every status, stage, and progress transition. Jobs
// capture topic, hosts, per-stage update history, and stage results so
// API consumers can render state without additional bookkeeping.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
