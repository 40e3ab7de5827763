// Package daemon ties the long-running pieces together: it enforces
// single-instance execution with a lock file, starts and stops the workflow
// manager, and serves the HTTP API the web client and CLI talk to.
package daemon
