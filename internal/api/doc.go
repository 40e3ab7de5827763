// Package api defines the JSON DTOs served over HTTP and the read-side
// services that produce them from the queue store. Keeping conversion here
// lets the daemon handlers stay thin and keeps wire shapes stable even when
// the store models change.
package api
