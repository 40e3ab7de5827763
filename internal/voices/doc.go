// Package voices exposes the static voice catalog and the preview cache.
// Previews are synthesized once per voice, persisted as a JSON index next to
// the job database, and concurrent requests for the same voice are coalesced
// into a single synthesis.
package voices
