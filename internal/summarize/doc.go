// Package summarize implements the second pipeline stage. It condenses the
// research output into an episode summary, via the LLM when configured and
// via a deterministic template otherwise.
package summarize
