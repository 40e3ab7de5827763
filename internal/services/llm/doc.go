// Package llm wraps the OpenRouter-compatible chat completion API used by the
// content generation stages. The client retries transient failures (rate
// limits, 5xx responses, empty completions) with exponential backoff and
// tolerates the schema quirks of different upstream providers.
//
// Stages that need structured output call CompleteJSON and decode the payload
// with DecodeLLMJSON, which strips code fences and extracts embedded JSON.
// Treat this package as the single place where chat completion transport
// details live; stage handlers should only deal in prompts and decoded
// payloads.
package llm
