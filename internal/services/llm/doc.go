// Package llm provides a chat client for any OpenAI-compatible completions
// endpoint. It backs answer, summary and follow-up generation.
//
// Complete sends one system/user prompt pair with a token limit and a
// temperature and returns the reply text. HealthCheck issues a tiny request so
// `vidrag doctor` can confirm the key and model before a long ingest.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, 3 attempts by default).
// Retry-After headers are honoured up to the max delay. Context cancellation
// aborts retries immediately.
package llm
