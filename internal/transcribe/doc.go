// Package transcribe runs speech-to-text over audio chunks with a bounded
// worker pool.
//
// Each chunk is retried according to an explicit RetryPolicy. A chunk whose
// attempts are exhausted contributes an empty transcript and a logged
// failure; it never aborts the run. Results are addressed by chunk position,
// so the output order always matches the input order regardless of which
// worker finishes first.
package transcribe
