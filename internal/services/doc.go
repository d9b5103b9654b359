// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations beneath them.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, chunk indexes, session
//     IDs and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper. Each pipeline failure kind
//     (acquisition, audio processing, empty transcript, index build, retrieval,
//     synthesis) has its own marker so callers can present a specific message.
//
// Subpackages hold the clients for external capabilities: speech-to-text
// (whisper), embeddings (embed), and text generation (llm, gemini).
package services
