// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties relevant to audio handling
//   - Format: container-level metadata (duration, size, bitrate)
//
// Entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Duration: probes a file and returns its duration, failing when the
//     value is missing or unparsable
package ffprobe
