// Package pipeline turns a video URL into a searchable transcript.
//
// A run acquires the audio, splits it into overlapping chunks, transcribes the
// chunks concurrently, stitches the chunk transcripts and builds a retrieval
// index. Every run gets its own scratch directory under the configured work
// directory, removed when the run returns. The pipeline persists nothing;
// callers decide what to keep from the Result.
package pipeline
