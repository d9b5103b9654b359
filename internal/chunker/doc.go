// Package chunker splits one audio file into fixed-length, overlapping
// segments for transcription.
//
// Plan computes the segment windows from a duration alone. Chunker.Split
// probes the source with ffprobe and extracts each window with ffmpeg. When
// an extraction fails, Split stops and returns the segments produced so far;
// only an empty result is reported as an error.
package chunker
