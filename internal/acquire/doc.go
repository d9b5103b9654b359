// Package acquire downloads the audio track of a video with yt-dlp.
//
// A Downloader turns one locator into one local audio file inside a caller
// supplied directory. The pipeline owns that directory and removes it when
// the run ends, so acquired audio never outlives a run.
package acquire
