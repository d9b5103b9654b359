// Package preflight provides readiness checks for the external tools,
// directories and services vidrag depends on.
//
// `vidrag doctor` runs every check and renders the results. `vidrag ingest`
// runs the same set first and refuses to start when a required check fails,
// so a missing ffmpeg is reported before minutes of downloading.
package preflight
