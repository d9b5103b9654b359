// Package store persists ingested runs and chat sessions in SQLite.
//
// A run row keeps the stitched transcript, its summary and the embedding model
// that produced the stored chunk vectors, so later commands can rebuild the
// retrieval index without re-ingesting. Sessions hang off a run and hold an
// append-only, sequence-numbered list of turns.
//
// The schema is embedded and versioned. A database created by a different
// schema version is rejected with ErrSchemaMismatch rather than migrated.
package store
