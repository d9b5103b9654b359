// Package index turns a transcript into an in-memory vector index and
// answers nearest-neighbour queries over it.
//
// Build splits the transcript into overlapping token windows, embeds them in
// batches and returns a read-only Index. Any embedding failure or a
// malformed embedding response fails the whole build; there are no partial
// indexes. Retriever embeds a question with the same Embedder and ranks
// chunks by cosine similarity, optionally fused with a TF-IDF lexical
// ranking. Results are deterministic: equal scores are ordered by chunk
// position.
package index
