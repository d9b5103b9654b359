// Package embed provides the embedding backends used to index transcripts
// and to embed questions at query time.
//
// OpenAI and Gemini call the hosted embedding APIs. Local hashes character
// trigrams and stemmed terms into a fixed-width vector; it needs no network
// access and is what tests and offline runs use. FromConfig picks one of them
// from the [embedding] configuration section.
package embed
