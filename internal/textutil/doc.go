// Package textutil provides text normalization, lexical fingerprints and
// small string helpers shared by the index, embedding and CLI packages.
//
// The primary use cases are:
//   - Normalizing text (NFKC plus case folding) before comparison
//   - Creating term-frequency fingerprints and TF-IDF weights for lexical ranking
//   - Producing character n-grams for the local embedder
//   - Deriving filesystem-safe tokens from arbitrary strings
//
// Tokenization normalizes text, splits on anything that is not a letter or
// digit, drops tokens shorter than 3 characters and folds simple plurals.
package textutil
