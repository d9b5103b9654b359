// Package main hosts the vidrag CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into pipeline runs,
// retrieval-backed questions, interactive chat sessions, and listings of the
// runs and conversations persisted in the local SQLite store. It centralizes
// configuration resolution and logger construction, and builds every service
// handle (transcriber, embedder, text generator, store) before injecting it
// into the internal packages.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
