// Package synth turns retrieved transcript context into prose with a text
// generation backend.
//
// Three templated calls are offered: Answer for a question over retrieved
// chunks, Summarize for a short overview of a whole transcript, and Suggest for
// follow-up questions. None of them return an error value. Answer and
// Summarize fold failures into a readable message and Suggest returns nil, so
// an interactive session never stops on a model outage. Failures are logged
// with the services.ErrSynthesis marker.
package synth
