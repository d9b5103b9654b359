// Package config loads, normalizes, and validates vidrag configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as OPENAI_API_KEY and GEMINI_API_KEY. The Config
// type centralizes every knob the pipeline and CLI need: tool binaries, chunk
// and overlap lengths, worker pool size, retry attempts, embedding and
// generation providers, and the retrieval backend.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config
