// Package diag defines the diagnostic model shared by the checker, the
// language server and the CLI.
//
// A Diagnostic is a finding positioned in document coordinates: zero-based
// lines and UTF-16 characters, the way editors count them. It carries the
// engine's message, the ordered replacement suggestions, and the rule that
// fired. Quick fixes are not stored here; internal/fix derives them on demand
// from the suggestions, so a diagnostic stays plain data that can be cached
// (msgpack) and rendered (JSON) without side effects.
//
// Bag collects diagnostics with an optional limit and offers deterministic
// Sort and Dedup for output.
package diag
