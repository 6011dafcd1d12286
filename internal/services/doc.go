// Package services defines shared utilities consumed by the extraction
// pipeline and its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source files, and pipeline stages
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into consistent outcomes (failed vs skipped) for reports and history.
//
// Use these helpers when wiring new pipeline steps so per-file and
// per-stream failure handling stays uniform.
package services
