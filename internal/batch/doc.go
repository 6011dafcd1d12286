// Package batch drives extraction across many container files.
//
// A Runner expands input paths, then for each file reads it, runs the
// detector, writes the resolved streams, and optionally converts them to
// WAV. Files are processed concurrently up to extraction.max_resident_files
// so only that many buffers are held in memory at once. Each file's failure
// is recorded on its FileResult; one bad file never stops the run.
//
// When a Recorder is attached, the run and every file outcome are stored in
// the history database.
package batch
