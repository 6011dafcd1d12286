// Package detect locates embedded AC3 elementary streams inside opaque
// container blobs.
//
// Detection runs several independent scanners over the same read-only buffer.
// Each scanner proposes Candidates from a different structural assumption:
// exact sync words, sync words behind a few bytes of padding, coarse frame
// patterns sampled at a fixed stride, and regions between known container
// markers. Once those finish, the gap scanner proposes low-confidence regions
// for large unclaimed spans, and Resolve collapses the union into a
// non-overlapping set ranked by confidence.
//
// Scanners are pure functions and never fail: a scanner that finds nothing
// returns an empty slice. Use Detector to run the full pipeline.
package detect
