// Package extract writes resolved stream candidates to disk.
//
// Output files are named from the source file's base name, a 1-based
// sequence index and a coarse category inferred from keywords in that base
// name. Writers hold an advisory lock on the output directory while writing
// so concurrent runs cannot interleave files in the same place.
package extract
