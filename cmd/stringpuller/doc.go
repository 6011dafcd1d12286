// Package main hosts the StringPuller CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the internal
// packages: extract and scan drive detection, convert runs ffmpeg over
// existing streams, history reads the run database, and status and config
// cover environment checks and configuration scaffolding. Configuration
// loading and logger setup happen once per invocation in commandContext so
// subcommands only deal with presentation.
package main
