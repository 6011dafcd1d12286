// Package logging builds the slog loggers used across StringPuller.
//
// New returns a console or JSON logger; NewFromConfig adds a JSON log file
// under the configured log directory. WithContext stamps run IDs, source
// files, and stages carried on a context, and WarnWithContext keeps warnings
// searchable by event type.
package logging
