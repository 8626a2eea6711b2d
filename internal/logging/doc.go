// Package logging builds the process slog.Logger from configuration.
//
// Output goes to stdout, stderr or a size-rotated file. LOG_LEVEL in the
// environment overrides the configured level.
package logging
