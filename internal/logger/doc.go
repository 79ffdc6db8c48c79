// Package logger wraps zap with a global sugared logger and context helpers.
//
// Commands attach a named logger to their context once (WithName) and every
// package below logs through the context, so each line carries the name of
// the component that produced it. Output goes to stderr to keep command
// output on stdout machine-readable.
package logger
