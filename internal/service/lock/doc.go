// Package lock serializes catpoint commands that mutate the shared state.
//
// A marker file next to the state store records the PID of the owner. The
// marker is considered stale when that process is gone or runs a different
// executable. A marker without a readable PID is honoured for MaxAge.
package lock
