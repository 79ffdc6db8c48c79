// Package security hosts the alarm state machine.
//
// Service owns the current snapshot, serializes every event under a single
// lock, persists the result through a repository and only then exposes it,
// so a failed write leaves the previous state in place.
package security
