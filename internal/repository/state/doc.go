// Package state implements persistence for the alarm State and the sensor set.
//
// FileRepository keeps both in one YAML document, SQLiteRepository keeps them
// in two tables. Both commit state and sensors together so a failed write
// never leaves a half-applied transition behind.
package state
