// Package alarm contains the core domain of the security system.
//
// It defines the alarm, arming and sensor enumerations, the Sensor and State
// types, and Machine, the state machine that decides the next alarm status
// for every sensor, arming or image event. Machine has no locking and no I/O:
// callers serialize access and persist the resulting Snapshot themselves.
package alarm
