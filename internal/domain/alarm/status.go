package alarm

import (
	"errors"
	"fmt"
	"strings"
)

// AlarmStatus is the alert level reported to the user.
type AlarmStatus string

const (
	// NoAlarm means nothing needs attention.
	NoAlarm AlarmStatus = "NO_ALARM"
	// PendingAlarm means one sensor fired while the system was armed.
	PendingAlarm AlarmStatus = "PENDING_ALARM"
	// Alarm means the system is alarming.
	Alarm AlarmStatus = "ALARM"
)

// ArmingStatus tells whether the system is monitoring and in which mode.
type ArmingStatus string

const (
	// Disarmed turns monitoring off.
	Disarmed ArmingStatus = "DISARMED"
	// ArmedHome monitors sensors and the camera while people are at home.
	ArmedHome ArmingStatus = "ARMED_HOME"
	// ArmedAway monitors sensors while nobody is at home.
	ArmedAway ArmingStatus = "ARMED_AWAY"
)

// SensorType is the kind of monitored device.
type SensorType string

const (
	// Door is a door contact sensor.
	Door SensorType = "DOOR"
	// Window is a window contact sensor.
	Window SensorType = "WINDOW"
	// Motion is a motion detector.
	Motion SensorType = "MOTION"
)

var (
	// ErrInvalidAlarmStatus is returned when a value is not a known alarm status.
	ErrInvalidAlarmStatus = errors.New("invalid alarm status")
	// ErrInvalidArmingStatus is returned when a value is not a known arming status.
	ErrInvalidArmingStatus = errors.New("invalid arming status")
	// ErrInvalidSensorType is returned when a value is not a known sensor type.
	ErrInvalidSensorType = errors.New("invalid sensor type")
)

// Valid reports whether s is one of the known alarm statuses.
func (s AlarmStatus) Valid() bool {
	switch s {
	case NoAlarm, PendingAlarm, Alarm:
		return true
	default:
		return false
	}
}

// Description returns the text shown to the user.
func (s AlarmStatus) Description() string {
	switch s {
	case NoAlarm:
		return "Cool and Good"
	case PendingAlarm:
		return "I'm in Danger..."
	case Alarm:
		return "Awooga!"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known arming statuses.
func (s ArmingStatus) Valid() bool {
	switch s {
	case Disarmed, ArmedHome, ArmedAway:
		return true
	default:
		return false
	}
}

// Armed reports whether the system is monitoring in any mode.
func (s ArmingStatus) Armed() bool {
	return s == ArmedHome || s == ArmedAway
}

// Valid reports whether t is one of the known sensor types.
func (t SensorType) Valid() bool {
	switch t {
	case Door, Window, Motion:
		return true
	default:
		return false
	}
}

// ParseArmingStatus converts user input such as "armed-home" to an ArmingStatus.
func ParseArmingStatus(s string) (ArmingStatus, error) {
	status := ArmingStatus(normalize(s))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidArmingStatus, s)
	}

	return status, nil
}

// ParseSensorType converts user input such as "window" to a SensorType.
func ParseSensorType(s string) (SensorType, error) {
	sensorType := SensorType(normalize(s))
	if !sensorType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSensorType, s)
	}

	return sensorType, nil
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}
