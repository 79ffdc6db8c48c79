package alarm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent is returned by Dispatch for an event kind it does not handle.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrSensorNotFound is returned when an event names a sensor outside the snapshot.
	ErrSensorNotFound = errors.New("sensor not found")
)

// Machine applies the alarm rules to a Snapshot.
//
// Every handler runs to completion and mutates the snapshot in place.
// Machine performs no locking; callers must serialize access.
type Machine struct {
	snapshot *Snapshot
}

// NewMachine returns a machine operating on snapshot.
func NewMachine(snapshot *Snapshot) *Machine {
	return &Machine{
		snapshot: snapshot,
	}
}

// Snapshot returns the snapshot the machine operates on.
func (m *Machine) Snapshot() *Snapshot {
	return m.snapshot
}

// Dispatch validates ev and routes it to the matching handler.
// An invalid event leaves the snapshot untouched.
func (m *Machine) Dispatch(ev Event) error {
	switch ev.Kind {
	case EventSensorActivated, EventSensorDeactivated:
		sensor := m.snapshot.Sensor(ev.SensorID)
		if sensor == nil {
			return fmt.Errorf("%w: %s", ErrSensorNotFound, ev.SensorID)
		}

		if ev.Kind == EventSensorActivated {
			m.HandleSensorActivated(sensor)
		} else {
			m.HandleSensorDeactivated(sensor)
		}
	case EventArmingChanged:
		if !ev.Arming.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidArmingStatus, ev.Arming)
		}

		m.HandleArmingStatusChanged(ev.Arming)
	case EventImageClassified:
		m.HandleImageResult(ev.ContainsCat)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Kind)
	}

	return nil
}

// HandleSensorActivated marks sensor active and escalates the alarm when armed.
// Activating a sensor that is already active still escalates.
func (m *Machine) HandleSensorActivated(sensor *Sensor) {
	state := m.snapshot.State

	if state.ArmingStatus.Armed() {
		switch state.AlarmStatus {
		case NoAlarm:
			state.AlarmStatus = PendingAlarm
		case PendingAlarm:
			state.AlarmStatus = Alarm
		case Alarm:
			// Sink for sensor events.
		}
	}

	sensor.Active = true
}

// HandleSensorDeactivated marks sensor inactive. A pending alarm is cleared
// once no sensor remains active; ALARM is never relaxed here.
func (m *Machine) HandleSensorDeactivated(sensor *Sensor) {
	if !sensor.Active {
		return
	}

	sensor.Active = false

	if m.snapshot.State.AlarmStatus == PendingAlarm && !m.snapshot.AnySensorActive() {
		m.snapshot.State.AlarmStatus = NoAlarm
	}
}

// HandleArmingStatusChanged records the new arming status. Disarming clears
// the alarm, arming resets every sensor to inactive.
func (m *Machine) HandleArmingStatusChanged(status ArmingStatus) {
	state := m.snapshot.State
	state.ArmingStatus = status

	if status == Disarmed {
		state.AlarmStatus = NoAlarm

		return
	}

	for _, sensor := range m.snapshot.Sensors {
		sensor.Active = false
	}

	// The camera already saw a cat before the user armed at home.
	if status == ArmedHome && state.CatDetected {
		state.AlarmStatus = Alarm
	}
}

// HandleImageResult applies the cat classifier verdict.
func (m *Machine) HandleImageResult(containsCat bool) {
	state := m.snapshot.State
	state.CatDetected = containsCat

	switch {
	case containsCat && state.ArmingStatus == ArmedHome:
		state.AlarmStatus = Alarm
	case !containsCat && !m.snapshot.AnySensorActive():
		state.AlarmStatus = NoAlarm
	}
}
