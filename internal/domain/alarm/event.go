package alarm

import (
	"fmt"

	"github.com/google/uuid"
)

// EventKind enumerates the inputs the state machine reacts to.
type EventKind int

const (
	// EventSensorActivated reports that a sensor was triggered.
	EventSensorActivated EventKind = iota + 1
	// EventSensorDeactivated reports that a sensor returned to rest.
	EventSensorDeactivated
	// EventArmingChanged reports a new arming status chosen by the user.
	EventArmingChanged
	// EventImageClassified reports the verdict of the cat classifier.
	EventImageClassified
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventSensorActivated:
		return "sensor_activated"
	case EventSensorDeactivated:
		return "sensor_deactivated"
	case EventArmingChanged:
		return "arming_changed"
	case EventImageClassified:
		return "image_classified"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a single input dispatched into the Machine.
// Only the fields relevant to Kind are read.
type Event struct {
	Kind EventKind
	// SensorID is set for sensor events.
	SensorID uuid.UUID
	// Arming is set for EventArmingChanged.
	Arming ArmingStatus
	// ContainsCat is set for EventImageClassified.
	ContainsCat bool
}

// SensorActivated builds an EventSensorActivated event.
func SensorActivated(id uuid.UUID) Event {
	return Event{Kind: EventSensorActivated, SensorID: id}
}

// SensorDeactivated builds an EventSensorDeactivated event.
func SensorDeactivated(id uuid.UUID) Event {
	return Event{Kind: EventSensorDeactivated, SensorID: id}
}

// ArmingChanged builds an EventArmingChanged event.
func ArmingChanged(status ArmingStatus) Event {
	return Event{Kind: EventArmingChanged, Arming: status}
}

// ImageClassified builds an EventImageClassified event.
func ImageClassified(containsCat bool) Event {
	return Event{Kind: EventImageClassified, ContainsCat: containsCat}
}
