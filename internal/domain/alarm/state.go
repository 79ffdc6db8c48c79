package alarm

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Actor identifies who performed an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string `yaml:"hostname"`
	// Username is the system user who triggered the action.
	Username string `yaml:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// State is the system-wide status shared by every event.
type State struct {
	// AlarmStatus is the current alert level.
	AlarmStatus AlarmStatus `yaml:"alarm_status"`
	// ArmingStatus is the current monitoring mode.
	ArmingStatus ArmingStatus `yaml:"arming_status"`
	// CatDetected is the verdict of the last processed image.
	CatDetected bool `yaml:"cat_detected"`
	// Timestamp is when the state was last changed.
	Timestamp time.Time `yaml:"timestamp"`
	// LastActor is the user who last changed the state, if known.
	LastActor *Actor `yaml:"last_actor,omitempty"`
}

// DefaultState returns the state of a freshly installed system.
func DefaultState() *State {
	return &State{
		AlarmStatus:  NoAlarm,
		ArmingStatus: Disarmed,
	}
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	return &State{
		AlarmStatus:  s.AlarmStatus,
		ArmingStatus: s.ArmingStatus,
		CatDetected:  s.CatDetected,
		Timestamp:    s.Timestamp,
		LastActor:    s.LastActor.Clone(),
	}
}

// Snapshot is everything the state machine reads and writes for one event.
type Snapshot struct {
	State   *State
	Sensors []*Sensor
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		State:   s.State.Clone(),
		Sensors: CloneSensors(s.Sensors),
	}
}

// Sensor returns the sensor with the given ID, or nil.
func (s *Snapshot) Sensor(id uuid.UUID) *Sensor {
	sensor, ok := lo.Find(s.Sensors, func(item *Sensor) bool {
		return item.ID == id
	})
	if !ok {
		return nil
	}

	return sensor
}

// AnySensorActive reports whether at least one sensor is active.
func (s *Snapshot) AnySensorActive() bool {
	return lo.SomeBy(s.Sensors, func(item *Sensor) bool {
		return item.Active
	})
}
