package alarm

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Sensor is a monitored device with a binary active flag.
type Sensor struct {
	// ID uniquely identifies the sensor; names may repeat.
	ID uuid.UUID `yaml:"id"`
	// Name is the label chosen by the user.
	Name string `yaml:"name"`
	// Type is the kind of device.
	Type SensorType `yaml:"type"`
	// Active is true while the sensor is triggered.
	Active bool `yaml:"active"`
}

// NewSensor creates an inactive sensor with a fresh ID.
func NewSensor(name string, sensorType SensorType) *Sensor {
	return &Sensor{
		ID:   uuid.New(),
		Name: name,
		Type: sensorType,
	}
}

// Clone returns a copy of the sensor.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// SortSensors orders sensors by name and then by ID so listings are stable.
func SortSensors(sensors []*Sensor) {
	slices.SortFunc(sensors, func(a, b *Sensor) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}

// CloneSensors deep-copies a sensor set.
func CloneSensors(sensors []*Sensor) []*Sensor {
	result := make([]*Sensor, 0, len(sensors))
	for _, s := range sensors {
		result = append(result, s.Clone())
	}

	return result
}
