package security

import (
	"context"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// Listener is notified after the Service commits a change.
// AlarmStatusChanged and SensorsChanged run while the Service lock is held,
// so they must not call back into the Service.
type Listener interface {
	AlarmStatusChanged(ctx context.Context, from, to domain.AlarmStatus)
	CatDetected(ctx context.Context, detected bool)
	SensorsChanged(ctx context.Context, sensors []*domain.Sensor)
}

// ListenerFuncs adapts optional callbacks to Listener. Nil callbacks are skipped.
type ListenerFuncs struct {
	OnAlarmStatus func(ctx context.Context, from, to domain.AlarmStatus)
	OnCatDetected func(ctx context.Context, detected bool)
	OnSensors     func(ctx context.Context, sensors []*domain.Sensor)
}

// AlarmStatusChanged implements Listener.
func (f ListenerFuncs) AlarmStatusChanged(ctx context.Context, from, to domain.AlarmStatus) {
	if f.OnAlarmStatus != nil {
		f.OnAlarmStatus(ctx, from, to)
	}
}

// CatDetected implements Listener.
func (f ListenerFuncs) CatDetected(ctx context.Context, detected bool) {
	if f.OnCatDetected != nil {
		f.OnCatDetected(ctx, detected)
	}
}

// SensorsChanged implements Listener.
func (f ListenerFuncs) SensorsChanged(ctx context.Context, sensors []*domain.Sensor) {
	if f.OnSensors != nil {
		f.OnSensors(ctx, sensors)
	}
}
