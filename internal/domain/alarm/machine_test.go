package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newHouse builds the window/door/motion snapshot used throughout these tests.
func newHouse(status AlarmStatus, arming ArmingStatus) (*Machine, map[string]*Sensor) {
	sensors := map[string]*Sensor{
		"window": NewSensor("window", Window),
		"door":   NewSensor("door", Door),
		"motion": NewSensor("motion", Motion),
	}

	snapshot := &Snapshot{
		State: &State{
			AlarmStatus:  status,
			ArmingStatus: arming,
		},
		Sensors: []*Sensor{sensors["window"], sensors["door"], sensors["motion"]},
	}

	return NewMachine(snapshot), sensors
}

func alarmStatus(m *Machine) AlarmStatus {
	return m.Snapshot().State.AlarmStatus
}

// TestSensorActivated_ArmedNoAlarm_Pending covers NO_ALARM -> PENDING_ALARM for every sensor and armed mode.
func TestSensorActivated_ArmedNoAlarm_Pending(t *testing.T) {
	t.Parallel()

	for _, arming := range []ArmingStatus{ArmedHome, ArmedAway} {
		for _, name := range []string{"window", "door", "motion"} {
			m, sensors := newHouse(NoAlarm, arming)

			m.HandleSensorActivated(sensors[name])

			require.Equal(t, PendingAlarm, alarmStatus(m), "%s/%s", arming, name)
			require.True(t, sensors[name].Active)
		}
	}
}

// TestSensorActivated_ArmedPending_Alarm covers PENDING_ALARM -> ALARM, including a second sensor.
func TestSensorActivated_ArmedPending_Alarm(t *testing.T) {
	t.Parallel()

	for _, arming := range []ArmingStatus{ArmedHome, ArmedAway} {
		m, sensors := newHouse(PendingAlarm, arming)
		sensors["window"].Active = true

		m.HandleSensorActivated(sensors["door"])

		require.Equal(t, Alarm, alarmStatus(m))
	}
}

// TestSensorActivated_AlreadyActivePending_Alarm activates an active sensor while pending.
func TestSensorActivated_AlreadyActivePending_Alarm(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(PendingAlarm, ArmedAway)
	sensors["window"].Active = true

	m.HandleSensorActivated(sensors["window"])

	require.Equal(t, Alarm, alarmStatus(m))
}

// TestSensorActivated_Disarmed_NoChange keeps the alarm status while disarmed.
func TestSensorActivated_Disarmed_NoChange(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(NoAlarm, Disarmed)

	m.HandleSensorActivated(sensors["door"])

	require.Equal(t, NoAlarm, alarmStatus(m))
	require.True(t, sensors["door"].Active)
}

// TestAlarm_SinkForSensorEvents ensures no sensor event moves the machine out of ALARM.
func TestAlarm_SinkForSensorEvents(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(Alarm, ArmedAway)

	m.HandleSensorActivated(sensors["window"])
	require.Equal(t, Alarm, alarmStatus(m))

	m.HandleSensorActivated(sensors["door"])
	require.Equal(t, Alarm, alarmStatus(m))

	m.HandleSensorDeactivated(sensors["window"])
	m.HandleSensorDeactivated(sensors["door"])
	require.Equal(t, Alarm, alarmStatus(m))
	require.False(t, m.Snapshot().AnySensorActive())
}

// TestSensorDeactivated_LastActiveClearsPending clears a pending alarm only on the last active sensor.
func TestSensorDeactivated_LastActiveClearsPending(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(PendingAlarm, ArmedHome)
	for _, s := range sensors {
		s.Active = true
	}

	m.HandleSensorDeactivated(sensors["window"])
	require.Equal(t, PendingAlarm, alarmStatus(m))

	m.HandleSensorDeactivated(sensors["door"])
	require.Equal(t, PendingAlarm, alarmStatus(m))

	m.HandleSensorDeactivated(sensors["motion"])
	require.Equal(t, NoAlarm, alarmStatus(m))
}

// TestSensorDeactivated_AlreadyInactive_NoChange leaves every status untouched.
func TestSensorDeactivated_AlreadyInactive_NoChange(t *testing.T) {
	t.Parallel()

	for _, status := range []AlarmStatus{NoAlarm, PendingAlarm, Alarm} {
		m, sensors := newHouse(status, ArmedAway)

		m.HandleSensorDeactivated(sensors["motion"])

		require.Equal(t, status, alarmStatus(m))
		require.False(t, sensors["motion"].Active)
	}
}

// TestArming_ResetsSensors forces every sensor inactive regardless of alarm status.
func TestArming_ResetsSensors(t *testing.T) {
	t.Parallel()

	for _, arming := range []ArmingStatus{ArmedHome, ArmedAway} {
		for _, status := range []AlarmStatus{NoAlarm, PendingAlarm, Alarm} {
			m, sensors := newHouse(status, Disarmed)
			for _, s := range sensors {
				s.Active = true
			}

			m.HandleArmingStatusChanged(arming)

			require.False(t, m.Snapshot().AnySensorActive())
			require.Equal(t, status, alarmStatus(m))
			require.Equal(t, arming, m.Snapshot().State.ArmingStatus)
		}
	}
}

// TestArming_DisarmedClearsAlarm forces NO_ALARM from every status.
func TestArming_DisarmedClearsAlarm(t *testing.T) {
	t.Parallel()

	for _, status := range []AlarmStatus{NoAlarm, PendingAlarm, Alarm} {
		m, sensors := newHouse(status, ArmedAway)
		sensors["door"].Active = true

		m.HandleArmingStatusChanged(Disarmed)

		require.Equal(t, NoAlarm, alarmStatus(m))
		require.Equal(t, Disarmed, m.Snapshot().State.ArmingStatus)
		require.True(t, sensors["door"].Active)
	}
}

// TestArming_HomeWithCatDetected_Alarm raises the alarm when arming at home after a cat was seen.
func TestArming_HomeWithCatDetected_Alarm(t *testing.T) {
	t.Parallel()

	m, _ := newHouse(NoAlarm, Disarmed)
	m.HandleImageResult(true)
	require.Equal(t, NoAlarm, alarmStatus(m))

	m.HandleArmingStatusChanged(ArmedHome)
	require.Equal(t, Alarm, alarmStatus(m))

	m, _ = newHouse(NoAlarm, Disarmed)
	m.HandleImageResult(true)
	m.HandleArmingStatusChanged(ArmedAway)
	require.Equal(t, NoAlarm, alarmStatus(m))
}

// TestImageResult_CatArmedHome_Alarm forces ALARM regardless of prior status and sensors.
func TestImageResult_CatArmedHome_Alarm(t *testing.T) {
	t.Parallel()

	for _, status := range []AlarmStatus{NoAlarm, PendingAlarm, Alarm} {
		m, sensors := newHouse(status, ArmedHome)
		sensors["window"].Active = status != NoAlarm

		m.HandleImageResult(true)

		require.Equal(t, Alarm, alarmStatus(m))
		require.True(t, m.Snapshot().State.CatDetected)
	}
}

// TestImageResult_CatNotArmedHome_NoChange ignores cats unless armed at home.
func TestImageResult_CatNotArmedHome_NoChange(t *testing.T) {
	t.Parallel()

	for _, arming := range []ArmingStatus{Disarmed, ArmedAway} {
		m, _ := newHouse(NoAlarm, arming)

		m.HandleImageResult(true)

		require.Equal(t, NoAlarm, alarmStatus(m))
	}
}

// TestImageResult_NoCat clears the alarm only while every sensor is inactive.
func TestImageResult_NoCat(t *testing.T) {
	t.Parallel()

	for _, sensorActive := range []bool{false, true} {
		m, sensors := newHouse(Alarm, ArmedHome)
		sensors["door"].Active = sensorActive

		m.HandleImageResult(false)

		if sensorActive {
			require.Equal(t, Alarm, alarmStatus(m))
		} else {
			require.Equal(t, NoAlarm, alarmStatus(m))
		}

		require.False(t, m.Snapshot().State.CatDetected)
	}
}

// TestDispatch_Scenario walks window, door, then window off while armed away.
func TestDispatch_Scenario(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(NoAlarm, ArmedAway)

	require.NoError(t, m.Dispatch(SensorActivated(sensors["window"].ID)))
	require.Equal(t, PendingAlarm, alarmStatus(m))

	require.NoError(t, m.Dispatch(SensorActivated(sensors["door"].ID)))
	require.Equal(t, Alarm, alarmStatus(m))

	require.NoError(t, m.Dispatch(SensorDeactivated(sensors["window"].ID)))
	require.Equal(t, Alarm, alarmStatus(m))
}

// TestDispatch_Routing covers arming and image events and the rejected inputs.
func TestDispatch_Routing(t *testing.T) {
	t.Parallel()

	m, sensors := newHouse(NoAlarm, Disarmed)
	sensors["door"].Active = true

	require.NoError(t, m.Dispatch(ArmingChanged(ArmedHome)))
	require.False(t, sensors["door"].Active)

	require.NoError(t, m.Dispatch(ImageClassified(true)))
	require.Equal(t, Alarm, alarmStatus(m))

	before := m.Snapshot().Clone()

	err := m.Dispatch(SensorActivated(NewSensor("ghost", Door).ID))
	require.ErrorIs(t, err, ErrSensorNotFound)

	err = m.Dispatch(ArmingChanged("SLEEPING"))
	require.ErrorIs(t, err, ErrInvalidArmingStatus)

	err = m.Dispatch(Event{Kind: EventKind(42)})
	require.ErrorIs(t, err, ErrUnknownEvent)

	require.Equal(t, before, m.Snapshot())
}
