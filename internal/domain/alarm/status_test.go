package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseArmingStatus accepts loose user spelling and rejects unknown values.
func TestParseArmingStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]ArmingStatus{
		"disarmed":    Disarmed,
		"armed-home":  ArmedHome,
		" ARMED_AWAY": ArmedAway,
	}
	for in, want := range cases {
		got, err := ParseArmingStatus(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseArmingStatus("armed")
	require.ErrorIs(t, err, ErrInvalidArmingStatus)
}

// TestParseSensorType covers every sensor type.
func TestParseSensorType(t *testing.T) {
	t.Parallel()

	for _, want := range []SensorType{Door, Window, Motion} {
		got, err := ParseSensorType(string(want))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseSensorType("smoke")
	require.ErrorIs(t, err, ErrInvalidSensorType)
}

// TestAlarmStatusDescription gives every valid alarm status a label.
func TestAlarmStatusDescription(t *testing.T) {
	t.Parallel()

	for _, status := range []AlarmStatus{NoAlarm, PendingAlarm, Alarm} {
		require.True(t, status.Valid())
		require.NotEmpty(t, status.Description())
	}

	require.False(t, AlarmStatus("PANIC").Valid())
}

// TestArmingStatusArmed separates armed modes from disarmed.
func TestArmingStatusArmed(t *testing.T) {
	t.Parallel()

	require.True(t, ArmedHome.Armed())
	require.True(t, ArmedAway.Armed())
	require.False(t, Disarmed.Armed())
}
