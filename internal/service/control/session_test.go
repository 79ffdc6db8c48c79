package control

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/service/lock"
)

// TestDetectActor ensures hostname and username are detected and non-empty.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}

// writeConfig stores settings for the given backend in a temporary directory.
func writeConfig(t *testing.T, storage string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	require.NoError(t, config.Save(path, &config.Config{
		Storage:      storage,
		StateFile:    filepath.Join(dir, "state.yaml"),
		DatabaseFile: filepath.Join(dir, "state.db"),
		LogLevel:     "warn",
	}))

	return path
}

// TestOpen_PersistsAcrossSessions reopens the store for every backend.
func TestOpen_PersistsAcrossSessions(t *testing.T) {
	t.Parallel()

	for _, storage := range []string{config.StorageFile, config.StorageSQLite} {
		t.Run(storage, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			cfgPath := writeConfig(t, storage)

			s, err := Open(ctx, &Options{ConfigPath: cfgPath, Mutating: true})
			require.NoError(t, err)

			_, err = s.Service.AddSensor(ctx, s.Actor, "door", domain.Door)
			require.NoError(t, err)

			_, err = s.Service.SetArmingStatus(ctx, s.Actor, domain.ArmedAway)
			require.NoError(t, err)

			_, err = s.Service.ChangeSensorActivation(ctx, s.Actor, "door", true)
			require.NoError(t, err)
			require.NoError(t, s.Close())

			s, err = Open(ctx, &Options{ConfigPath: cfgPath})
			require.NoError(t, err)

			defer func() {
				require.NoError(t, s.Close())
			}()

			state := s.Service.State(ctx)
			require.Equal(t, domain.PendingAlarm, state.AlarmStatus)
			require.Equal(t, domain.ArmedAway, state.ArmingStatus)
			require.Equal(t, s.Actor, state.LastActor)

			sensors := s.Service.Sensors(ctx)
			require.Len(t, sensors, 1)
			require.True(t, sensors[0].Active)
		})
	}
}

// TestOpen_MutatingSessionsAreExclusive checks that the lock blocks a second writer.
func TestOpen_MutatingSessionsAreExclusive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfgPath := writeConfig(t, config.StorageFile)

	first, err := Open(ctx, &Options{ConfigPath: cfgPath, Mutating: true})
	require.NoError(t, err)

	_, err = Open(ctx, &Options{ConfigPath: cfgPath, Mutating: true})
	require.ErrorIs(t, err, lock.ErrLocked)

	// Readers do not take the lock.
	reader, err := Open(ctx, &Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	require.NoError(t, first.Close())

	second, err := Open(ctx, &Options{ConfigPath: cfgPath, Mutating: true})
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

// TestOpen_RejectsUnknownLogLevel reports a bad override.
func TestOpen_RejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), &Options{ConfigPath: writeConfig(t, config.StorageFile), LogLevel: "loud"})
	require.ErrorIs(t, err, errUnknownLogLevel)
}
