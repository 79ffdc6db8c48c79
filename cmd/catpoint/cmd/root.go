package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/service/control"
	"github.com/oshokin/catpoint/internal/service/security"
	"github.com/oshokin/catpoint/internal/version"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string
}

// NewRootCommand builds the catpoint command tree.
func NewRootCommand() *cobra.Command {
	opts := new(globalOptions)

	rootCmd := &cobra.Command{
		Use:   "catpoint",
		Short: "Control the catpoint home security system.",
		Long: `Arm or disarm the system, manage door, window and motion sensors, and run
the camera cat check.

Every command loads the shared state, applies one event to the alarm state
machine and stores the result. Commands that change state hold a lock so two
invocations never interleave.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().
		StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&opts.logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newStatusCommand(opts),
		newArmCommand(opts),
		newDisarmCommand(opts),
		newSensorCommand(opts),
		newScanCommand(opts),
	)

	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// Execute runs the catpoint CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above.
	}
}

// withSession opens a session, names the logger after the command and runs fn.
func withSession(
	cmd *cobra.Command,
	opts *globalOptions,
	sessionOptions *control.Options,
	fn func(ctx context.Context, s *control.Session) error,
) (err error) {
	ctx := logger.WithName(cmd.Context(), "catpoint."+cmd.Name())

	sessionOptions.ConfigPath = opts.configPath
	sessionOptions.LogLevel = opts.logLevel
	sessionOptions.Listeners = append(sessionOptions.Listeners, printingListener(cmd.OutOrStdout()))

	s, err := control.Open(ctx, sessionOptions)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, s)
}

// printingListener reports alarm transitions on the command output.
func printingListener(w io.Writer) security.Listener {
	return security.ListenerFuncs{
		OnAlarmStatus: func(_ context.Context, from, to domain.AlarmStatus) {
			_, _ = fmt.Fprintf(w, "Alarm status changed: %s -> %s (%s)\n", from, to, to.Description())
		},
		OnCatDetected: func(_ context.Context, detected bool) {
			if detected {
				_, _ = fmt.Fprintln(w, "DANGER - CAT DETECTED")
			} else {
				_, _ = fmt.Fprintln(w, "Camera: no cats detected")
			}
		},
	}
}

// printState writes a short summary of the system state.
func printState(w io.Writer, state *domain.State) {
	_, _ = fmt.Fprintf(w, "Alarm:  %s (%s)\n", state.AlarmStatus, state.AlarmStatus.Description())
	_, _ = fmt.Fprintf(w, "Arming: %s\n", state.ArmingStatus)
}

// printSensors writes one sensor per line.
func printSensors(w io.Writer, sensors []*domain.Sensor) {
	if len(sensors) == 0 {
		_, _ = fmt.Fprintln(w, "No sensors")

		return
	}

	for _, sensor := range sensors {
		status := "inactive"
		if sensor.Active {
			status = "active"
		}

		_, _ = fmt.Fprintf(w, "%s  %-8s %-8s %s\n", sensor.ID, sensor.Type, status, sensor.Name)
	}
}
