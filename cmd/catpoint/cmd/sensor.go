package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/service/control"
)

func newSensorCommand(opts *globalOptions) *cobra.Command {
	sensorCmd := &cobra.Command{
		Use:   "sensor",
		Short: "Manage door, window and motion sensors.",
		Long: `Manage sensors. A sensor is referenced by its ID or, when unique, by its name.`,
	}

	sensorCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sensors.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSession(cmd, opts, new(control.Options), func(ctx context.Context, s *control.Session) error {
					printSensors(cmd.OutOrStdout(), s.Service.Sensors(ctx))

					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name> door|window|motion",
			Short: "Add an inactive sensor.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sensorType, err := domain.ParseSensorType(args[1])
				if err != nil {
					return err
				}

				return withSession(cmd, opts, &control.Options{Mutating: true}, func(ctx context.Context, s *control.Session) error {
					sensor, err := s.Service.AddSensor(ctx, s.Actor, args[0], sensorType)
					if err != nil {
						return err
					}

					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s sensor %q (%s)\n", sensor.Type, sensor.Name, sensor.ID)

					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <sensor>",
			Short: "Remove a sensor.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, opts, &control.Options{Mutating: true}, func(ctx context.Context, s *control.Session) error {
					sensor, err := s.Service.RemoveSensor(ctx, s.Actor, args[0])
					if err != nil {
						return err
					}

					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed sensor %q (%s)\n", sensor.Name, sensor.ID)

					return nil
				})
			},
		},
		newActivationCommand(opts, "activate", true),
		newActivationCommand(opts, "deactivate", false),
	)

	return sensorCmd
}

func newActivationCommand(opts *globalOptions, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <sensor>",
		Short: fmt.Sprintf("Mark a sensor %sd.", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, &control.Options{Mutating: true}, func(ctx context.Context, s *control.Session) error {
				state, err := s.Service.ChangeSensorActivation(ctx, s.Actor, args[0], active)
				if err != nil {
					return err
				}

				printState(cmd.OutOrStdout(), state)

				return nil
			})
		},
	}
}
