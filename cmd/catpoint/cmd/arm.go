package cmd

import (
	"context"

	"github.com/spf13/cobra"

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
	"github.com/oshokin/catpoint/internal/service/control"
)

func newArmCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "arm home|away",
		Short:     "Arm the system; every sensor is reset to inactive.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"home", "away"},
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseArmingStatus("ARMED_" + args[0])
			if err != nil {
				return err
			}

			return setArming(cmd, opts, status)
		},
	}
}

func newDisarmCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disarm",
		Short: "Disarm the system and clear any alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setArming(cmd, opts, domain.Disarmed)
		},
	}
}

func setArming(cmd *cobra.Command, opts *globalOptions, status domain.ArmingStatus) error {
	sessionOptions := &control.Options{Mutating: true}

	return withSession(cmd, opts, sessionOptions, func(ctx context.Context, s *control.Session) error {
		state, err := s.Service.SetArmingStatus(ctx, s.Actor, status)
		if err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), state)

		return nil
	})
}
