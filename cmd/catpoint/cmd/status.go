package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/service/control"
)

func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the alarm status, arming status and sensors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, new(control.Options), func(ctx context.Context, s *control.Session) error {
				out := cmd.OutOrStdout()
				state := s.Service.State(ctx)

				printState(out, state)

				if state.LastActor != nil && !state.Timestamp.IsZero() {
					_, _ = fmt.Fprintf(
						out,
						"Changed by %s@%s at %s\n",
						state.LastActor.Username,
						state.LastActor.Hostname,
						state.Timestamp.Format(time.RFC3339),
					)
				}

				printSensors(out, s.Service.Sensors(ctx))

				return nil
			})
		},
	}
}
