package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/oshokin/catpoint/internal/service/control"
	"github.com/oshokin/catpoint/internal/vision"
)

var errConflictingVerdicts = errors.New("--assume-cat and --assume-clear are mutually exclusive")

func newScanCommand(opts *globalOptions) *cobra.Command {
	var assumeCat, assumeClear bool

	scanCmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Run the camera cat check on an image file.",
		Long: `Decodes a PNG, JPEG or GIF image and asks the classifier whether it shows a cat.

A cat seen while armed at home raises the alarm. An image without a cat clears
the alarm as long as no sensor is active. Without a cloud classifier the
verdict is random; --assume-cat and --assume-clear force it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if assumeCat && assumeClear {
				return errConflictingVerdicts
			}

			img, err := vision.LoadImage(args[0])
			if err != nil {
				return err
			}

			sessionOptions := &control.Options{Mutating: true}

			switch {
			case assumeCat:
				sessionOptions.Classifier = vision.StaticClassifier(true)
			case assumeClear:
				sessionOptions.Classifier = vision.StaticClassifier(false)
			}

			return withSession(cmd, opts, sessionOptions, func(ctx context.Context, s *control.Session) error {
				state, err := s.Service.ProcessImage(ctx, s.Actor, img)
				if err != nil {
					return err
				}

				printState(cmd.OutOrStdout(), state)

				return nil
			})
		},
	}

	scanCmd.Flags().BoolVar(&assumeCat, "assume-cat", false, "treat the image as containing a cat")
	scanCmd.Flags().BoolVar(&assumeClear, "assume-clear", false, "treat the image as containing no cat")

	return scanCmd
}
