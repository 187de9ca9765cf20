// -- cmd/simulate.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/input"
	"github.com/xkilldash9x/chakram-cli/internal/observability"
)

var (
	simDuration time.Duration
	simSeed     int64
	simInject   bool
)

// simulateCmd drives the full pipeline from a synthetic stick signal. By
// default all injection goes to a recording mock and a summary is printed;
// --inject sends the events to the real backend instead.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Exercise the pipeline with a synthetic stick signal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		src := input.NewSynthetic(simSeed)
		defer src.Close()

		var be backend.Backend
		var mock *backend.Mock
		if simInject {
			var err error
			be, err = backend.New(appConfig.Backend(), logger.Named("backend"))
			if err != nil {
				return err
			}
		} else {
			mock = backend.NewMock()
			be = mock
		}
		defer be.Close()

		ctrl, err := buildController(appConfig, src, be, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), simDuration)
		defer cancel()

		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if mock != nil {
			printSimSummary(mock.Calls(), simDuration)
		}
		return nil
	},
}

func printSimSummary(calls []string, d time.Duration) {
	var presses, releases, moves int
	for _, call := range calls {
		switch {
		case strings.HasPrefix(call, "press:"):
			presses++
		case strings.HasPrefix(call, "release:"):
			releases++
		case strings.HasPrefix(call, "move:"):
			moves++
		}
	}
	fmt.Printf("simulated %s: %d key presses, %d releases, %d cursor moves (%d backend calls)\n",
		d, presses, releases, moves, len(calls))
}

func init() {
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 10*time.Second, "how long to run the simulation")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "noise seed (0 = fixed default)")
	simulateCmd.Flags().BoolVar(&simInject, "inject", false, "send events to the real backend instead of a dry-run mock")
	rootCmd.AddCommand(simulateCmd)
}
