// -- cmd/run.go --
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/chakram-cli/internal/altmode"
	"github.com/xkilldash9x/chakram-cli/internal/analyzer"
	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/config"
	"github.com/xkilldash9x/chakram-cli/internal/controller"
	"github.com/xkilldash9x/chakram-cli/internal/diag"
	"github.com/xkilldash9x/chakram-cli/internal/input"
	"github.com/xkilldash9x/chakram-cli/internal/observability"
	"github.com/xkilldash9x/chakram-cli/internal/transition"
)

var (
	runInputDriver   string
	runBackendDriver string
	runDiag          bool
	runDiagAddr      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller against the physical stick.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		if runInputDriver != "" {
			appConfig.SetInputDriver(runInputDriver)
		}
		if runBackendDriver != "" {
			appConfig.SetBackendDriver(runBackendDriver)
		}
		if runDiagAddr != "" {
			appConfig.SetDiagAddr(runDiagAddr)
		}

		src, err := input.New(appConfig.Input(), logger.Named("input"))
		if err != nil {
			return err
		}
		defer src.Close()

		be, err := backend.New(appConfig.Backend(), logger.Named("backend"))
		if err != nil {
			return err
		}
		defer be.Close()

		ctrl, err := buildController(appConfig, src, be, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return ctrl.Run(ctx) })

		if runDiag || appConfig.Diag().Enabled {
			d := diag.New(diag.Config{
				Addr:          appConfig.Diag().Addr,
				BroadcastRate: appConfig.Diag().BroadcastRate,
			}, ctrl.Snapshot, logger.Named("diag"))
			g.Go(func() error { return d.Run(ctx) })
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// buildController assembles the pipeline from validated configuration.
func buildController(cfg config.Interface, src input.Source, be backend.Backend, logger *zap.Logger) (*controller.Controller, error) {
	table, err := cfg.SectorTable()
	if err != nil {
		return nil, err
	}
	transitionCfg, err := cfg.Transition()
	if err != nil {
		return nil, err
	}
	machine, err := transition.New(transitionCfg, be, logger.Named("transition"))
	if err != nil {
		return nil, err
	}

	earlyTrigger, earlyConf := cfg.EarlyTrigger()

	return controller.New(controller.Options{
		Source:              src,
		Analyzer:            analyzer.New(cfg.Analyzer()),
		Machine:             machine,
		Overlay:             altmode.New(cfg.AltMode(), be, logger.Named("altmode")),
		Logger:              logger.Named("controller"),
		Table:               table,
		Deadzone:            cfg.Deadzone(),
		TickRate:            cfg.Controller().TickRate,
		EarlyTrigger:        earlyTrigger,
		EarlyTriggerMinConf: earlyConf,
	}), nil
}

func init() {
	runCmd.Flags().StringVar(&runInputDriver, "input", "", "input driver: sdl, hid or synthetic")
	runCmd.Flags().StringVar(&runBackendDriver, "backend", "", "injection driver: auto, uinput, robotgo or mock")
	runCmd.Flags().BoolVar(&runDiag, "diag", false, "serve the diagnostics endpoint")
	runCmd.Flags().StringVar(&runDiagAddr, "diag-addr", "", "diagnostics listen address")
	rootCmd.AddCommand(runCmd)
}
