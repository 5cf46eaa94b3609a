package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"robinhood-trader/internal/risk"
	"robinhood-trader/internal/trading"
)

// newRunCmd creates the run command that drives the trading loop.
func newRunCmd(app *App) *cobra.Command {
	var (
		once     bool
		symbols  []string
		interval string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading decision loop",
		Long: `Run the trading engine: every cycle, each configured symbol is evaluated
by the active strategies, the signals are aggregated, and approved trades are
sized and executed through the gateway. Use --once for a single cycle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			engine, err := buildEngine(app)
			if err != nil {
				return err
			}

			cycleSymbols := symbols
			if len(cycleSymbols) == 0 {
				cycleSymbols = app.Config.Trading.Symbols
			}

			cycleInterval := app.Config.Trading.CycleInterval
			if interval != "" {
				cycleInterval = interval
			}
			every, err := time.ParseDuration(cycleInterval)
			if err != nil {
				return fmt.Errorf("invalid cycle interval %q: %w", cycleInterval, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if app.Config.Trading.Mode == "paper" {
				output.Warning("Paper trading mode: orders are simulated")
			}
			output.Info("Watching %d symbols, cycle every %s", len(cycleSymbols), every)

			if once {
				result, err := engine.RunCycle(ctx, cycleSymbols)
				if err != nil {
					return err
				}
				printCycleResult(output, result)
				return nil
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()

			for {
				result, err := engine.RunCycle(ctx, cycleSymbols)
				if err != nil {
					return err
				}
				printCycleResult(output, result)

				select {
				case <-ctx.Done():
					output.Info("Shutting down")
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	cmd.Flags().StringSliceVarP(&symbols, "symbols", "s", nil, "symbols to trade (default: configured watchlist)")
	cmd.Flags().StringVarP(&interval, "interval", "i", "", "cycle interval, e.g. 15m (default: configured)")
	return cmd
}

// buildEngine wires the strategies, risk manager, orchestrator and engine
// from the application dependencies.
func buildEngine(app *App) (*trading.Engine, error) {
	cfg := app.Config

	strategies, err := app.Registry.Build(cfg.Strategies.Active, &cfg.Strategies)
	if err != nil {
		return nil, err
	}

	riskMgr := risk.NewManager(cfg.Risk, cfg.Trading.MinConfidence, cfg.Trading.DefaultTradeAmount, app.Logger)

	portfolioCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snapshot, err := app.Gateway.GetPortfolio(portfolioCtx)
	if err != nil {
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}
	if err := riskMgr.StartSession(snapshot); err != nil {
		return nil, err
	}

	isPaper := cfg.Trading.Mode == "paper"
	orchestrator := trading.NewOrchestrator(app.Gateway, riskMgr, app.Store, app.Logger, isPaper)

	return trading.NewEngine(
		app.MarketData,
		app.Gateway,
		strategies,
		riskMgr,
		orchestrator,
		app.Store,
		cfg,
		app.Logger,
	), nil
}

func printCycleResult(output *Output, result *trading.CycleResult) {
	output.Printf("Cycle finished in %s: %d evaluated, %d approved, %s filled, %d rejected, %d failed\n",
		result.Duration.Round(time.Millisecond),
		result.Evaluated,
		result.Approved,
		output.Green(fmt.Sprintf("%d", result.Filled)),
		result.Rejected,
		result.Failed,
	)
}
