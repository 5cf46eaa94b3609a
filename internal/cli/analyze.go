package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"robinhood-trader/internal/models"
	"robinhood-trader/internal/strategy"
	"robinhood-trader/pkg/utils"
)

// newAnalyzeCmd creates the analyze command for inspecting signals on a
// single symbol without trading.
func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Evaluate the active strategies for a symbol",
		Long:  "Fetch price history for a symbol and show each strategy's signal plus the aggregated decision. No orders are placed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(args[0])
			output := NewOutput(cmd)

			strategies, err := app.Registry.Build(app.Config.Strategies.Active, &app.Config.Strategies)
			if err != nil {
				return err
			}

			candles, err := app.MarketData.FetchSeries(cmd.Context(), symbol, app.Config.Trading.LookbackDays)
			if err != nil {
				return fmt.Errorf("fetching history for %s: %w", symbol, err)
			}
			if len(candles) == 0 {
				return fmt.Errorf("no price history for %s", symbol)
			}

			data := &strategy.MarketData{Symbol: symbol, Candles: candles}
			last := candles[len(candles)-1]

			signals := make([]strategy.TradeSignal, 0, len(strategies))
			for _, strat := range strategies {
				signals = append(signals, strat.Analyze(symbol, data))
			}
			aggregated := strategy.NewAggregator().Combine(symbol, signals)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"last_close": last.Close,
					"signals":    signals,
					"aggregated": aggregated,
				})
			}

			fmt.Println()
			color.Cyan("📊 Signal Analysis - %s", symbol)
			fmt.Println("─────────────────────────────────────────")
			fmt.Printf("Last Close: %s (%s)\n", utils.FormatUSD(last.Close), last.Timestamp.Format("2006-01-02"))
			fmt.Printf("History:    %d candles\n", len(candles))
			fmt.Println()

			table := NewTable(output, "STRATEGY", "SIGNAL", "CONFIDENCE", "RATIONALE")
			for _, sig := range signals {
				table.AddRow(
					sig.Strategy,
					output.SideString(string(sig.Side)),
					utils.FormatConfidence(sig.Confidence),
					sig.Rationale,
				)
			}
			table.Render()
			fmt.Println()

			switch aggregated.Side {
			case models.SideBuy:
				color.Green("✓ Aggregated: BUY (confidence %s)", utils.FormatConfidence(aggregated.Confidence))
			case models.SideSell:
				color.Red("✗ Aggregated: SELL (confidence %s)", utils.FormatConfidence(aggregated.Confidence))
			default:
				color.Yellow("→ Aggregated: HOLD")
			}
			for _, rationale := range aggregated.Rationales {
				output.Dim("  %s", rationale)
			}
			return nil
		},
	}
	return cmd
}
