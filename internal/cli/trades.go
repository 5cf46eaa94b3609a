package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"robinhood-trader/internal/performance"
	"robinhood-trader/internal/store"
	"robinhood-trader/pkg/utils"
)

// newTradesCmd creates the trades command for listing recorded trades.
func newTradesCmd(app *App) *cobra.Command {
	var (
		symbol string
		side   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List recorded trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("trade store is unavailable")
			}

			trades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{
				Symbol: strings.ToUpper(symbol),
				Side:   strings.ToUpper(side),
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("loading trades: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Dim("No trades recorded yet.")
				return nil
			}

			table := NewTable(output, "TIME", "SYMBOL", "SIDE", "QTY", "PRICE", "STATUS", "STRATEGY", "P&L")
			for _, trade := range trades {
				pnl := ""
				if trade.Side == "SELL" {
					pnl = output.FormatPnL(trade.RealizedPnL)
				}
				table.AddRow(
					trade.Timestamp.Format("2006-01-02 15:04"),
					trade.Symbol,
					output.SideString(string(trade.Side)),
					utils.FormatQuantity(int64(trade.Quantity)),
					utils.FormatUSD(trade.Price),
					string(trade.Status),
					trade.Strategy,
					pnl,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol")
	cmd.Flags().StringVar(&side, "side", "", "filter by side (BUY/SELL)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of trades")
	return cmd
}

// newStatsCmd creates the stats command summarizing trading performance.
func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show trading performance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("trade store is unavailable")
			}

			trades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{})
			if err != nil {
				return fmt.Errorf("loading trades: %w", err)
			}

			stats := performance.Compute(trades)
			if output.IsJSON() {
				return output.JSON(stats)
			}

			output.Bold("Performance")
			output.Printf("  Total Trades:   %d (%d filled)\n", stats.TotalTrades, stats.FilledTrades)
			output.Printf("  Wins / Losses:  %d / %d\n", stats.Wins, stats.Losses)
			output.Printf("  Win Rate:       %.1f%%\n", stats.WinRate*100)
			output.Printf("  Total P&L:      %s\n", output.FormatPnL(stats.TotalPnL))
			output.Printf("  Avg P&L:        %s\n", output.FormatPnL(stats.AvgPnL))
			output.Printf("  Avg Confidence: %s\n", utils.FormatConfidence(stats.AvgConfidence))

			if len(stats.ByStrategy) > 0 {
				output.Println()
				output.Bold("By Strategy")
				table := NewTable(output, "STRATEGY", "TRADES", "WIN RATE", "P&L", "AVG CONF")
				for name, s := range stats.ByStrategy {
					table.AddRow(
						name,
						fmt.Sprintf("%d", s.Trades),
						fmt.Sprintf("%.1f%%", s.WinRate*100),
						output.FormatPnL(s.TotalPnL),
						utils.FormatConfidence(s.AvgConfidence),
					)
				}
				table.Render()
			}
			return nil
		},
	}
	return cmd
}
