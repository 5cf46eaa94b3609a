package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"robinhood-trader/pkg/utils"
)

// newRiskCmd creates the risk command for inspecting limits and recorded
// risk state.
func newRiskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Show risk limits and recent risk state",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config.Risk

			if !output.IsJSON() {
				output.Bold("Risk Limits")
				output.Printf("  Max Positions:    %d\n", cfg.MaxPositions)
				output.Printf("  Risk %% Per Trade: %.1f%%\n", cfg.RiskPctPerTrade)
				output.Printf("  Max Daily Loss:   %.1f%% of %s\n", cfg.MaxDailyLossPct, utils.FormatUSD(cfg.StartingEquity))
				output.Printf("  Min Confidence:   %.2f\n", app.Config.Trading.MinConfidence)
				output.Println()
			}

			if app.Store == nil {
				output.Dim("Risk history unavailable: no store.")
				return nil
			}

			now := time.Now()
			snapshots, err := app.Store.GetSnapshots(cmd.Context(), now.AddDate(0, 0, -7), now)
			if err != nil {
				return fmt.Errorf("loading risk snapshots: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"limits":    cfg,
					"snapshots": snapshots,
				})
			}

			if len(snapshots) == 0 {
				output.Dim("No risk snapshots recorded in the last 7 days.")
				return nil
			}

			output.Bold("Recent Risk State")
			table := NewTable(output, "TIME", "DAILY P&L", "POSITIONS", "HALTED")
			for _, snap := range snapshots {
				halted := ""
				if snap.Halted {
					halted = output.Red("HALTED")
				}
				table.AddRow(
					snap.Timestamp.Format("2006-01-02 15:04"),
					output.FormatPnL(snap.DailyRealizedPnL),
					fmt.Sprintf("%d", snap.OpenPositions),
					halted,
				)
			}
			table.Render()
			return nil
		},
	}
	return cmd
}
