// Package performance computes trading performance statistics from recorded trades.
package performance

import (
	"robinhood-trader/internal/models"
)

// Stats summarizes engine performance over a set of recorded trades.
type Stats struct {
	TotalTrades   int
	FilledTrades  int
	Wins          int
	Losses        int
	WinRate       float64
	TotalPnL      float64
	AvgPnL        float64
	AvgConfidence float64
	ByStrategy    map[string]*StrategyStats
}

// StrategyStats summarizes performance attributed to a single strategy.
type StrategyStats struct {
	Name          string
	Trades        int
	Wins          int
	WinRate       float64
	TotalPnL      float64
	AvgConfidence float64
}

// Compute derives statistics from recorded trades. Only FILLED SELL trades
// carry realized PnL; win rate is computed over those.
func Compute(trades []models.Trade) *Stats {
	stats := &Stats{
		ByStrategy: make(map[string]*StrategyStats),
	}

	var confidenceSum float64
	var closed int
	sellsByStrategy := make(map[string]int)

	for _, t := range trades {
		stats.TotalTrades++
		confidenceSum += t.Confidence

		if t.Status != models.OrderFilled {
			continue
		}
		stats.FilledTrades++

		strat := stats.ByStrategy[t.Strategy]
		if strat == nil {
			strat = &StrategyStats{Name: t.Strategy}
			stats.ByStrategy[t.Strategy] = strat
		}
		strat.Trades++
		strat.AvgConfidence += t.Confidence

		if t.Side != models.SideSell {
			continue
		}
		closed++
		sellsByStrategy[t.Strategy]++
		stats.TotalPnL += t.RealizedPnL
		strat.TotalPnL += t.RealizedPnL
		if t.RealizedPnL > 0 {
			stats.Wins++
			strat.Wins++
		} else {
			stats.Losses++
		}
	}

	if stats.TotalTrades > 0 {
		stats.AvgConfidence = confidenceSum / float64(stats.TotalTrades)
	}
	if closed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(closed)
		stats.AvgPnL = stats.TotalPnL / float64(closed)
	}
	for _, strat := range stats.ByStrategy {
		if strat.Trades > 0 {
			strat.AvgConfidence /= float64(strat.Trades)
		}
		if sells := sellsByStrategy[strat.Name]; sells > 0 {
			strat.WinRate = float64(strat.Wins) / float64(sells)
		}
	}

	return stats
}
