package strategy

import (
	"fmt"

	"robinhood-trader/internal/indicators"
	"robinhood-trader/internal/models"
)

// RSIThreshold implements an RSI overbought/oversold strategy.
//
// BUY when the latest RSI is below the oversold threshold; SELL when it is
// above the overbought threshold; HOLD otherwise. Confidence scales with
// distance from the crossed threshold.
type RSIThreshold struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIThreshold creates a new RSI threshold strategy. Defaults to a
// 14-period RSI with 30/70 thresholds when given invalid values.
func NewRSIThreshold(period int, oversold, overbought float64) *RSIThreshold {
	if period <= 0 {
		period = 14
	}
	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		oversold, overbought = 30, 70
	}
	return &RSIThreshold{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}
}

func (r *RSIThreshold) Name() string {
	return fmt.Sprintf("rsi_threshold_%d", r.period)
}

func (r *RSIThreshold) RequiredData() []string {
	return []string{"candles"}
}

// Analyze evaluates the latest RSI value against the thresholds.
func (r *RSIThreshold) Analyze(symbol string, data *MarketData) TradeSignal {
	if sig := validate(r, data); sig != nil {
		return *sig
	}

	candles := data.Candles
	values, err := indicators.NewRSI(r.period).Calculate(candles)
	if err != nil {
		return hold(r.Name(), fmt.Sprintf(
			"RSI undefined: need %d periods, got %d", r.period+1, len(candles)))
	}

	rsi := values[len(values)-1]

	switch {
	case rsi < r.oversold:
		confidence := clamp01((r.oversold - rsi) / r.oversold)
		return TradeSignal{
			Strategy:   r.Name(),
			Side:       models.SideBuy,
			Confidence: confidence,
			Rationale:  fmt.Sprintf("RSI %.2f below oversold threshold %.0f", rsi, r.oversold),
		}
	case rsi > r.overbought:
		confidence := clamp01((rsi - r.overbought) / (100 - r.overbought))
		return TradeSignal{
			Strategy:   r.Name(),
			Side:       models.SideSell,
			Confidence: confidence,
			Rationale:  fmt.Sprintf("RSI %.2f above overbought threshold %.0f", rsi, r.overbought),
		}
	default:
		return hold(r.Name(), fmt.Sprintf("RSI %.2f in neutral zone (%.0f-%.0f)", rsi, r.oversold, r.overbought))
	}
}
