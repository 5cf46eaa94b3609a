package strategy

import (
	"fmt"

	"robinhood-trader/internal/indicators"
	"robinhood-trader/internal/models"
)

// SMACrossover implements a moving-average crossover strategy.
//
// BUY when the short SMA crosses above the long SMA on the latest two
// observations; SELL on the mirrored downward cross; HOLD otherwise.
// Confidence scales with the percentage gap between the two averages.
type SMACrossover struct {
	shortWindow int
	longWindow  int
}

// NewSMACrossover creates a new SMA crossover strategy. Defaults to
// 50/200 windows when given non-positive or inverted values.
func NewSMACrossover(shortWindow, longWindow int) *SMACrossover {
	if shortWindow <= 0 || longWindow <= shortWindow {
		shortWindow, longWindow = 50, 200
	}
	return &SMACrossover{
		shortWindow: shortWindow,
		longWindow:  longWindow,
	}
}

func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_crossover_%d_%d", s.shortWindow, s.longWindow)
}

func (s *SMACrossover) RequiredData() []string {
	return []string{"candles"}
}

// Analyze evaluates the crossover on the latest two observations.
func (s *SMACrossover) Analyze(symbol string, data *MarketData) TradeSignal {
	if sig := validate(s, data); sig != nil {
		return *sig
	}

	candles := data.Candles
	// Two defined points of the long SMA are needed for cross detection.
	if len(candles) < s.longWindow+1 {
		return hold(s.Name(), fmt.Sprintf(
			"insufficient price history: need %d periods, got %d", s.longWindow+1, len(candles)))
	}

	shortVals, err := indicators.NewSMA(s.shortWindow).Calculate(candles)
	if err != nil {
		return hold(s.Name(), fmt.Sprintf("short SMA undefined: %v", err))
	}
	longVals, err := indicators.NewSMA(s.longWindow).Calculate(candles)
	if err != nil {
		return hold(s.Name(), fmt.Sprintf("long SMA undefined: %v", err))
	}

	n := len(candles)
	shortPrev, shortCur := shortVals[n-2], shortVals[n-1]
	longPrev, longCur := longVals[n-2], longVals[n-1]

	if longCur == 0 {
		return hold(s.Name(), "long SMA is zero")
	}

	pctGap := (shortCur - longCur) / longCur
	confidence := clamp01(abs(pctGap) * 10)

	switch {
	case shortPrev <= longPrev && shortCur > longCur:
		return TradeSignal{
			Strategy:   s.Name(),
			Side:       models.SideBuy,
			Confidence: confidence,
			Rationale: fmt.Sprintf("short SMA (%.2f) crossed above long SMA (%.2f), gap %.2f%%",
				shortCur, longCur, pctGap*100),
		}
	case shortPrev >= longPrev && shortCur < longCur:
		return TradeSignal{
			Strategy:   s.Name(),
			Side:       models.SideSell,
			Confidence: confidence,
			Rationale: fmt.Sprintf("short SMA (%.2f) crossed below long SMA (%.2f), gap %.2f%%",
				shortCur, longCur, pctGap*100),
		}
	default:
		return hold(s.Name(), fmt.Sprintf("no crossover: short SMA %.2f, long SMA %.2f", shortCur, longCur))
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
