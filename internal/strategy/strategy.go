// Package strategy provides trading strategy implementations and signal aggregation.
package strategy

import (
	"fmt"

	"robinhood-trader/internal/models"
)

// TradeSignal represents a directional signal with confidence and rationale.
// Confidence is normalized to [0,1]. Signals are immutable values produced
// once per (strategy, symbol, evaluation).
type TradeSignal struct {
	Strategy   string
	Side       models.Side
	Confidence float64
	Rationale  string
}

// AggregatedSignal combines signals from multiple strategies for one symbol.
type AggregatedSignal struct {
	Symbol     string
	Side       models.Side
	Confidence float64
	Rationales []string
}

// MarketData is an immutable snapshot of market data for one symbol.
// It is never mutated after construction; strategies only read it, which
// makes parallel evaluation safe.
type MarketData struct {
	Symbol  string
	Candles []models.Candle
	Quote   *models.Quote
}

// Has reports whether the named data field is present and non-empty.
func (d *MarketData) Has(field string) bool {
	if d == nil {
		return false
	}
	switch field {
	case "candles":
		return len(d.Candles) > 0
	case "quote":
		return d.Quote != nil
	default:
		return false
	}
}

// Strategy defines the interface for trading strategies.
// Implementations must be free of shared mutable state so that multiple
// strategies can be evaluated in parallel over the same snapshot.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string
	// Analyze evaluates the data snapshot and returns a signal.
	// Data problems degrade to HOLD with zero confidence, never an error.
	Analyze(symbol string, data *MarketData) TradeSignal
	// RequiredData returns the data fields the strategy needs.
	RequiredData() []string
}

// hold builds a HOLD signal with zero confidence.
func hold(name, rationale string) TradeSignal {
	return TradeSignal{
		Strategy:   name,
		Side:       models.SideHold,
		Confidence: 0,
		Rationale:  rationale,
	}
}

// validate checks that all required data fields are present. It returns a
// degraded HOLD signal naming the first missing field, or nil when complete.
func validate(s Strategy, data *MarketData) *TradeSignal {
	for _, field := range s.RequiredData() {
		if !data.Has(field) {
			sig := hold(s.Name(), fmt.Sprintf("missing required data field: %s", field))
			return &sig
		}
	}
	return nil
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
