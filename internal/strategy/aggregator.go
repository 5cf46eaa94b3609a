package strategy

import (
	"fmt"

	"robinhood-trader/internal/models"
)

// Aggregator combines the signals of all enabled strategies for one symbol
// into a single decision. It is a pure function over an immutable signal
// list: no shared accumulator is mutated across strategies.
type Aggregator struct{}

// NewAggregator creates a new signal aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Combine applies majority voting over the non-HOLD signals.
//
// The side with more votes wins; an equal BUY/SELL count resolves to HOLD.
// The winning confidence is the mean of the agreeing signals' confidences.
// When no signal is non-HOLD the result is HOLD with zero confidence.
func (a *Aggregator) Combine(symbol string, signals []TradeSignal) AggregatedSignal {
	result := AggregatedSignal{
		Symbol: symbol,
		Side:   models.SideHold,
	}

	var buyVotes, sellVotes int
	for _, sig := range signals {
		switch sig.Side {
		case models.SideBuy:
			buyVotes++
		case models.SideSell:
			sellVotes++
		}
	}

	var winner models.Side
	switch {
	case buyVotes > sellVotes:
		winner = models.SideBuy
	case sellVotes > buyVotes:
		winner = models.SideSell
	default:
		// Ties, including the all-HOLD case, resolve to HOLD.
		for _, sig := range signals {
			result.Rationales = append(result.Rationales, taggedRationale(sig))
		}
		return result
	}

	// Only agreeing strategies contribute confidence and rationale.
	var total float64
	var agreeing int
	for _, sig := range signals {
		if sig.Side == winner {
			result.Rationales = append(result.Rationales, taggedRationale(sig))
			total += sig.Confidence
			agreeing++
		}
	}

	result.Side = winner
	result.Confidence = total / float64(agreeing)
	return result
}

func taggedRationale(sig TradeSignal) string {
	return fmt.Sprintf("[%s] %s", sig.Strategy, sig.Rationale)
}
