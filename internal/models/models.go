// Package models provides domain models for the trading engine.
package models

import (
	"time"
)

// Side represents the direction of a trading signal or order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
	SideHold Side = "HOLD"
)

// OrderType represents the type of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents a market quote.
type Quote struct {
	Symbol        string
	LastPrice     float64
	PreviousClose float64
	BidPrice      float64
	AskPrice      float64
	Volume        int64
	Timestamp     time.Time
}

// Position represents an open position.
type Position struct {
	Symbol       string
	Quantity     int
	AveragePrice float64
	OpenedAt     time.Time
}

// Value returns the cost-basis value of the position.
func (p Position) Value() float64 {
	return float64(p.Quantity) * p.AveragePrice
}

// PortfolioSnapshot represents account state as reported by the brokerage.
type PortfolioSnapshot struct {
	Equity      float64
	BuyingPower float64
	Timestamp   time.Time
}

// Valid reports whether the snapshot carries usable account figures.
func (s PortfolioSnapshot) Valid() bool {
	return s.Equity > 0 && s.BuyingPower >= 0
}
