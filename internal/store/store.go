// Package store provides data persistence for trades and risk snapshots.
package store

import (
	"context"
	"time"

	"robinhood-trader/internal/models"
)

// DataStore defines the persistence interface consumed by the engine.
type DataStore interface {
	// Trades
	LogTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Risk snapshots
	SaveSnapshot(ctx context.Context, snapshot *models.RiskSnapshot) error
	GetSnapshots(ctx context.Context, from, to time.Time) ([]models.RiskSnapshot, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Side      string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
