// Package broker provides brokerage collaborator interfaces and implementations.
package broker

import (
	"context"

	"robinhood-trader/internal/models"
)

// MarketData defines the interface for the market data provider.
type MarketData interface {
	// FetchSeries returns up to lookback daily candles for the symbol,
	// ascending by time. Returns errors.ErrSymbolNotFound or
	// errors.ErrDataUnavailable on failure; partial history is allowed.
	FetchSeries(ctx context.Context, symbol string, lookback int) ([]models.Candle, error)

	// GetQuote returns the latest quote for the symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Gateway defines the interface for the brokerage execution gateway.
type Gateway interface {
	// Submit sends an order and returns the gateway's terminal verdict.
	// A transport or auth failure is reported as an error (see
	// errors.IsTransientGateway); a business rejection comes back as a
	// result with status REJECTED, not an error.
	Submit(ctx context.Context, req *models.OrderRequest) (*models.ExecutionResult, error)

	// SessionValid reports whether the gateway session is usable.
	SessionValid() bool

	// RefreshSession re-establishes the gateway session.
	RefreshSession(ctx context.Context) error

	// GetPortfolio returns the current account snapshot.
	GetPortfolio(ctx context.Context) (models.PortfolioSnapshot, error)
}
