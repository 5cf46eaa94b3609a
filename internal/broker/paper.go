package broker

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"robinhood-trader/internal/errors"
	"robinhood-trader/internal/models"
)

// PaperBroker simulates the brokerage for paper trading. It implements both
// the MarketData and Gateway interfaces: market data is a deterministic
// per-symbol random walk, and orders fill instantly at the request's
// reference price against a simulated cash balance.
type PaperBroker struct {
	mu          sync.RWMutex
	cash        float64
	equity      float64
	positions   map[string]int
	seriesCache map[string][]models.Candle
}

// PaperBrokerConfig holds configuration for the paper broker.
type PaperBrokerConfig struct {
	InitialBalance float64
}

// NewPaperBroker creates a new paper trading broker.
func NewPaperBroker(cfg PaperBrokerConfig) *PaperBroker {
	balance := cfg.InitialBalance
	if balance == 0 {
		balance = 10000
	}
	return &PaperBroker{
		cash:        balance,
		equity:      balance,
		positions:   make(map[string]int),
		seriesCache: make(map[string][]models.Candle),
	}
}

// FetchSeries returns a deterministic simulated candle series. The walk is
// seeded by the symbol so repeated calls within a process return the same
// snapshot.
func (p *PaperBroker) FetchSeries(ctx context.Context, symbol string, lookback int) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, "fetching series")
	}
	if symbol == "" {
		return nil, errors.ErrSymbolNotFound
	}
	if lookback <= 0 {
		lookback = 365
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.seriesCache[symbol]; ok && len(cached) >= lookback {
		return cached[len(cached)-lookback:], nil
	}

	candles := simulateSeries(symbol, lookback)
	p.seriesCache[symbol] = candles
	return candles, nil
}

// GetQuote returns a quote derived from the latest simulated candle.
func (p *PaperBroker) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	series, err := p.FetchSeries(ctx, symbol, 2)
	if err != nil {
		return nil, err
	}
	last := series[len(series)-1]
	quote := &models.Quote{
		Symbol:    symbol,
		LastPrice: last.Close,
		Volume:    last.Volume,
		Timestamp: last.Timestamp,
	}
	if len(series) > 1 {
		quote.PreviousClose = series[len(series)-2].Close
	}
	return quote, nil
}

// Submit fills the order instantly at the reference price.
func (p *PaperBroker) Submit(ctx context.Context, req *models.OrderRequest) (*models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewGatewayError("TIMEOUT", "context cancelled", true, err)
	}
	if req == nil || req.Quantity <= 0 || req.Price <= 0 {
		return nil, errors.ErrInvalidOrder
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	notional := float64(req.Quantity) * req.Price

	switch req.Side {
	case models.SideBuy:
		if notional > p.cash {
			return &models.ExecutionResult{
				Status:    models.OrderRejected,
				OrderID:   uuid.NewString(),
				Error:     "insufficient funds",
				Timestamp: time.Now(),
			}, nil
		}
		p.cash -= notional
		p.positions[req.Symbol] += req.Quantity
	case models.SideSell:
		held := p.positions[req.Symbol]
		if held < req.Quantity {
			return &models.ExecutionResult{
				Status:    models.OrderRejected,
				OrderID:   uuid.NewString(),
				Error:     "no position to sell",
				Timestamp: time.Now(),
			}, nil
		}
		p.cash += notional
		p.positions[req.Symbol] -= req.Quantity
		if p.positions[req.Symbol] == 0 {
			delete(p.positions, req.Symbol)
		}
	default:
		return nil, errors.ErrInvalidOrder
	}

	return &models.ExecutionResult{
		Status:         models.OrderFilled,
		OrderID:        uuid.NewString(),
		FilledQuantity: req.Quantity,
		FilledPrice:    req.Price,
		Timestamp:      time.Now(),
	}, nil
}

// SessionValid always reports true for paper trading.
func (p *PaperBroker) SessionValid() bool {
	return true
}

// RefreshSession is a no-op for paper trading.
func (p *PaperBroker) RefreshSession(ctx context.Context) error {
	return nil
}

// GetPortfolio returns the simulated account snapshot. Equity is cash plus
// open positions valued at their latest simulated close.
func (p *PaperBroker) GetPortfolio(ctx context.Context) (models.PortfolioSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	equity := p.cash
	for symbol, qty := range p.positions {
		if series, ok := p.seriesCache[symbol]; ok && len(series) > 0 {
			equity += float64(qty) * series[len(series)-1].Close
		}
	}

	return models.PortfolioSnapshot{
		Equity:      equity,
		BuyingPower: p.cash,
		Timestamp:   time.Now(),
	}, nil
}

// simulateSeries builds a seeded random-walk daily series for a symbol.
func simulateSeries(symbol string, length int) []models.Candle {
	rng := rand.New(rand.NewSource(seedFor(symbol)))
	candles := make([]models.Candle, length)

	price := 50 + rng.Float64()*200
	start := time.Now().AddDate(0, 0, -length)

	for i := 0; i < length; i++ {
		open := price
		drift := (rng.Float64() - 0.5) * 0.04 * price
		close := math.Max(1, open+drift)
		high := math.Max(open, close) * (1 + rng.Float64()*0.01)
		low := math.Min(open, close) * (1 - rng.Float64()*0.01)

		candles[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    int64(1_000_000 + rng.Intn(9_000_000)),
		}
		price = close
	}
	return candles
}

func seedFor(symbol string) int64 {
	var seed int64
	for _, r := range symbol {
		seed = seed*31 + int64(r)
	}
	return seed
}
