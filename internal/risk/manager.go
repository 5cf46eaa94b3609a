// Package risk provides portfolio-level risk state and trade authorization.
package risk

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"robinhood-trader/internal/config"
	"robinhood-trader/internal/errors"
	"robinhood-trader/internal/models"
	"robinhood-trader/internal/strategy"
)

// State holds the portfolio-level risk state. It has a single writer, the
// Manager, and is only read or mutated under the Manager's lock.
type State struct {
	StartingEquity   float64
	DailyRealizedPnL float64
	OpenPositions    map[string]models.Position
	TradingDate      time.Time
}

// Manager approves, rejects, or resizes proposed trades against portfolio
// risk limits. All Evaluate calls within a cycle must go through the same
// Manager: position-count and daily-loss checks are cycle-wide invariants,
// so evaluation is serialized under one mutex.
type Manager struct {
	cfg           config.RiskConfig
	minConfidence float64
	tradeAmount   float64
	logger        zerolog.Logger
	now           func() time.Time

	mu    sync.Mutex
	state State
}

// NewManager creates a risk manager initialized from configuration.
// tradeAmount is the default trade notional: an approved BUY is sized from
// the risk percentage but never below this amount.
func NewManager(cfg config.RiskConfig, minConfidence, tradeAmount float64, logger zerolog.Logger) *Manager {
	m := &Manager{
		cfg:           cfg,
		minConfidence: minConfidence,
		tradeAmount:   tradeAmount,
		logger:        logger.With().Str("component", "risk").Logger(),
		now:           time.Now,
	}
	m.state = State{
		StartingEquity: cfg.StartingEquity,
		OpenPositions:  make(map[string]models.Position),
		TradingDate:    m.now(),
	}
	return m
}

// StartSession initializes the session from a portfolio snapshot: starting
// equity is taken from the snapshot and the daily realized PnL resets.
func (m *Manager) StartSession(snapshot models.PortfolioSnapshot) error {
	if !snapshot.Valid() {
		return errors.Wrap(errors.ErrConfigInvalid, "portfolio snapshot missing equity or buying power")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.StartingEquity = snapshot.Equity
	m.state.DailyRealizedPnL = 0
	m.state.TradingDate = m.now()
	m.logger.Info().
		Float64("starting_equity", snapshot.Equity).
		Msg("Risk session started")
	return nil
}

// Evaluate turns an aggregated signal into an authorized order request, or
// a rejection. Rejections are returned as *errors.RiskError; a malformed
// snapshot is a configuration error fatal to the evaluation.
//
// Evaluate never mutates open positions: mutation happens only on a
// confirmed fill via ApplyFill, so risk state reflects broker-confirmed
// reality rather than intent.
func (m *Manager) Evaluate(sig strategy.AggregatedSignal, symbol string, currentPrice float64, snapshot models.PortfolioSnapshot) (*models.OrderRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(m.now())

	if !snapshot.Valid() {
		return nil, errors.Wrapf(errors.ErrConfigInvalid,
			"portfolio snapshot for %s missing equity or buying power", symbol)
	}
	if currentPrice <= 0 {
		return nil, errors.NewValidationError("current_price", currentPrice, "must be positive")
	}

	if sig.Side == models.SideHold {
		return nil, errors.NewRiskError("signal_side", 0, 0, "aggregated signal is HOLD")
	}
	if sig.Confidence < m.minConfidence {
		return nil, errors.NewRiskError("min_confidence", sig.Confidence, m.minConfidence,
			"signal confidence below minimum")
	}

	switch sig.Side {
	case models.SideBuy:
		return m.evaluateBuyLocked(sig, symbol, currentPrice, snapshot)
	case models.SideSell:
		return m.evaluateSellLocked(sig, symbol, currentPrice)
	default:
		return nil, errors.NewValidationError("side", sig.Side, "unknown signal side")
	}
}

func (m *Manager) evaluateBuyLocked(sig strategy.AggregatedSignal, symbol string, price float64, snapshot models.PortfolioSnapshot) (*models.OrderRequest, error) {
	if m.haltedLocked() {
		return nil, errors.NewRiskError("daily_loss_limit",
			m.state.DailyRealizedPnL, -m.maxDailyLoss(),
			"daily loss circuit breaker tripped, no new BUYs")
	}
	if len(m.state.OpenPositions) >= m.cfg.MaxPositions {
		return nil, errors.NewRiskError("max_positions",
			float64(len(m.state.OpenPositions)), float64(m.cfg.MaxPositions),
			"maximum concurrent positions reached")
	}
	if _, open := m.state.OpenPositions[symbol]; open {
		return nil, errors.NewRiskError("duplicate_position", 1, 0,
			"symbol already has an open position")
	}

	budget := snapshot.Equity * (m.cfg.RiskPctPerTrade / 100)
	if budget < m.tradeAmount {
		// The configured default trade amount is the sizing floor for
		// small accounts.
		budget = m.tradeAmount
	}
	quantity := int(math.Floor(budget / price))
	if quantity < 1 {
		quantity = 1
	}
	if notional := float64(quantity) * price; notional > snapshot.BuyingPower {
		quantity = int(math.Floor(snapshot.BuyingPower / price))
	}
	if quantity < 1 {
		return nil, errors.NewRiskError("buying_power", snapshot.BuyingPower, price,
			"insufficient buying power for a single share")
	}

	return m.newRequestLocked(symbol, models.SideBuy, quantity, price, sig), nil
}

func (m *Manager) evaluateSellLocked(sig strategy.AggregatedSignal, symbol string, price float64) (*models.OrderRequest, error) {
	pos, open := m.state.OpenPositions[symbol]
	if !open || pos.Quantity <= 0 {
		return nil, errors.NewRiskError("no_position", 0, 0,
			"no open position to sell")
	}

	// Full close only: no partial-close policy.
	return m.newRequestLocked(symbol, models.SideSell, pos.Quantity, price, sig), nil
}

func (m *Manager) newRequestLocked(symbol string, side models.Side, quantity int, price float64, sig strategy.AggregatedSignal) *models.OrderRequest {
	req := &models.OrderRequest{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Type:      models.OrderTypeMarket,
		Price:     price,
		Reason:    joinRationales(sig.Rationales),
		CreatedAt: m.now(),
	}
	m.logger.Info().
		Str("order_id", req.ID).
		Str("symbol", symbol).
		Str("side", string(side)).
		Int("quantity", quantity).
		Float64("price", price).
		Float64("confidence", sig.Confidence).
		Msg("Trade approved")
	return req
}

// ApplyFill mutates risk state for a broker-confirmed fill: positions are
// added on BUY, removed on SELL, and realized PnL is booked on SELL.
func (m *Manager) ApplyFill(req *models.OrderRequest, result *models.ExecutionResult) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch req.Side {
	case models.SideBuy:
		m.state.OpenPositions[req.Symbol] = models.Position{
			Symbol:       req.Symbol,
			Quantity:     result.FilledQuantity,
			AveragePrice: result.FilledPrice,
			OpenedAt:     result.Timestamp,
		}
		return 0
	case models.SideSell:
		pos, open := m.state.OpenPositions[req.Symbol]
		if !open {
			return 0
		}
		pnl := (result.FilledPrice - pos.AveragePrice) * float64(result.FilledQuantity)
		m.state.DailyRealizedPnL += pnl
		delete(m.state.OpenPositions, req.Symbol)
		m.logger.Info().
			Str("symbol", req.Symbol).
			Float64("realized_pnl", pnl).
			Float64("daily_pnl", m.state.DailyRealizedPnL).
			Msg("Position closed")
		return pnl
	default:
		return 0
	}
}

// Halted reports whether the daily-loss circuit breaker is tripped.
func (m *Manager) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolloverLocked(m.now())
	return m.haltedLocked()
}

func (m *Manager) haltedLocked() bool {
	return m.state.DailyRealizedPnL <= -m.maxDailyLoss()
}

func (m *Manager) maxDailyLoss() float64 {
	return m.state.StartingEquity * (m.cfg.MaxDailyLossPct / 100)
}

// rolloverLocked resets daily counters when the trading date changes.
func (m *Manager) rolloverLocked(now time.Time) {
	y1, m1, d1 := m.state.TradingDate.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		m.state.DailyRealizedPnL = 0
		m.state.TradingDate = now
		m.logger.Info().Msg("Daily risk counters reset")
	}
}

// Snapshot returns a summary of current risk state for persistence.
func (m *Manager) Snapshot() models.RiskSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.RiskSnapshot{
		Timestamp:        m.now(),
		StartingEquity:   m.state.StartingEquity,
		DailyRealizedPnL: m.state.DailyRealizedPnL,
		OpenPositions:    len(m.state.OpenPositions),
		Halted:           m.haltedLocked(),
	}
}

// Positions returns a copy of the open positions map.
func (m *Manager) Positions() map[string]models.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.Position, len(m.state.OpenPositions))
	for k, v := range m.state.OpenPositions {
		out[k] = v
	}
	return out
}

func joinRationales(rationales []string) string {
	if len(rationales) == 0 {
		return ""
	}
	out := rationales[0]
	for _, r := range rationales[1:] {
		out += "; " + r
	}
	return out
}
