// Package trading provides order orchestration and the evaluation cycle.
package trading

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"robinhood-trader/internal/broker"
	"robinhood-trader/internal/errors"
	"robinhood-trader/internal/logging"
	"robinhood-trader/internal/models"
	"robinhood-trader/internal/risk"
	"robinhood-trader/internal/store"
)

// Orchestrator submits authorized orders to the execution gateway, applies
// confirmed fills to risk state, and records every terminal outcome.
//
// Submissions are serialized per symbol: there are never two in-flight
// orders for the same symbol. Different symbols may submit concurrently.
type Orchestrator struct {
	gateway broker.Gateway
	risk    *risk.Manager
	store   store.DataStore
	logger  zerolog.Logger
	isPaper bool

	submitTimeout time.Duration

	mu      sync.Mutex
	symLock map[string]*sync.Mutex
}

// NewOrchestrator creates a new trade orchestrator.
func NewOrchestrator(gateway broker.Gateway, riskMgr *risk.Manager, dataStore store.DataStore, logger zerolog.Logger, isPaper bool) *Orchestrator {
	return &Orchestrator{
		gateway:       gateway,
		risk:          riskMgr,
		store:         dataStore,
		logger:        logger.With().Str("component", "orchestrator").Logger(),
		isPaper:       isPaper,
		submitTimeout: 30 * time.Second,
		symLock:       make(map[string]*sync.Mutex),
	}
}

// Execute runs an order request to a terminal state and returns the
// recorded result. The lifecycle is PENDING -> SUBMITTED -> {FILLED,
// REJECTED, FAILED}. A transient gateway failure triggers exactly one
// retry, preceded by a session refresh when the session is no longer
// valid, before surfacing as terminal FAILED.
// An order that has been handed to the gateway always runs to a terminal
// state; submissions are not cancelable mid-flight.
func (o *Orchestrator) Execute(ctx context.Context, req *models.OrderRequest, confidence float64, strategyName string) (*models.ExecutionResult, error) {
	lock := o.symbolLock(req.Symbol)
	lock.Lock()
	defer lock.Unlock()

	logger := o.logger.With().
		Str("order_id", req.ID).
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Int("quantity", req.Quantity).
		Logger()

	result, err := o.submitWithRetry(ctx, req, logger)
	if err != nil {
		// Terminal transport failure, recorded for operator review.
		result = &models.ExecutionResult{
			Status:    models.OrderFailed,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
	}

	var pnl float64
	if result.Status == models.OrderFilled {
		pnl = o.risk.ApplyFill(req, result)
		logging.LogTrade(logger, req.Symbol, string(req.Side), result.FilledQuantity, result.FilledPrice)
	}

	o.record(ctx, req, result, confidence, strategyName, pnl, logger)

	logging.LogOrder(logger, req.ID, req.Symbol, string(req.Side), string(result.Status))

	if err != nil {
		return result, errors.NewOrderError(req.ID, req.Symbol, string(req.Side), "submission failed", err)
	}
	return result, nil
}

// submitWithRetry submits to the gateway, retrying at most once when the
// failure is transient. The session is refreshed before the retry if the
// gateway reports it invalid.
func (o *Orchestrator) submitWithRetry(ctx context.Context, req *models.OrderRequest, logger zerolog.Logger) (*models.ExecutionResult, error) {
	submitCtx, cancel := context.WithTimeout(ctx, o.submitTimeout)
	defer cancel()

	logger.Debug().Msg("Submitting order")
	result, err := o.gateway.Submit(submitCtx, req)
	if err == nil {
		return result, nil
	}
	if !errors.IsTransientGateway(err) {
		return nil, err
	}

	// Refresh only when the gateway reports the session unusable; a
	// healthy session means the failure was network-side and a bare
	// resubmit suffices.
	if o.gateway.SessionValid() {
		logger.Warn().Err(err).Msg("Transient gateway failure, retrying")
	} else {
		logger.Warn().Err(err).Msg("Transient gateway failure, refreshing session")
		if refreshErr := o.gateway.RefreshSession(ctx); refreshErr != nil {
			return nil, errors.Wrap(refreshErr, "refreshing gateway session")
		}
	}

	retryCtx, cancelRetry := context.WithTimeout(ctx, o.submitTimeout)
	defer cancelRetry()

	result, err = o.gateway.Submit(retryCtx, req)
	if err != nil {
		return nil, errors.Wrap(err, "retry after session refresh failed")
	}
	return result, nil
}

// record persists the trade outcome with enough context to reconstruct the
// decision chain. Persistence failure is logged, never fatal to the order.
func (o *Orchestrator) record(ctx context.Context, req *models.OrderRequest, result *models.ExecutionResult, confidence float64, strategyName string, pnl float64, logger zerolog.Logger) {
	if o.store == nil {
		return
	}

	trade := &models.Trade{
		ID:          req.ID,
		Timestamp:   result.Timestamp,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Status:      result.Status,
		Strategy:    strategyName,
		Confidence:  confidence,
		Reason:      req.Reason,
		RealizedPnL: pnl,
		IsPaper:     o.isPaper,
	}
	if result.Status == models.OrderFilled {
		trade.Quantity = result.FilledQuantity
		trade.Price = result.FilledPrice
	}
	if result.Error != "" {
		trade.Reason = trade.Reason + " | gateway: " + result.Error
	}

	if err := o.store.LogTrade(ctx, trade); err != nil {
		logger.Error().Err(err).Msg("Failed to record trade")
	}
}

func (o *Orchestrator) symbolLock(symbol string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.symLock[symbol]
	if !ok {
		lock = &sync.Mutex{}
		o.symLock[symbol] = lock
	}
	return lock
}
