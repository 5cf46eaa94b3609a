package trading

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"robinhood-trader/internal/broker"
	"robinhood-trader/internal/config"
	"robinhood-trader/internal/errors"
	"robinhood-trader/internal/logging"
	"robinhood-trader/internal/models"
	"robinhood-trader/internal/risk"
	"robinhood-trader/internal/store"
	"robinhood-trader/internal/strategy"
	"robinhood-trader/pkg/utils"
)

// Engine runs the full decision cycle: market data to indicators to
// strategies to aggregation to risk evaluation to execution.
type Engine struct {
	marketData   broker.MarketData
	gateway      broker.Gateway
	strategies   []strategy.Strategy
	aggregator   *strategy.Aggregator
	risk         *risk.Manager
	orchestrator *Orchestrator
	store        store.DataStore
	cfg          *config.Config
	logger       zerolog.Logger

	fetchTimeout time.Duration
}

// NewEngine creates a new trading engine.
func NewEngine(
	marketData broker.MarketData,
	gateway broker.Gateway,
	strategies []strategy.Strategy,
	riskMgr *risk.Manager,
	orchestrator *Orchestrator,
	dataStore store.DataStore,
	cfg *config.Config,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		marketData:   marketData,
		gateway:      gateway,
		strategies:   strategies,
		aggregator:   strategy.NewAggregator(),
		risk:         riskMgr,
		orchestrator: orchestrator,
		store:        dataStore,
		cfg:          cfg,
		logger:       logger.With().Str("component", "engine").Logger(),
		fetchTimeout: 30 * time.Second,
	}
}

// evaluation holds the read-only evaluation result for one symbol.
type evaluation struct {
	symbol     string
	aggregated strategy.AggregatedSignal
	price      float64
	err        error
}

// CycleResult summarizes one completed trading cycle.
type CycleResult struct {
	Evaluated int
	Approved  int
	Filled    int
	Rejected  int
	Failed    int
	Skipped   int
	StartedAt time.Time
	Duration  time.Duration
}

// RunCycle evaluates all symbols and executes any approved trades.
//
// Symbol evaluations are independent and read-only over immutable candle
// snapshots, so they run in parallel. Risk evaluation is cycle-wide state
// and runs afterwards, sequentially in alphabetical symbol order so that
// outcomes are reproducible. A configuration error from the risk manager
// halts the remainder of the cycle.
func (e *Engine) RunCycle(ctx context.Context, symbols []string) (*CycleResult, error) {
	start := time.Now()
	result := &CycleResult{StartedAt: start}

	ordered := make([]string, len(symbols))
	copy(ordered, symbols)
	sort.Strings(ordered)

	evaluations := e.evaluateParallel(ctx, ordered)
	result.Evaluated = len(evaluations)

	for _, ev := range ordered {
		eval, ok := evaluations[ev]
		if !ok {
			continue
		}

		// The cycle may be aborted between symbol evaluations.
		if err := ctx.Err(); err != nil {
			e.logger.Warn().Err(err).Msg("Cycle aborted")
			break
		}

		if eval.err != nil {
			e.logger.Error().Err(eval.err).Str("symbol", eval.symbol).Msg("Evaluation failed")
			result.Skipped++
			continue
		}
		if eval.aggregated.Side == models.SideHold {
			e.logger.Debug().Str("symbol", eval.symbol).Msg("Aggregated signal is HOLD")
			result.Skipped++
			continue
		}

		portfolioCtx, cancelPortfolio := context.WithTimeout(ctx, e.fetchTimeout)
		snapshot, err := e.gateway.GetPortfolio(portfolioCtx)
		cancelPortfolio()
		if err != nil {
			e.logger.Error().Err(err).Str("symbol", eval.symbol).Msg("Portfolio snapshot unavailable")
			result.Skipped++
			continue
		}

		req, err := e.risk.Evaluate(eval.aggregated, eval.symbol, eval.price, snapshot)
		if err != nil {
			if errors.IsRiskRejection(err) {
				e.logger.Info().Err(err).Str("symbol", eval.symbol).Msg("Trade rejected by risk manager")
				result.Rejected++
				continue
			}
			// Configuration errors are fatal to the cycle: halt rather
			// than guess.
			e.recordSnapshot(ctx)
			return result, errors.Wrapf(err, "risk evaluation for %s", eval.symbol)
		}
		result.Approved++

		execResult, execErr := e.orchestrator.Execute(ctx, req, eval.aggregated.Confidence, e.strategyNames())
		switch {
		case execErr != nil || execResult.Status == models.OrderFailed:
			result.Failed++
		case execResult.Status == models.OrderFilled:
			result.Filled++
		default:
			result.Rejected++
		}
	}

	e.recordSnapshot(ctx)

	result.Duration = time.Since(start)
	e.logger.Info().
		Int("evaluated", result.Evaluated).
		Int("approved", result.Approved).
		Int("filled", result.Filled).
		Int("rejected", result.Rejected).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Cycle complete")
	return result, nil
}

// evaluateParallel runs the read-only evaluation stage for all symbols
// concurrently. Every strategy in one evaluation round observes the same
// immutable data snapshot.
func (e *Engine) evaluateParallel(ctx context.Context, symbols []string) map[string]*evaluation {
	results := make(map[string]*evaluation, len(symbols))
	resultChan := make(chan *evaluation, len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			resultChan <- e.evaluateSymbol(ctx, sym)
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for eval := range resultChan {
		results[eval.symbol] = eval
	}
	return results
}

// evaluateSymbol fetches one symbol's data snapshot and runs all strategies
// over it.
func (e *Engine) evaluateSymbol(ctx context.Context, symbol string) *evaluation {
	eval := &evaluation{symbol: symbol}
	logger := logging.WithSymbol(e.logger, symbol)

	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	lookback := e.cfg.Trading.LookbackDays
	candles, err := utils.RetryWithResult(fetchCtx, utils.DefaultRetryConfig(), func() ([]models.Candle, error) {
		return e.marketData.FetchSeries(fetchCtx, symbol, lookback)
	})
	if err != nil {
		eval.err = errors.NewDataError("series", symbol, "fetching price history", err)
		return eval
	}
	if len(candles) == 0 {
		eval.err = errors.NewDataError("series", symbol, "empty price history", errors.ErrDataUnavailable)
		return eval
	}

	data := &strategy.MarketData{
		Symbol:  symbol,
		Candles: candles,
	}
	eval.price = candles[len(candles)-1].Close

	// Prefer the live quote for order pricing when available; the candle
	// close is the fallback.
	if quote, err := e.marketData.GetQuote(fetchCtx, symbol); err == nil && quote.LastPrice > 0 {
		data.Quote = quote
		eval.price = quote.LastPrice
	}

	signals := make([]strategy.TradeSignal, 0, len(e.strategies))
	for _, strat := range e.strategies {
		sig := strat.Analyze(symbol, data)
		logging.LogSignal(logger, symbol, sig.Strategy, string(sig.Side), sig.Confidence)
		signals = append(signals, sig)
	}

	eval.aggregated = e.aggregator.Combine(symbol, signals)
	return eval
}

// recordSnapshot persists the current risk state summary.
func (e *Engine) recordSnapshot(ctx context.Context) {
	if e.store == nil {
		return
	}
	snap := e.risk.Snapshot()
	if err := e.store.SaveSnapshot(ctx, &snap); err != nil {
		e.logger.Error().Err(err).Msg("Failed to record risk snapshot")
	}
}

func (e *Engine) strategyNames() string {
	if len(e.strategies) == 1 {
		return e.strategies[0].Name()
	}
	names := ""
	for i, s := range e.strategies {
		if i > 0 {
			names += "+"
		}
		names += s.Name()
	}
	return names
}
