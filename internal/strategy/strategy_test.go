package strategy

import (
	"math"
	"testing"
	"time"

	"robinhood-trader/internal/config"
	"robinhood-trader/internal/models"
)

func marketDataFromCloses(symbol string, closes []float64) *MarketData {
	candles := make([]models.Candle, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return &MarketData{Symbol: symbol, Candles: candles}
}

func TestSMACrossoverSignals(t *testing.T) {
	strat := NewSMACrossover(2, 3)

	tests := []struct {
		name     string
		closes   []float64
		wantSide models.Side
	}{
		{
			name:     "upward cross produces BUY",
			closes:   []float64{10, 10, 10, 10, 20},
			wantSide: models.SideBuy,
		},
		{
			name:     "downward cross produces SELL",
			closes:   []float64{20, 20, 20, 20, 10},
			wantSide: models.SideSell,
		},
		{
			name:     "flat series produces HOLD",
			closes:   []float64{10, 10, 10, 10, 10},
			wantSide: models.SideHold,
		},
		{
			name:     "already above without cross produces HOLD",
			closes:   []float64{10, 10, 20, 30, 40},
			wantSide: models.SideHold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := strat.Analyze("TEST", marketDataFromCloses("TEST", tt.closes))
			if sig.Side != tt.wantSide {
				t.Fatalf("side = %s, want %s (rationale: %s)", sig.Side, tt.wantSide, sig.Rationale)
			}
			if sig.Confidence < 0 || sig.Confidence > 1 {
				t.Errorf("confidence %v out of [0,1]", sig.Confidence)
			}
			if tt.wantSide != models.SideHold && sig.Confidence == 0 {
				t.Errorf("actionable signal has zero confidence")
			}
		})
	}
}

func TestSMACrossoverInsufficientHistory(t *testing.T) {
	strat := NewSMACrossover(2, 3)
	// Cross detection needs longWindow+1 candles.
	sig := strat.Analyze("TEST", marketDataFromCloses("TEST", []float64{10, 11, 12}))
	if sig.Side != models.SideHold {
		t.Errorf("side = %s, want HOLD", sig.Side)
	}
	if sig.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", sig.Confidence)
	}
	if sig.Rationale == "" {
		t.Error("degraded signal should carry a rationale")
	}
}

func TestSMACrossoverMissingData(t *testing.T) {
	strat := NewSMACrossover(2, 3)
	sig := strat.Analyze("TEST", &MarketData{Symbol: "TEST"})
	if sig.Side != models.SideHold || sig.Confidence != 0 {
		t.Errorf("empty snapshot should degrade to HOLD/0, got %s/%v", sig.Side, sig.Confidence)
	}
}

func TestSMACrossoverDefaultsOnInvalidWindows(t *testing.T) {
	strat := NewSMACrossover(0, 0)
	if strat.Name() != "sma_crossover_50_200" {
		t.Errorf("invalid windows should fall back to 50/200, got %s", strat.Name())
	}
}

func TestRSIThresholdSignals(t *testing.T) {
	strat := NewRSIThreshold(2, 30, 70)

	tests := []struct {
		name     string
		closes   []float64
		wantSide models.Side
		wantConf float64
	}{
		{
			// Deltas +1, -1, -1 give a final RSI of exactly 25.
			name:     "oversold produces BUY with threshold-scaled confidence",
			closes:   []float64{100, 101, 100, 99},
			wantSide: models.SideBuy,
			wantConf: (30.0 - 25.0) / 30.0,
		},
		{
			// Deltas +1, -1, +1.5 give a final RSI of exactly 80.
			name:     "overbought produces SELL with threshold-scaled confidence",
			closes:   []float64{100, 101, 100, 101.5},
			wantSide: models.SideSell,
			wantConf: (80.0 - 70.0) / (100.0 - 70.0),
		},
		{
			// Deltas +1, -1, 0 leave a final RSI of exactly 50.
			name:     "neutral zone produces HOLD",
			closes:   []float64{100, 101, 100, 100},
			wantSide: models.SideHold,
			wantConf: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := strat.Analyze("TEST", marketDataFromCloses("TEST", tt.closes))
			if sig.Side != tt.wantSide {
				t.Fatalf("side = %s, want %s (rationale: %s)", sig.Side, tt.wantSide, sig.Rationale)
			}
			if math.Abs(sig.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %v, want %v", sig.Confidence, tt.wantConf)
			}
		})
	}
}

func TestRSIThresholdInsufficientHistory(t *testing.T) {
	strat := NewRSIThreshold(14, 30, 70)
	sig := strat.Analyze("TEST", marketDataFromCloses("TEST", []float64{100, 101}))
	if sig.Side != models.SideHold || sig.Confidence != 0 {
		t.Errorf("short history should degrade to HOLD/0, got %s/%v", sig.Side, sig.Confidence)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	data := marketDataFromCloses("TEST", []float64{100, 101, 100, 99, 98, 97, 102, 103})
	strategies := []Strategy{
		NewSMACrossover(2, 3),
		NewRSIThreshold(2, 30, 70),
	}
	for _, strat := range strategies {
		first := strat.Analyze("TEST", data)
		second := strat.Analyze("TEST", data)
		if first != second {
			t.Errorf("%s: repeated analysis over the same snapshot differs: %+v vs %+v",
				strat.Name(), first, second)
		}
	}
}

func TestRegistryBuild(t *testing.T) {
	cfg := config.Default()
	registry := NewRegistry()

	strategies, err := registry.Build([]string{"sma", "rsi"}, &cfg.Strategies)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strategies) != 2 {
		t.Fatalf("built %d strategies, want 2", len(strategies))
	}

	if _, err := registry.Build([]string{"macd"}, &cfg.Strategies); err == nil {
		t.Error("unknown strategy id should fail")
	}
}
