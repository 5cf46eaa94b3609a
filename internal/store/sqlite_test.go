package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"robinhood-trader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trader.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(id, symbol string, side models.Side, ts time.Time) *models.Trade {
	return &models.Trade{
		ID:          id,
		Timestamp:   ts,
		Symbol:      symbol,
		Side:        side,
		Quantity:    4,
		Price:       50,
		Status:      models.OrderFilled,
		Strategy:    "sma",
		Confidence:  0.8,
		Reason:      "[trend] upward cross",
		RealizedPnL: 0,
		IsPaper:     true,
	}
}

func TestLogAndGetTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	trades := []*models.Trade{
		sampleTrade("t1", "AAPL", models.SideBuy, base),
		sampleTrade("t2", "AAPL", models.SideSell, base.Add(time.Hour)),
		sampleTrade("t3", "MSFT", models.SideBuy, base.Add(2*time.Hour)),
	}
	for _, trade := range trades {
		if err := s.LogTrade(ctx, trade); err != nil {
			t.Fatalf("logging trade %s: %v", trade.ID, err)
		}
	}

	all, err := s.GetTrades(ctx, TradeFilter{})
	if err != nil {
		t.Fatalf("querying trades: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d trades, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != "t3" {
		t.Errorf("first trade = %s, want t3 (descending by timestamp)", all[0].ID)
	}

	got := all[2]
	if got.Symbol != "AAPL" || got.Side != models.SideBuy || got.Quantity != 4 ||
		got.Status != models.OrderFilled || got.Strategy != "sma" || !got.IsPaper {
		t.Errorf("trade fields not preserved: %+v", got)
	}
}

func TestGetTradesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	s.LogTrade(ctx, sampleTrade("t1", "AAPL", models.SideBuy, base))
	s.LogTrade(ctx, sampleTrade("t2", "AAPL", models.SideSell, base.Add(time.Hour)))
	s.LogTrade(ctx, sampleTrade("t3", "MSFT", models.SideBuy, base.Add(2*time.Hour)))

	bySymbol, err := s.GetTrades(ctx, TradeFilter{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("querying by symbol: %v", err)
	}
	if len(bySymbol) != 2 {
		t.Errorf("symbol filter returned %d trades, want 2", len(bySymbol))
	}

	bySide, err := s.GetTrades(ctx, TradeFilter{Side: "SELL"})
	if err != nil {
		t.Fatalf("querying by side: %v", err)
	}
	if len(bySide) != 1 || bySide[0].ID != "t2" {
		t.Errorf("side filter returned %+v, want only t2", bySide)
	}

	limited, err := s.GetTrades(ctx, TradeFilter{Limit: 1})
	if err != nil {
		t.Fatalf("querying with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d trades, want 1", len(limited))
	}

	byRange, err := s.GetTrades(ctx, TradeFilter{
		StartDate: base.Add(30 * time.Minute),
		EndDate:   base.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("querying by range: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != "t2" {
		t.Errorf("range filter returned %+v, want only t2", byRange)
	}
}

func TestSaveAndGetSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	snaps := []*models.RiskSnapshot{
		{Timestamp: base, StartingEquity: 10000, DailyRealizedPnL: 0, OpenPositions: 0, Halted: false},
		{Timestamp: base.Add(time.Hour), StartingEquity: 10000, DailyRealizedPnL: -600, OpenPositions: 2, Halted: true},
	}
	for _, snap := range snaps {
		if err := s.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("saving snapshot: %v", err)
		}
	}

	got, err := s.GetSnapshots(ctx, base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("querying snapshots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	if !got[0].Halted || got[0].DailyRealizedPnL != -600 || got[0].OpenPositions != 2 {
		t.Errorf("snapshot fields not preserved: %+v", got[0])
	}

	none, err := s.GetSnapshots(ctx, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("querying empty range: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty range returned %d snapshots", len(none))
	}
}
