package broker

import (
	"context"
	"testing"
	"time"

	"robinhood-trader/internal/models"
)

func TestPaperFetchSeriesDeterministic(t *testing.T) {
	ctx := context.Background()
	p := NewPaperBroker(PaperBrokerConfig{InitialBalance: 10000})

	first, err := p.FetchSeries(ctx, "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 100 {
		t.Fatalf("got %d candles, want 100", len(first))
	}

	second, err := p.FetchSeries(ctx, "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].Close != second[i].Close {
			t.Fatalf("series not stable at index %d: %v vs %v", i, first[i].Close, second[i].Close)
		}
	}

	// A fresh broker generates the same walk for the same symbol.
	other, _ := NewPaperBroker(PaperBrokerConfig{InitialBalance: 10000}).FetchSeries(ctx, "AAPL", 100)
	if other[50].Close != first[50].Close {
		t.Error("series should be seeded by symbol, not by broker instance")
	}

	// Different symbols produce different walks.
	msft, _ := p.FetchSeries(ctx, "MSFT", 100)
	same := true
	for i := range first {
		if first[i].Close != msft[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Error("different symbols returned identical series")
	}
}

func TestPaperFetchSeriesValidation(t *testing.T) {
	p := NewPaperBroker(PaperBrokerConfig{})
	if _, err := p.FetchSeries(context.Background(), "", 10); err == nil {
		t.Error("empty symbol should fail")
	}

	candles, err := p.FetchSeries(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			t.Fatal("candles must ascend by time")
		}
		if candles[i].Close <= 0 || candles[i].High < candles[i].Low {
			t.Fatalf("invalid candle at %d: %+v", i, candles[i])
		}
	}
}

func TestPaperSubmitLifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewPaperBroker(PaperBrokerConfig{InitialBalance: 1000})

	buy := &models.OrderRequest{
		ID:       "b1",
		Symbol:   "AAPL",
		Side:     models.SideBuy,
		Quantity: 4,
		Type:     models.OrderTypeMarket,
		Price:    50,
	}
	result, err := p.Submit(ctx, buy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.OrderFilled || result.FilledQuantity != 4 || result.FilledPrice != 50 {
		t.Fatalf("unexpected fill: %+v", result)
	}

	snapshot, err := p.GetPortfolio(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.BuyingPower != 800 {
		t.Errorf("buying power = %v, want 800 after a 200 buy", snapshot.BuyingPower)
	}

	sell := &models.OrderRequest{ID: "s1", Symbol: "AAPL", Side: models.SideSell, Quantity: 4, Price: 60}
	result, err = p.Submit(ctx, sell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.OrderFilled {
		t.Fatalf("sell not filled: %+v", result)
	}

	snapshot, _ = p.GetPortfolio(ctx)
	if snapshot.BuyingPower != 1040 {
		t.Errorf("buying power = %v, want 1040 after selling at a profit", snapshot.BuyingPower)
	}
}

func TestPaperSubmitRejections(t *testing.T) {
	ctx := context.Background()
	p := NewPaperBroker(PaperBrokerConfig{InitialBalance: 100})

	tooBig := &models.OrderRequest{ID: "b1", Symbol: "AAPL", Side: models.SideBuy, Quantity: 10, Price: 50}
	result, err := p.Submit(ctx, tooBig)
	if err != nil {
		t.Fatalf("a business rejection is a result, not an error: %v", err)
	}
	if result.Status != models.OrderRejected {
		t.Errorf("status = %s, want REJECTED", result.Status)
	}

	naked := &models.OrderRequest{ID: "s1", Symbol: "AAPL", Side: models.SideSell, Quantity: 1, Price: 50}
	result, err = p.Submit(ctx, naked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.OrderRejected {
		t.Errorf("selling without a position should be rejected, got %s", result.Status)
	}

	if _, err := p.Submit(ctx, &models.OrderRequest{ID: "x", Symbol: "AAPL", Side: models.SideBuy, Quantity: 0, Price: 50}); err == nil {
		t.Error("zero quantity should be an invalid order error")
	}
}

func TestPaperSessionAlwaysValid(t *testing.T) {
	p := NewPaperBroker(PaperBrokerConfig{})
	if !p.SessionValid() {
		t.Error("paper session should always be valid")
	}
	if err := p.RefreshSession(context.Background()); err != nil {
		t.Errorf("paper session refresh should be a no-op, got %v", err)
	}
}

func TestPaperGetQuote(t *testing.T) {
	p := NewPaperBroker(PaperBrokerConfig{})
	quote, err := p.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Symbol != "AAPL" || quote.LastPrice <= 0 {
		t.Errorf("unexpected quote: %+v", quote)
	}
	if quote.Timestamp.After(time.Now().AddDate(0, 0, 1)) {
		t.Errorf("quote timestamp in the future: %v", quote.Timestamp)
	}
}
