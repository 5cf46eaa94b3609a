package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"robinhood-trader/internal/models"
)

// closesGen generates a slice of positive close prices of the given length.
func closesGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, gen.Float64Range(1.0, 1000.0)).Map(func(closes []float64) []float64 {
		for len(closes) < minLen {
			closes = append(closes, 100.0)
		}
		for i, c := range closes {
			if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
				closes[i] = 100.0
			}
		}
		return closes
	})
}

func candlesFrom(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1_000_000,
		}
	}
	return candles
}

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(closes []float64) bool {
			rsi := NewRSI(14)
			values, err := rsi.Calculate(candlesFrom(closes))
			if err != nil {
				// Insufficient data is acceptable
				return true
			}
			for i := rsi.Period(); i < len(values); i++ {
				if values[i] < 0 || values[i] > 100 {
					return false
				}
			}
			return true
		},
		closesGen(15, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_SMAWithinWindowRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("SMA lies between the window's min and max close", prop.ForAll(
		func(closes []float64) bool {
			sma := NewSMA(5)
			values, err := sma.Calculate(candlesFrom(closes))
			if err != nil {
				return true
			}
			for i := sma.Period() - 1; i < len(values); i++ {
				lo, hi := math.Inf(1), math.Inf(-1)
				for j := i - sma.Period() + 1; j <= i; j++ {
					lo = math.Min(lo, closes[j])
					hi = math.Max(hi, closes[j])
				}
				if values[i] < lo-1e-9 || values[i] > hi+1e-9 {
					return false
				}
			}
			return true
		},
		closesGen(5, 40),
	))

	properties.TestingRun(t)
}

func TestProperty_CalculateIsPure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("repeated calculation over the same candles is identical", prop.ForAll(
		func(closes []float64) bool {
			candles := candlesFrom(closes)
			rsi := NewRSI(7)
			first, err1 := rsi.Calculate(candles)
			second, err2 := rsi.Calculate(candles)
			if (err1 == nil) != (err2 == nil) {
				return false
			}
			if err1 != nil {
				return true
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		closesGen(8, 40),
	))

	properties.TestingRun(t)
}
