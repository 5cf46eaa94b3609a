package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-2500, "-$2,500.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPnL(t *testing.T) {
	if got := FormatPnL(40); got != "+$40.00" {
		t.Errorf("FormatPnL(40) = %q", got)
	}
	if got := FormatPnL(-40); got != "-$40.00" {
		t.Errorf("FormatPnL(-40) = %q", got)
	}
	if got := FormatPnL(0); got != "$0.00" {
		t.Errorf("FormatPnL(0) = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(2.5); got != "+2.50%" {
		t.Errorf("FormatPercent(2.5) = %q", got)
	}
	if got := FormatPercent(-1.25); got != "-1.25%" {
		t.Errorf("FormatPercent(-1.25) = %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(1234567); got != "1,234,567" {
		t.Errorf("FormatQuantity = %q", got)
	}
	if got := FormatQuantity(999); got != "999" {
		t.Errorf("FormatQuantity = %q", got)
	}
}

func TestFormatConfidence(t *testing.T) {
	if got := FormatConfidence(0.85); got != "85%" {
		t.Errorf("FormatConfidence(0.85) = %q", got)
	}
}
