package models

import "time"

// OrderStatus represents the lifecycle state of an order request.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderSubmitted OrderStatus = "SUBMITTED"
	OrderFilled    OrderStatus = "FILLED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderFailed    OrderStatus = "FAILED"
)

// OrderRequest represents an authorized order produced by risk evaluation.
// Quantity is always positive; a zero-quantity decision is represented as
// no request at all.
type OrderRequest struct {
	ID        string
	Symbol    string
	Side      Side
	Quantity  int
	Type      OrderType
	Price     float64 // reference price at approval time
	Reason    string
	CreatedAt time.Time
}

// ExecutionResult represents the outcome reported by the execution gateway.
type ExecutionResult struct {
	Status         OrderStatus
	OrderID        string
	FilledQuantity int
	FilledPrice    float64
	Error          string
	Timestamp      time.Time
}

// Trade represents a recorded trade outcome.
type Trade struct {
	ID          string
	Timestamp   time.Time
	Symbol      string
	Side        Side
	Quantity    int
	Price       float64
	Status      OrderStatus
	Strategy    string
	Confidence  float64
	Reason      string
	RealizedPnL float64
	IsPaper     bool
}

// RiskSnapshot summarizes risk state for persistence and operator review.
type RiskSnapshot struct {
	Timestamp        time.Time
	StartingEquity   float64
	DailyRealizedPnL float64
	OpenPositions    int
	Halted           bool
}
