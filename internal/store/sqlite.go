package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"robinhood-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table for recorded order outcomes
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		status TEXT NOT NULL,
		strategy TEXT,
		confidence REAL,
		reason TEXT,
		realized_pnl REAL,
		is_paper INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);

	-- Risk snapshots for operator review
	CREATE TABLE IF NOT EXISTS risk_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		starting_equity REAL NOT NULL,
		daily_realized_pnl REAL NOT NULL,
		open_positions INTEGER NOT NULL,
		halted INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON risk_snapshots(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LogTrade records a trade outcome.
func (s *SQLiteStore) LogTrade(ctx context.Context, trade *models.Trade) error {
	query := `
	INSERT INTO trades (id, timestamp, symbol, side, quantity, price, status,
		strategy, confidence, reason, realized_pnl, is_paper)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		trade.ID, trade.Timestamp, trade.Symbol, string(trade.Side),
		trade.Quantity, trade.Price, string(trade.Status),
		trade.Strategy, trade.Confidence, trade.Reason,
		trade.RealizedPnL, trade.IsPaper)
	if err != nil {
		return fmt.Errorf("inserting trade: %w", err)
	}
	return nil
}

// GetTrades queries recorded trades with optional filters.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `
	SELECT id, timestamp, symbol, side, quantity, price, status,
		strategy, confidence, reason, realized_pnl, is_paper
	FROM trades`

	var conditions []string
	var args []interface{}

	if filter.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		conditions = append(conditions, "side = ?")
		args = append(args, filter.Side)
	}
	if !filter.StartDate.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndDate)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var side, status string
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Symbol, &side, &t.Quantity,
			&t.Price, &status, &t.Strategy, &t.Confidence, &t.Reason,
			&t.RealizedPnL, &t.IsPaper); err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		t.Side = models.Side(side)
		t.Status = models.OrderStatus(status)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SaveSnapshot records a risk state summary.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.RiskSnapshot) error {
	query := `
	INSERT INTO risk_snapshots (timestamp, starting_equity, daily_realized_pnl,
		open_positions, halted)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		snapshot.Timestamp, snapshot.StartingEquity, snapshot.DailyRealizedPnL,
		snapshot.OpenPositions, snapshot.Halted)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// GetSnapshots queries risk snapshots in a time range.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, from, to time.Time) ([]models.RiskSnapshot, error) {
	query := `
	SELECT timestamp, starting_equity, daily_realized_pnl, open_positions, halted
	FROM risk_snapshots
	WHERE timestamp >= ? AND timestamp <= ?
	ORDER BY timestamp DESC`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.RiskSnapshot
	for rows.Next() {
		var snap models.RiskSnapshot
		if err := rows.Scan(&snap.Timestamp, &snap.StartingEquity,
			&snap.DailyRealizedPnL, &snap.OpenPositions, &snap.Halted); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
