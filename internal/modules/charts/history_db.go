// Package charts provides price history storage and chart data with
// indicator overlays.
package charts

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
)

// HistoryDB provides access to the daily close history.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// UpsertPrices stores daily close bars for a ticker, replacing bars
// already present for the same date.
func (h *HistoryDB) UpsertPrices(ticker string, prices []domain.DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO daily_prices (ticker, date, close) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(ticker, p.Date, p.Close); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert price for %s on %s: %w", ticker, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert: %w", err)
	}

	h.log.Debug().Str("ticker", ticker).Int("bars", len(prices)).Msg("Stored daily prices")
	return nil
}

// GetDailyPrices fetches daily close bars for a ticker, oldest first.
// limit 0 means no limit; a positive limit keeps the most recent bars.
func (h *HistoryDB) GetDailyPrices(ticker string, limit int) ([]domain.DailyPrice, error) {
	query := `
		SELECT date, close
		FROM daily_prices
		WHERE ticker = ?
		ORDER BY date DESC
	`
	args := []interface{}{ticker}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.DailyPrice
	for rows.Next() {
		var p domain.DailyPrice
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily prices: %w", err)
	}

	// Rows come back newest first; indicators want oldest first.
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}

	return prices, nil
}
