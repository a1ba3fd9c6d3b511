// Package watchlist manages the set of tickers the dashboard tracks.
package watchlist

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one tracked ticker.
type Entry struct {
	Ticker      string    `json:"ticker"`
	DisplayName string    `json:"display_name"`
	Notes       string    `json:"notes"`
	AddedAt     time.Time `json:"added_at"`
}

// Repository provides watchlist persistence on config.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new watchlist repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "watchlist").Logger(),
	}
}

// Add inserts a ticker into the watchlist. Adding an existing ticker
// updates its display name and notes without changing added_at.
func (r *Repository) Add(entry Entry) error {
	ticker := normalizeTicker(entry.Ticker)
	if ticker == "" {
		return fmt.Errorf("ticker is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO watchlist (ticker, display_name, notes, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			display_name = excluded.display_name,
			notes = excluded.notes
	`, ticker, entry.DisplayName, entry.Notes, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", ticker, err)
	}

	r.log.Info().Str("ticker", ticker).Msg("Added to watchlist")
	return nil
}

// Remove deletes a ticker from the watchlist.
func (r *Repository) Remove(ticker string) error {
	ticker = normalizeTicker(ticker)

	result, err := r.db.Exec("DELETE FROM watchlist WHERE ticker = ?", ticker)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", ticker, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s is not in the watchlist", ticker)
	}

	r.log.Info().Str("ticker", ticker).Msg("Removed from watchlist")
	return nil
}

// List returns all watchlist entries ordered by ticker.
func (r *Repository) List() ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT ticker, display_name, notes, added_at
		FROM watchlist
		ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var addedAt int64
		if err := rows.Scan(&e.Ticker, &e.DisplayName, &e.Notes, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		e.AddedAt = time.Unix(addedAt, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist: %w", err)
	}

	return entries, nil
}

// Tickers returns just the tickers, ordered, for batch operations.
func (r *Repository) Tickers() ([]string, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(entries))
	for i, e := range entries {
		tickers[i] = e.Ticker
	}
	return tickers, nil
}

// Has reports whether a ticker is in the watchlist.
func (r *Repository) Has(ticker string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM watchlist WHERE ticker = ?",
		normalizeTicker(ticker),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}
	return count > 0, nil
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
