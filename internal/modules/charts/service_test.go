package charts

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/domain"
)

const historySchema = `
CREATE TABLE daily_prices (
	ticker TEXT NOT NULL,
	date TEXT NOT NULL,
	close REAL NOT NULL,
	PRIMARY KEY (ticker, date)
);
`

func setupHistoryDB(t *testing.T) *HistoryDB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(historySchema)
	require.NoError(t, err)

	return NewHistoryDB(db, zerolog.Nop())
}

func makeBars(n int) []domain.DailyPrice {
	bars := make([]domain.DailyPrice, n)
	for i := range bars {
		bars[i] = domain.DailyPrice{
			Date:  fmt.Sprintf("2024-%02d-%02d", i/28+1, i%28+1),
			Close: 100 + float64(i),
		}
	}
	return bars
}

type fakePriceSource struct {
	bars  []domain.DailyPrice
	err   error
	calls int
}

func (f *fakePriceSource) FetchDailyPrices(ticker string) ([]domain.DailyPrice, error) {
	f.calls++
	return f.bars, f.err
}

func TestHistoryDB_UpsertAndGet(t *testing.T) {
	h := setupHistoryDB(t)

	bars := []domain.DailyPrice{
		{Date: "2024-01-02", Close: 101},
		{Date: "2024-01-01", Close: 100},
	}
	require.NoError(t, h.UpsertPrices("TEST", bars))

	got, err := h.GetDailyPrices("TEST", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date, "bars come back oldest first")
	assert.Equal(t, "2024-01-02", got[1].Date)
}

func TestHistoryDB_UpsertReplacesSameDate(t *testing.T) {
	h := setupHistoryDB(t)

	require.NoError(t, h.UpsertPrices("TEST", []domain.DailyPrice{{Date: "2024-01-01", Close: 100}}))
	require.NoError(t, h.UpsertPrices("TEST", []domain.DailyPrice{{Date: "2024-01-01", Close: 105}}))

	got, err := h.GetDailyPrices("TEST", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 105.0, got[0].Close, 1e-9)
}

func TestHistoryDB_Limit(t *testing.T) {
	h := setupHistoryDB(t)
	require.NoError(t, h.UpsertPrices("TEST", makeBars(10)))

	got, err := h.GetDailyPrices("TEST", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Limit keeps the most recent bars, still returned oldest first.
	assert.InDelta(t, 107.0, got[0].Close, 1e-9)
	assert.InDelta(t, 109.0, got[2].Close, 1e-9)
}

func TestGetChartData(t *testing.T) {
	h := setupHistoryDB(t)
	require.NoError(t, h.UpsertPrices("TEST", makeBars(60)))

	svc := NewService(h, nil, zerolog.Nop())

	data, err := svc.GetChartData("TEST")
	require.NoError(t, err)

	assert.Equal(t, "TEST", data.Ticker)
	assert.Len(t, data.Prices, 60)

	// 60 bars: SMA50 and RSI14 have values, SMA200 does not.
	require.NotEmpty(t, data.SMA50)
	assert.Len(t, data.SMA50, 11)
	assert.Empty(t, data.SMA200)
	require.Len(t, data.RSI14, 46)

	// The 49 warmup bars are dropped entirely; the overlay must not
	// start with zero-valued points. The first SMA50 point sits on the
	// 50th bar and averages closes 100..149.
	first := data.SMA50[0]
	assert.Equal(t, "2024-02-22", first.Time)
	assert.InDelta(t, 124.5, first.Value, 1e-9)

	// SMA50 of linearly rising closes 100..159 ends at the mean of 110..159.
	last := data.SMA50[len(data.SMA50)-1]
	assert.InDelta(t, 134.5, last.Value, 1e-9)

	// Latest readings mirror the overlay tails.
	require.NotNil(t, data.LatestSMA50)
	assert.InDelta(t, 134.5, *data.LatestSMA50, 1e-9)
	assert.Nil(t, data.LatestSMA200, "not enough bars for a 200-day window")
	require.NotNil(t, data.LatestRSI14)
	assert.InDelta(t, 100.0, *data.LatestRSI14, 1e-6, "strictly rising closes saturate RSI")
}

func TestGetChartData_BackfillsFromSource(t *testing.T) {
	h := setupHistoryDB(t)
	source := &fakePriceSource{bars: makeBars(20)}
	svc := NewService(h, source, zerolog.Nop())

	data, err := svc.GetChartData("TEST")
	require.NoError(t, err)
	assert.Len(t, data.Prices, 20)
	assert.Equal(t, 1, source.calls)

	// The backfill is persisted; the next call uses local history.
	_, err = svc.GetChartData("TEST")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestGetChartData_NoData(t *testing.T) {
	h := setupHistoryDB(t)
	source := &fakePriceSource{err: fmt.Errorf("provider down")}
	svc := NewService(h, source, zerolog.Nop())

	_, err := svc.GetChartData("TEST")
	assert.Error(t, err)
}

func TestRefreshHistory(t *testing.T) {
	h := setupHistoryDB(t)
	source := &fakePriceSource{bars: makeBars(5)}
	svc := NewService(h, source, zerolog.Nop())

	require.NoError(t, svc.RefreshHistory("TEST"))

	got, err := h.GetDailyPrices("TEST", 0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
