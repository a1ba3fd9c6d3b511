package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/beacon/internal/domain"
	"github.com/aristath/beacon/internal/modules/analysis"
)

type stubSource struct {
	failAll bool
}

func (s *stubSource) FetchStatements(ticker string) (domain.Statements, error) {
	if s.failAll {
		return domain.Statements{}, fmt.Errorf("provider down")
	}
	return domain.Statements{
		Income: domain.StatementTable{
			"Total Revenue": {1000, 800},
			"Gross Profit":  {400, 320},
		},
	}, nil
}

func (s *stubSource) FetchSnapshot(ticker string) (domain.MarketSnapshot, error) {
	if s.failAll {
		return domain.MarketSnapshot{}, fmt.Errorf("provider down")
	}
	price := 100.0
	eps := 5.0
	return domain.MarketSnapshot{Ticker: ticker, CurrentPrice: &price, ForwardEPS: &eps}, nil
}

func setupRouter(failAll bool) chi.Router {
	svc := analysis.NewService(&stubSource{failAll: failAll}, zerolog.Nop())
	h := NewHandler(svc, analysis.NewProgressHub(), zerolog.Nop())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestHandleAnalyzeTicker(t *testing.T) {
	r := setupRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/aapl", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "AAPL", record.Ticker)
	assert.False(t, record.Failed())
}

func TestHandleAnalyzeTicker_SourceFailure(t *testing.T) {
	r := setupRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/AAPL", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var record domain.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.True(t, record.Failed())
	assert.Contains(t, record.Error, "provider down")
}

func TestHandleAnalyzeBatch(t *testing.T) {
	r := setupRouter(false)

	body := strings.NewReader(`{"tickers": "AAPL, MSFT, GOOG"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analysis/batch", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result analysis.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "AAPL", result.Records[0].Ticker)
	assert.Equal(t, "MSFT", result.Records[1].Ticker)
	assert.Equal(t, "GOOG", result.Records[2].Ticker)
}

func TestHandleAnalyzeBatch_BadRequests(t *testing.T) {
	r := setupRouter(false)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty tickers", `{"tickers": " , "}`},
		{"too many tickers", `{"tickers": "` + strings.Repeat("X,", 201) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/analysis/batch", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
