package yahoo

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/beacon/internal/domain"
)

// statementKind selects which table a timeseries type feeds.
type statementKind int

const (
	kindIncome statementKind = iota
	kindBalance
	kindCashFlow
)

type seriesLabel struct {
	label string
	kind  statementKind
}

// timeseriesLabels maps the provider's annual timeseries type names to
// the raw labels the statement tables carry. The labels match what the
// provider's statement pages display, which is what the concept synonym
// lists are written against.
var timeseriesLabels = map[string]seriesLabel{
	"annualTotalRevenue":       {"Total Revenue", kindIncome},
	"annualGrossProfit":        {"Gross Profit", kindIncome},
	"annualOperatingIncome":    {"Operating Income", kindIncome},
	"annualPretaxIncome":       {"Income Before Tax", kindIncome},
	"annualNetIncome":          {"Net Income", kindIncome},
	"annualBasicEPS":           {"Basic EPS", kindIncome},
	"annualInterestExpense":    {"Interest Expense", kindIncome},
	"annualTotalAssets":        {"Total Assets", kindBalance},
	"annualCurrentLiabilities": {"Total Current Liabilities", kindBalance},
	"annualTotalDebt":          {"Total Debt", kindBalance},
	"annualLongTermDebt":       {"Long Term Debt", kindBalance},
	"annualCurrentDebt":        {"Short Term Debt", kindBalance},
	"annualStockholdersEquity": {"Stockholders Equity", kindBalance},
	"annualOperatingCashFlow":  {"Operating Cash Flow", kindCashFlow},
	"annualFreeCashFlow":       {"Free Cash Flow", kindCashFlow},
	"annualCapitalExpenditure": {"Capital Expenditure", kindCashFlow},
}

// rawValue is the provider's number envelope: {"raw": 1.23, "fmt": "1.23"}.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// timeseriesResponse is the fundamentals-timeseries payload. Each result
// carries its rows under a key named after the series type, so results
// are kept raw and picked apart per type.
type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Type []string `json:"type"`
}

type timeseriesRow struct {
	AsOfDate      string   `json:"asOfDate"`
	ReportedValue rawValue `json:"reportedValue"`
}

// transformStatements converts a timeseries response into the three
// statement tables, values ordered most recent first.
func transformStatements(resp timeseriesResponse) (domain.Statements, error) {
	if resp.Timeseries.Error != nil {
		return domain.Statements{}, fmt.Errorf("provider error: %s", resp.Timeseries.Error.Description)
	}

	stmts := domain.Statements{
		Income:       domain.StatementTable{},
		BalanceSheet: domain.StatementTable{},
		CashFlow:     domain.StatementTable{},
	}

	for _, result := range resp.Timeseries.Result {
		metaRaw, ok := result["meta"]
		if !ok {
			continue
		}
		var meta timeseriesMeta
		if err := json.Unmarshal(metaRaw, &meta); err != nil || len(meta.Type) == 0 {
			continue
		}

		seriesType := meta.Type[0]
		mapping, ok := timeseriesLabels[seriesType]
		if !ok {
			continue
		}

		rowsRaw, ok := result[seriesType]
		if !ok {
			continue
		}
		// Null entries mark periods without a reported value.
		var rows []*timeseriesRow
		if err := json.Unmarshal(rowsRaw, &rows); err != nil {
			continue
		}

		values := seriesValues(rows)
		if len(values) == 0 {
			continue
		}

		switch mapping.kind {
		case kindIncome:
			stmts.Income[mapping.label] = values
		case kindBalance:
			stmts.BalanceSheet[mapping.label] = values
		case kindCashFlow:
			stmts.CashFlow[mapping.label] = values
		}
	}

	if len(stmts.Income) == 0 && len(stmts.BalanceSheet) == 0 && len(stmts.CashFlow) == 0 {
		return domain.Statements{}, fmt.Errorf("no statement data in response")
	}

	return stmts, nil
}

// seriesValues orders the reported values most recent first, dropping
// null rows and rows without a value. The provider sends rows oldest
// first; sorting by asOfDate keeps the order right even when it doesn't.
func seriesValues(rows []*timeseriesRow) []float64 {
	reported := make([]*timeseriesRow, 0, len(rows))
	for _, row := range rows {
		if row != nil && row.ReportedValue.Raw != nil {
			reported = append(reported, row)
		}
	}

	sort.SliceStable(reported, func(i, j int) bool {
		return reported[i].AsOfDate > reported[j].AsOfDate
	})

	values := make([]float64, len(reported))
	for i, row := range reported {
		values[i] = *row.ReportedValue.Raw
	}
	return values
}

// quoteSummaryResponse is the quoteSummary payload for the modules the
// snapshot needs.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	SummaryDetail struct {
		TrailingPE                   rawValue `json:"trailingPE"`
		ForwardPE                    rawValue `json:"forwardPE"`
		MarketCap                    rawValue `json:"marketCap"`
		PriceToSalesTrailing12Months rawValue `json:"priceToSalesTrailing12Months"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		TrailingEps rawValue `json:"trailingEps"`
		ForwardEps  rawValue `json:"forwardEps"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice    rawValue `json:"currentPrice"`
		RevenuePerShare rawValue `json:"revenuePerShare"`
		DebtToEquity    rawValue `json:"debtToEquity"`
		EarningsGrowth  rawValue `json:"earningsGrowth"`
	} `json:"financialData"`
	SummaryProfile struct {
		Industry string `json:"industry"`
		Sector   string `json:"sector"`
	} `json:"summaryProfile"`
}

// transformSnapshot converts a quoteSummary response into a market
// snapshot. Missing provider fields stay nil pointers; they are never
// defaulted to zero.
func transformSnapshot(ticker string, resp quoteSummaryResponse) (domain.MarketSnapshot, error) {
	if resp.QuoteSummary.Error != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("provider error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return domain.MarketSnapshot{}, fmt.Errorf("no snapshot data in response")
	}

	r := resp.QuoteSummary.Result[0]
	return domain.MarketSnapshot{
		Ticker:          ticker,
		CurrentPrice:    r.FinancialData.CurrentPrice.Raw,
		MarketCap:       r.SummaryDetail.MarketCap.Raw,
		TrailingPE:      r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:       r.SummaryDetail.ForwardPE.Raw,
		TrailingEPS:     r.DefaultKeyStatistics.TrailingEps.Raw,
		ForwardEPS:      r.DefaultKeyStatistics.ForwardEps.Raw,
		RevenuePerShare: r.FinancialData.RevenuePerShare.Raw,
		PriceToSales:    r.SummaryDetail.PriceToSalesTrailing12Months.Raw,
		DebtToEquityPct: r.FinancialData.DebtToEquity.Raw,
		EarningsGrowth:  r.FinancialData.EarningsGrowth.Raw,
		Industry:        r.SummaryProfile.Industry,
		Sector:          r.SummaryProfile.Sector,
		FetchedAt:       time.Now().UTC(),
	}, nil
}

// chartResponse is the v8 chart payload, reduced to daily closes.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// transformDailyPrices converts a chart response into daily close bars,
// oldest first. Bars without a close (halts, partial days) are skipped.
func transformDailyPrices(resp chartResponse) ([]domain.DailyPrice, error) {
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("provider error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data in response")
	}

	result := resp.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	prices := make([]domain.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		prices = append(prices, domain.DailyPrice{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no usable price bars in response")
	}
	return prices, nil
}

func sortedStrings(in []string) []string {
	sort.Strings(in)
	return in
}
