// Package domain defines the core data model for fundamentals analysis.
// The domain layer is pure: no database, HTTP, or provider dependencies.
package domain

import "time"

// StatementTable maps a raw line-item label (as reported by the data
// provider) to the ordered values for that line item, most recent
// reporting period first. Tables are immutable once fetched.
type StatementTable map[string][]float64

// Statements groups the three statement tables fetched for one ticker.
type Statements struct {
	Income       StatementTable `json:"income"`
	BalanceSheet StatementTable `json:"balance_sheet"`
	CashFlow     StatementTable `json:"cash_flow"`
}

// MarketSnapshot holds the flat scalar market attributes for one ticker
// at fetch time. Optional fields are pointers: nil means the provider
// did not report the field, which is different from reporting 0.
type MarketSnapshot struct {
	Ticker          string    `json:"ticker"`
	CurrentPrice    *float64  `json:"current_price,omitempty"`
	MarketCap       *float64  `json:"market_cap,omitempty"`
	TrailingPE      *float64  `json:"trailing_pe,omitempty"`
	ForwardPE       *float64  `json:"forward_pe,omitempty"`
	TrailingEPS     *float64  `json:"trailing_eps,omitempty"`
	ForwardEPS      *float64  `json:"forward_eps,omitempty"`
	RevenuePerShare *float64  `json:"revenue_per_share,omitempty"`
	PriceToSales    *float64  `json:"price_to_sales,omitempty"`
	IndustryPE      *float64  `json:"industry_pe,omitempty"`
	DebtToEquityPct *float64  `json:"debt_to_equity_pct,omitempty"` // providers report this as a percentage
	EarningsGrowth  *float64  `json:"earnings_growth,omitempty"`
	Industry        string    `json:"industry,omitempty"`
	Sector          string    `json:"sector,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// DailyPrice is one daily close bar for a ticker.
type DailyPrice struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// Canonical ratio names. These are the display names the dashboard
// renders, kept stable so the frontend and the rating engine agree.
const (
	RatioMarketPrice      = "Market Price"
	RatioPERatio          = "P/E Ratio"
	RatioGrossMargin      = "Gross Margin (%)"
	RatioOperatingMargin  = "Operating Margin (%)"
	RatioROCE             = "ROCE (%)"
	RatioROIC             = "ROIC (%)"
	RatioCashConversion   = "Cash Conversion (%)"
	RatioDebtToEquity     = "Debt to Equity"
	RatioInterestCoverage = "Interest Coverage"
	RatioEPSGrowth        = "EPS Growth Rate (%)"
	RatioRevenueGrowth    = "Revenue Growth Rate (%)"
)

// AllRatios lists every catalogue entry in display order.
var AllRatios = []string{
	RatioMarketPrice,
	RatioPERatio,
	RatioGrossMargin,
	RatioOperatingMargin,
	RatioROCE,
	RatioROIC,
	RatioCashConversion,
	RatioDebtToEquity,
	RatioInterestCoverage,
	RatioEPSGrowth,
	RatioRevenueGrowth,
}

// RatioSet maps canonical ratio names to derived metrics. Every
// catalogue entry is present; failed derivations are marked
// unavailable rather than omitted. A RatioSet is built once per
// analysis run and not mutated afterwards.
type RatioSet map[string]Metric

// Get returns the metric for a canonical name, unavailable when the
// name is not in the set.
func (r RatioSet) Get(name string) Metric {
	if m, ok := r[name]; ok {
		return m
	}
	return Metric{}
}

// ValuationStatus classifies the current price against the fair-value band.
type ValuationStatus string

const (
	StatusUndervalued     ValuationStatus = "undervalued"
	StatusFairValued      ValuationStatus = "fair_valued"
	StatusOvervalued      ValuationStatus = "overvalued"
	StatusUnableToCompute ValuationStatus = "unable_to_compute"
)

// ValuationEstimate is the fair-value band derived for one ticker.
// On any missing required input the whole estimate is unable-to-compute
// with every numeric field unavailable; it is never partially populated.
type ValuationEstimate struct {
	ForwardPE         Metric          `json:"forward_pe"`
	IndustryPE        Metric          `json:"industry_pe"`
	FairValue         Metric          `json:"fair_value"`
	ConservativeValue Metric          `json:"conservative_value"`
	OptimisticValue   Metric          `json:"optimistic_value"`
	MarginOfSafety    Metric          `json:"margin_of_safety"`
	UpsidePct         Metric          `json:"upside_pct"`
	DownsidePct       Metric          `json:"downside_pct"`
	Status            ValuationStatus `json:"status"`
}

// Grade is the letter rating for one ticker.
type Grade string

const (
	GradeA            Grade = "A"
	GradeB            Grade = "B"
	GradeC            Grade = "C"
	GradeD            Grade = "D"
	GradeF            Grade = "F"
	GradeNotAvailable Grade = "N/A"
)

// Rating pairs the letter grade with the weighted score that produced it.
type Rating struct {
	Grade Grade  `json:"grade"`
	Score Metric `json:"score"`
}

// AnalysisRecord is the per-ticker aggregate of one analysis run.
// Records are created fresh for each request and never cached or
// mutated across requests.
type AnalysisRecord struct {
	Ticker      string            `json:"ticker"`
	Ratios      RatioSet          `json:"ratios"`
	Valuation   ValuationEstimate `json:"valuation"`
	Rating      Rating            `json:"rating"`
	Error       string            `json:"error,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Failed reports whether the source could not produce data for this ticker.
func (r AnalysisRecord) Failed() bool {
	return r.Error != ""
}
