// Package ratios derives the fixed catalogue of financial ratios and
// growth rates from resolved statement line items and a market snapshot.
package ratios

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/domain"
	"github.com/aristath/beacon/internal/modules/statements"
)

// Deriver computes a RatioSet from statements and a market snapshot.
// Pure: no side effects, identical inputs yield identical outputs.
type Deriver struct {
	log zerolog.Logger
}

// NewDeriver creates a new ratio deriver.
func NewDeriver(log zerolog.Logger) *Deriver {
	return &Deriver{
		log: log.With().Str("component", "ratio_deriver").Logger(),
	}
}

// Derive builds the full ratio catalogue for one ticker. Every catalogue
// entry is present in the result; each ratio is derived independently,
// so one failed derivation never blocks the others. Partial sets are
// valid and expected.
func (d *Deriver) Derive(stmts domain.Statements, market domain.MarketSnapshot) domain.RatioSet {
	rs := make(domain.RatioSet, len(domain.AllRatios))

	// Market passthroughs.
	rs[domain.RatioMarketPrice] = domain.MetricFromPtr(market.CurrentPrice)
	rs[domain.RatioPERatio] = domain.MetricFromPtr(market.TrailingPE)

	revenue := statements.Resolve(stmts.Income, statements.ConceptTotalRevenue, 0)
	grossProfit := statements.Resolve(stmts.Income, statements.ConceptGrossProfit, 0)
	operatingIncome := statements.Resolve(stmts.Income, statements.ConceptOperatingIncome, 0)
	netIncome := statements.Resolve(stmts.Income, statements.ConceptNetIncome, 0)
	operatingCashFlow := statements.Resolve(stmts.CashFlow, statements.ConceptOperatingCashFlow, 0)
	interestExpense := statements.Resolve(stmts.Income, statements.ConceptInterestExpense, 0)

	rs[domain.RatioGrossMargin] = safeDiv(grossProfit, revenue, 100)
	rs[domain.RatioOperatingMargin] = safeDiv(operatingIncome, revenue, 100)

	// Capital Employed is computed once and shared by ROCE and ROIC so
	// the two ratios stay consistent within one record.
	capitalEmployed := d.capitalEmployed(stmts.BalanceSheet)
	rs[domain.RatioROCE] = safeDiv(operatingIncome, capitalEmployed, 100)
	rs[domain.RatioROIC] = safeDiv(netIncome, capitalEmployed, 100)

	rs[domain.RatioCashConversion] = safeDiv(operatingCashFlow, netIncome, 100)
	rs[domain.RatioDebtToEquity] = d.debtToEquity(stmts.BalanceSheet, market)
	rs[domain.RatioInterestCoverage] = safeDiv(operatingIncome, absMetric(interestExpense), 1)

	rs[domain.RatioEPSGrowth] = GrowthRate(statements.Series(stmts.Income, statements.ConceptBasicEPS))
	rs[domain.RatioRevenueGrowth] = GrowthRate(statements.Series(stmts.Income, statements.ConceptTotalRevenue))

	unavailable := 0
	for _, m := range rs {
		if !m.Available {
			unavailable++
		}
	}
	if unavailable > 0 {
		d.log.Debug().
			Int("unavailable", unavailable).
			Int("total", len(rs)).
			Msg("Ratio set derived with gaps")
	}

	return rs
}

// capitalEmployed is Total Assets minus Total Current Liabilities,
// unavailable when either side is.
func (d *Deriver) capitalEmployed(balance domain.StatementTable) domain.Metric {
	assets := statements.Resolve(balance, statements.ConceptTotalAssets, 0)
	currentLiabilities := statements.Resolve(balance, statements.ConceptTotalCurrentLiabilities, 0)
	if !assets.Available || !currentLiabilities.Available {
		return domain.Unavailable()
	}
	return domain.NewMetric(assets.Value - currentLiabilities.Value)
}

// debtToEquity resolves total debt with two statement-level fallbacks
// before dividing by equity:
//  1. the provider's "Total Debt" line,
//  2. Long Term Debt + Short Term Debt (a missing side counts as 0, but
//     at least one must be present).
//
// When neither path produces a ratio, the market snapshot's leverage
// figure is used, rescaled from the percentage the providers report to
// a plain ratio.
func (d *Deriver) debtToEquity(balance domain.StatementTable, market domain.MarketSnapshot) domain.Metric {
	totalDebt := statements.Resolve(balance, statements.ConceptTotalDebt, 0)
	if !totalDebt.Available {
		longTerm := statements.Resolve(balance, statements.ConceptLongTermDebt, 0)
		shortTerm := statements.Resolve(balance, statements.ConceptShortTermDebt, 0)
		if longTerm.Available || shortTerm.Available {
			totalDebt = domain.NewMetric(longTerm.Value + shortTerm.Value)
		}
	}

	equity := statements.Resolve(balance, statements.ConceptStockholderEquity, 0)
	if ratio := safeDiv(totalDebt, equity, 1); ratio.Available {
		return ratio
	}

	if market.DebtToEquityPct != nil {
		return domain.NewMetric(*market.DebtToEquityPct / 100)
	}
	return domain.Unavailable()
}

// safeDiv divides num by den and applies a scale factor, returning the
// unavailable metric when either operand is unavailable or the
// denominator is zero. Division never produces an implicit 0, NaN, or
// infinity.
func safeDiv(num, den domain.Metric, scale float64) domain.Metric {
	if !num.Available || !den.Available || den.Value == 0 {
		return domain.Unavailable()
	}
	return domain.NewMetric(num.Value / den.Value * scale)
}

func absMetric(m domain.Metric) domain.Metric {
	if !m.Available {
		return m
	}
	return domain.NewMetric(math.Abs(m.Value))
}
