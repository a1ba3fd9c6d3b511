package statements

// Concept is a stable internal name for a financial line item,
// independent of how any particular provider labels it.
type Concept string

const (
	ConceptTotalRevenue            Concept = "total_revenue"
	ConceptGrossProfit             Concept = "gross_profit"
	ConceptOperatingIncome         Concept = "operating_income"
	ConceptNetIncome               Concept = "net_income"
	ConceptBasicEPS                Concept = "basic_eps"
	ConceptTotalAssets             Concept = "total_assets"
	ConceptTotalCurrentLiabilities Concept = "total_current_liabilities"
	ConceptTotalDebt               Concept = "total_debt"
	ConceptLongTermDebt            Concept = "long_term_debt"
	ConceptShortTermDebt           Concept = "short_term_debt"
	ConceptStockholderEquity       Concept = "stockholder_equity"
	ConceptOperatingCashFlow       Concept = "operating_cash_flow"
	ConceptInterestExpense         Concept = "interest_expense"
)

// synonyms maps each concept to the ordered list of raw labels accepted
// for it. Order matters: the first label present in a table wins, even
// when a later synonym would also match. The entries are approximations
// of each other, not exact equivalents (EBIT is not strictly operating
// income), so resolved values are best-effort by construction.
var synonyms = map[Concept][]string{
	ConceptTotalRevenue: {
		"Total Revenue",
		"Operating Revenue",
	},
	ConceptGrossProfit: {
		"Gross Profit",
	},
	ConceptOperatingIncome: {
		"Operating Income",
		"EBIT",
		"Income Before Tax",
	},
	ConceptNetIncome: {
		"Net Income",
		"Net Income Common Stockholders",
		"Net Income From Continuing Operations",
	},
	ConceptBasicEPS: {
		"Basic EPS",
		"Diluted EPS",
	},
	ConceptTotalAssets: {
		"Total Assets",
	},
	ConceptTotalCurrentLiabilities: {
		"Total Current Liabilities",
		"Current Liabilities",
	},
	ConceptTotalDebt: {
		"Total Debt",
	},
	ConceptLongTermDebt: {
		"Long Term Debt",
		"Total Long Term Debt",
		"Long Term Debt And Capital Lease Obligation",
	},
	ConceptShortTermDebt: {
		"Short Term Debt",
		"Current Debt",
		"Current Debt And Capital Lease Obligation",
	},
	ConceptStockholderEquity: {
		"Total Stockholder Equity",
		"Stockholders Equity",
		"Total Equity",
		"Total Equity Gross Minority Interest",
	},
	ConceptOperatingCashFlow: {
		"Operating Cash Flow",
		"Total Cash From Operating Activities",
		"Cash Flow From Continuing Operating Activities",
	},
	ConceptInterestExpense: {
		"Interest Expense",
		"Interest Expense Non Operating",
	},
}

// Synonyms returns the ordered label list for a concept. The returned
// slice is a copy; callers cannot mutate the dictionary.
func Synonyms(c Concept) []string {
	labels := synonyms[c]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}
