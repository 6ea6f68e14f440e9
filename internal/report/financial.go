// internal/report/financial.go
package report

import (
	"github.com/shopspring/decimal"

	"github.com/Ashtonex/nirvana/internal/store"
)

// FinancialSummary is the money view over ledger and sales. Aggregation runs
// on decimals so long ledgers do not accumulate float drift; results are
// rounded to cents.
type FinancialSummary struct {
	TotalAssets      float64
	TotalExpenses    float64
	TotalIncome      float64
	TotalLiabilities float64
	SalesRevenue     float64
	TaxCollected     float64
	NetPosition      float64 // income + sales revenue - expenses - liabilities
	MonthlyBurn      float64 // global + per-shop declared expenses
}

func Summarize(db *store.Database) FinancialSummary {
	assets := decimal.Zero
	expenses := decimal.Zero
	income := decimal.Zero
	liabilities := decimal.Zero

	for _, entry := range db.Ledger {
		amount := decimal.NewFromFloat(entry.Amount)
		switch entry.Type {
		case store.EntryAsset:
			assets = assets.Add(amount)
		case store.EntryExpense:
			expenses = expenses.Add(amount)
		case store.EntryIncome:
			income = income.Add(amount)
		case store.EntryLiability:
			liabilities = liabilities.Add(amount)
		}
	}

	revenue := decimal.Zero
	tax := decimal.Zero
	for _, sale := range db.Sales {
		revenue = revenue.Add(decimal.NewFromFloat(sale.TotalWithTax))
		tax = tax.Add(decimal.NewFromFloat(sale.Tax))
	}

	burn := decimal.NewFromFloat(db.GlobalExpenses.Total())
	for _, shop := range db.Shops {
		burn = burn.Add(decimal.NewFromFloat(shop.Expenses.Total()))
	}

	net := income.Add(revenue).Sub(expenses).Sub(liabilities)

	return FinancialSummary{
		TotalAssets:      cents(assets),
		TotalExpenses:    cents(expenses),
		TotalIncome:      cents(income),
		TotalLiabilities: cents(liabilities),
		SalesRevenue:     cents(revenue),
		TaxCollected:     cents(tax),
		NetPosition:      cents(net),
		MonthlyBurn:      cents(burn),
	}
}

func cents(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
