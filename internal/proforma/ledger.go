package proforma

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/valuation-cli/internal/deal"
)

// LedgerLine is one row of the sources and uses table.
type LedgerLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Ledger is the sources and uses of funds, in cents.
type Ledger struct {
	Sources      []LedgerLine    `json:"sources"`
	Uses         []LedgerLine    `json:"uses"`
	TotalSources decimal.Decimal `json:"total_sources"`
	TotalUses    decimal.Decimal `json:"total_uses"`
}

// Balanced reports whether sources equal uses exactly.
func (l *Ledger) Balanced() bool {
	return l.TotalSources.Equal(l.TotalUses)
}

// buildLedger rounds the purchase price, fees and cash leg to cents and
// takes the stock leg as the residual, so the ledger always balances.
func buildLedger(t *deal.Terms) *Ledger {
	purchase := decimal.NewFromFloat(t.PurchasePrice).Round(2)
	fees := decimal.NewFromFloat(t.TransactionFees).Round(2)
	cash := decimal.NewFromFloat(t.CashConsideration).Round(2)
	stock := purchase.Sub(cash)
	newDebt := cash.Add(fees)

	l := &Ledger{}
	if newDebt.IsPositive() {
		l.Sources = append(l.Sources, LedgerLine{Label: "New Debt", Amount: newDebt})
	}
	if stock.IsPositive() {
		l.Sources = append(l.Sources, LedgerLine{Label: "New Equity (Stock)", Amount: stock})
	}
	l.Uses = []LedgerLine{
		{Label: "Purchase Price (Equity)", Amount: purchase},
		{Label: "Transaction Fees", Amount: fees},
	}

	l.TotalSources = sum(l.Sources)
	l.TotalUses = sum(l.Uses)
	return l
}

func sum(lines []LedgerLine) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Amount)
	}
	return total
}
