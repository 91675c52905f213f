package recurring

import (
	"fmt"

	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/shopspring/decimal"
)

const noTransactionsSummary = "No transactions available to detect recurring patterns."

// Report aggregates the recurring expenses and income of one user.
type Report struct {
	RecurringExpenses              []Pattern       `json:"recurring_expenses"`
	RecurringIncome                []Pattern       `json:"recurring_income"`
	TotalProjectedExpenseNextMonth decimal.Decimal `json:"total_projected_expense_next_month"`
	TotalProjectedIncomeNextMonth  decimal.Decimal `json:"total_projected_income_next_month"`
	Summary                        string          `json:"summary"`
}

// Report runs detection for both flows over a full transaction snapshot.
func (d *Detector) Report(transactions []model.TransactionRecord) Report {
	if len(transactions) == 0 {
		return Report{
			RecurringExpenses: []Pattern{},
			RecurringIncome:   []Pattern{},
			Summary:           noTransactionsSummary,
		}
	}

	expenses := d.Detect(transactions, model.FlowExpense)
	income := d.Detect(transactions, model.FlowIncome)

	totalExpense := projectedTotal(expenses)
	totalIncome := projectedTotal(income)

	return Report{
		RecurringExpenses:              expenses,
		RecurringIncome:                income,
		TotalProjectedExpenseNextMonth: totalExpense,
		TotalProjectedIncomeNextMonth:  totalIncome,
		Summary: fmt.Sprintf(
			"You have **%s** in projected recurring expenses (bills and subscriptions) and **%s** in projected fixed income next month.",
			model.FormatMoney(d.cfg.Currency, totalExpense),
			model.FormatMoney(d.cfg.Currency, totalIncome),
		),
	}
}

// projectedTotal sums the mean amount of patterns that have a projected next date.
func projectedTotal(patterns []Pattern) decimal.Decimal {
	total := decimal.Zero
	for _, p := range patterns {
		if p.NextProjectedDate != nil {
			total = total.Add(p.AmountMean)
		}
	}
	return total.Round(2)
}
