package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
)

// budgetResetMonths is the number of months, starting with the current one,
// that carry a budget reset marker.
const budgetResetMonths = 4

const budgetResetName = "Monthly Budget Cycle Resets"

// SystemEvents converts detected patterns with a projected next date into
// calendar events. The events are not bounded to any window.
func (g *Generator) SystemEvents(report recurring.Report) []model.CalendarEvent {
	var events []model.CalendarEvent
	for _, p := range report.RecurringExpenses {
		if p.NextProjectedDate == nil {
			continue
		}
		events = append(events, model.CalendarEvent{
			EventDate: *p.NextProjectedDate,
			Type:      model.EventBillDue,
			Name:      fmt.Sprintf("Recurring Expense: %s (%s)", p.Name, model.FormatMoney(g.currency, p.AmountMean)),
			Amount:    amountPtr(p.AmountMean.Neg()),
			Source:    model.SourceSubscriptionDetection,
		})
	}
	for _, p := range report.RecurringIncome {
		if p.NextProjectedDate == nil {
			continue
		}
		events = append(events, model.CalendarEvent{
			EventDate: *p.NextProjectedDate,
			Type:      model.EventIncomeExpected,
			Name:      fmt.Sprintf("Fixed Income: %s (%s)", p.Name, model.FormatMoney(g.currency, p.AmountMean)),
			Amount:    amountPtr(p.AmountMean),
			Source:    model.SourceSubscriptionDetection,
		})
	}
	return events
}

// BudgetResetEvents returns a reset marker on the 1st of today's month and
// each of the following three months.
func BudgetResetEvents(today civil.Date) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0, budgetResetMonths)
	for i := 0; i < budgetResetMonths; i++ {
		m := int(today.Month) - 1 + i
		events = append(events, model.CalendarEvent{
			EventDate: civil.Date{Year: today.Year + m/12, Month: time.Month(m%12 + 1), Day: 1},
			Type:      model.EventBudgetReset,
			Name:      budgetResetName,
			Source:    model.SourceBudgetModule,
		})
	}
	return events
}
