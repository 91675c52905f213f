package model

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Flow is the direction of a transaction.
type Flow string

const (
	FlowIncome  Flow = "Income"
	FlowExpense Flow = "Expense"
)

// ParseFlow validates a stored transaction type.
func ParseFlow(s string) (Flow, error) {
	switch Flow(s) {
	case FlowIncome, FlowExpense:
		return Flow(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Frequency is the declared cadence of a bill.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyBiWeekly  Frequency = "Bi-Weekly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyAnnually  Frequency = "Annually"
)

// Valid reports whether f is one of the supported cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyBiWeekly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

// EventType classifies a calendar event.
type EventType string

const (
	EventUserBill       EventType = "User Bill"
	EventBillDue        EventType = "Bill Due"
	EventIncomeExpected EventType = "Income Expected"
	EventBudgetReset    EventType = "Budget Reset"
)

// Event sources.
const (
	SourceUserInput             = "User Input"
	SourceSubscriptionDetection = "Subscription Detection"
	SourceBudgetModule          = "Budget Module"
)

// DefaultBillCategory is applied when a bill is created without a category.
const DefaultBillCategory = "Housing"

// TransactionRecord is a single booked transaction as read from storage.
type TransactionRecord struct {
	ID       string          `json:"id,omitempty"`
	UserID   string          `json:"user_id,omitempty"`
	Date     civil.Date      `json:"transaction_date"`
	Amount   decimal.Decimal `json:"amount"`
	Flow     Flow            `json:"type"`
	Merchant string          `json:"merchant"`
	Category string          `json:"category"`
}

// Bill is a user-declared recurring payment.
type Bill struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	NextDueDate civil.Date      `json:"next_due_date"`
	Frequency   Frequency       `json:"frequency"`
	Category    string          `json:"category"`
}

// Validate checks the fields a client is allowed to set.
func (b *Bill) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBill)
	}
	if !b.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidBill)
	}
	if !b.NextDueDate.IsValid() {
		return fmt.Errorf("%w: next_due_date is not a valid date", ErrInvalidBill)
	}
	if !b.Frequency.Valid() {
		return fmt.Errorf("%w: unsupported frequency %q", ErrInvalidBill, b.Frequency)
	}
	return nil
}

// CalendarEvent is a derived entry on the cash-flow calendar. Amount is nil
// for events that carry no money movement.
type CalendarEvent struct {
	ID        string           `json:"id,omitempty"`
	EventDate civil.Date       `json:"event_date"`
	Type      EventType        `json:"type"`
	Name      string           `json:"name"`
	Amount    *decimal.Decimal `json:"amount"`
	Source    string           `json:"source"`
}

// CalendarReport buckets events by ISO date.
type CalendarReport map[string][]CalendarEvent
