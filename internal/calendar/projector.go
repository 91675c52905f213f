package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultMaxIterations bounds the forward walk of a single bill. Reaching it
// truncates the projection; it is not an error.
const DefaultMaxIterations = 100

const (
	biWeeklyStepDays  = 14
	quarterlyStepDays = 91

	// fast-forward cycle lengths
	annualCycleDays  = 365
	defaultCycleDays = 30
)

// NextDueDate returns the due date that follows current for the given
// cadence. ok is false for an unknown cadence.
func NextDueDate(current civil.Date, freq model.Frequency) (next civil.Date, ok bool) {
	switch freq {
	case model.FrequencyMonthly:
		year, month := current.Year, current.Month+1
		if month > time.December {
			year, month = year+1, time.January
		}
		return clampedDate(year, month, current.Day), true
	case model.FrequencyBiWeekly:
		return current.AddDays(biWeeklyStepDays), true
	case model.FrequencyQuarterly:
		return current.AddDays(quarterlyStepDays), true
	case model.FrequencyAnnually:
		return clampedDate(current.Year+1, current.Month, current.Day), true
	default:
		return civil.Date{}, false
	}
}

// clampedDate builds a date, moving day back to the month's last day when the
// month is shorter.
func clampedDate(year int, month time.Month, day int) civil.Date {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Window is an inclusive range of calendar dates.
type Window struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d lies within the window, bounds included.
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Options configures a Generator.
type Options struct {
	MaxIterations int
	Currency      string
}

// Generator turns bills and detected patterns into calendar events.
type Generator struct {
	maxIterations int
	currency      string
	log           zerolog.Logger
}

// NewGenerator creates a Generator. Zero options fall back to defaults.
func NewGenerator(opts Options, log zerolog.Logger) *Generator {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Currency == "" {
		opts.Currency = recurring.DefaultConfig().Currency
	}
	return &Generator{
		maxIterations: opts.MaxIterations,
		currency:      opts.Currency,
		log:           log,
	}
}

// BillEvents projects the occurrences of a bill that fall inside w.
//
// The stored due date is first rewound in whole cycles (365 days for annual
// bills, 30 otherwise) until it is no later than one cycle past the window
// start, then walked forward one due date at a time.
func (g *Generator) BillEvents(bill model.Bill, w Window) []model.CalendarEvent {
	cycle := defaultCycleDays
	if bill.Frequency == model.FrequencyAnnually {
		cycle = annualCycleDays
	}

	current := bill.NextDueDate
	if over := current.DaysSince(w.Start.AddDays(cycle)); over > 0 {
		steps := (over + cycle - 1) / cycle
		current = current.AddDays(-steps * cycle)
	}

	name := fmt.Sprintf("%s (%s)", bill.Name, model.FormatMoney(g.currency, bill.Amount))

	var events []model.CalendarEvent
	for i := 0; !current.After(w.End); i++ {
		if i >= g.maxIterations {
			g.log.Warn().
				Str("bill_id", bill.ID).
				Int("max_iterations", g.maxIterations).
				Str("window_start", w.Start.String()).
				Str("stopped_at", current.String()).
				Msg("bill projection truncated")
			break
		}

		if !current.Before(w.Start) {
			events = append(events, model.CalendarEvent{
				ID:        bill.ID,
				EventDate: current,
				Type:      model.EventUserBill,
				Name:      name,
				Amount:    amountPtr(bill.Amount.Neg()),
				Source:    model.SourceUserInput,
			})
		}

		next, ok := NextDueDate(current, bill.Frequency)
		if !ok || !next.After(current) {
			break
		}
		current = next
	}
	return events
}

func amountPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
