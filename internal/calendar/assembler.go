package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MonthWindow resolves a requested month and year to the first and last day
// of that month. A zero month or year selects the month containing today.
func MonthWindow(month, year int, today civil.Date) (Window, error) {
	if month == 0 || year == 0 {
		month, year = int(today.Month), today.Year
	} else if month < 1 || month > 12 || year < 1 || year > 9999 {
		return Window{}, fmt.Errorf("%w: month=%d year=%d", model.ErrInvalidRequestWindow, month, year)
	}

	m := time.Month(month)
	return Window{
		Start: civil.Date{Year: year, Month: m, Day: 1},
		End:   civil.Date{Year: year, Month: m, Day: daysIn(year, m)},
	}, nil
}

// Assemble merges event sources in order, keeps the events inside w and
// buckets them by ISO date. Within a date, events keep their source order.
func Assemble(w Window, sources ...[]model.CalendarEvent) model.CalendarReport {
	report := make(model.CalendarReport)
	for _, events := range sources {
		for _, e := range events {
			if !w.Contains(e.EventDate) {
				continue
			}
			key := e.EventDate.String()
			report[key] = append(report[key], e)
		}
	}
	return report
}

// Repository is the read side of storage the calendar needs.
type Repository interface {
	ListTransactions(ctx context.Context, userID string) ([]model.TransactionRecord, error)
	ListBills(ctx context.Context, userID string) ([]model.Bill, error)
}

// Builder produces calendar reports from a user's stored bills and history.
type Builder struct {
	repo      Repository
	detector  *recurring.Detector
	generator *Generator
	now       func() time.Time
	log       zerolog.Logger
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder wires a Builder.
func NewBuilder(repo Repository, detector *recurring.Detector, generator *Generator, log zerolog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		repo:      repo,
		detector:  detector,
		generator: generator,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the calendar for the requested month.
//
// Bills and transactions are fetched concurrently. A failing source
// contributes no events and is logged; only when both fail is
// model.ErrUpstreamUnavailable returned. Budget resets are always present.
func (b *Builder) Build(ctx context.Context, userID string, month, year int) (model.CalendarReport, error) {
	today := civil.DateOf(b.now())
	w, err := MonthWindow(month, year, today)
	if err != nil {
		return nil, err
	}

	var (
		bills    []model.Bill
		billsErr error
		txs      []model.TransactionRecord
		txsErr   error
	)
	var g errgroup.Group
	g.Go(func() error {
		bills, billsErr = b.repo.ListBills(ctx, userID)
		return nil
	})
	g.Go(func() error {
		txs, txsErr = b.repo.ListTransactions(ctx, userID)
		return nil
	})
	_ = g.Wait()

	if billsErr != nil && txsErr != nil {
		b.log.Error().Str("user_id", userID).Err(errors.Join(billsErr, txsErr)).Msg("all calendar sources unavailable")
		return nil, fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, errors.Join(billsErr, txsErr))
	}

	var billEvents []model.CalendarEvent
	if billsErr != nil {
		b.log.Error().Str("user_id", userID).Str("source", "bills").Err(billsErr).Msg("calendar source failed")
	} else {
		for _, bill := range bills {
			billEvents = append(billEvents, b.generator.BillEvents(bill, w)...)
		}
	}

	var systemEvents []model.CalendarEvent
	if txsErr != nil {
		b.log.Error().Str("user_id", userID).Str("source", "transactions").Err(txsErr).Msg("calendar source failed")
	} else {
		systemEvents = b.generator.SystemEvents(b.detector.Report(txs))
	}

	report := Assemble(w, billEvents, systemEvents, BudgetResetEvents(today))

	b.log.Debug().
		Str("user_id", userID).
		Str("window_start", w.Start.String()).
		Int("bills", len(bills)).
		Int("transactions", len(txs)).
		Int("days", len(report)).
		Msg("calendar report built")
	return report, nil
}
