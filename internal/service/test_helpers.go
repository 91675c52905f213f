package service

import (
	"context"
	"time"

	"github.com/aiworkshop/finassist/backend/internal/auth"
	"github.com/aiworkshop/finassist/backend/internal/calendar"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/aiworkshop/finassist/backend/internal/store"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

// testContextWithUser creates a context with authenticated user claims for testing
func testContextWithUser(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
	})
}

// newTestService wires a CalendarService with default thresholds and a fixed clock.
func newTestService(s store.Store) *CalendarService {
	return NewCalendarService(
		s,
		recurring.NewDetector(recurring.DefaultConfig(), zerolog.Nop()),
		calendar.NewGenerator(calendar.Options{}, zerolog.Nop()),
		zerolog.Nop(),
		calendar.WithClock(func() time.Time { return testNow }),
	)
}
