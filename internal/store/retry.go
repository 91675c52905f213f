package store

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // 0.0 to 1.0, fraction of delay to randomize
}

// DefaultRetryConfig is tuned for transient Firestore errors on reads.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialDelay:   200 * time.Millisecond,
	MaxDelay:       2 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return true
	}
	return false
}

// withRetry executes fn with exponential backoff + jitter. It stops on a
// non-transient error, a cancelled context, or when retries are exhausted.
func withRetry[T any](ctx context.Context, cfg RetryConfig, log zerolog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt >= cfg.MaxRetries {
			break
		}

		delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
		if delay > float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
		}
		if cfg.JitterFraction > 0 {
			delay += delay * cfg.JitterFraction * (rand.Float64()*2 - 1)
			if delay < 0 {
				delay = float64(cfg.InitialDelay)
			}
		}

		log.Debug().Str("op", op).Int("attempt", attempt+1).Err(err).Msg("retrying store read")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(delay)):
		}
	}

	return zero, lastErr
}

// RetryingStore retries the read operations of a Store on transient
// errors. Writes pass through unchanged.
type RetryingStore struct {
	Store
	cfg RetryConfig
	log zerolog.Logger
}

// NewRetryingStore wraps s.
func NewRetryingStore(s Store, cfg RetryConfig, log zerolog.Logger) *RetryingStore {
	return &RetryingStore{Store: s, cfg: cfg, log: log}
}

func (r *RetryingStore) ListTransactions(ctx context.Context, userID string) ([]model.TransactionRecord, error) {
	return withRetry(ctx, r.cfg, r.log, "ListTransactions", func(ctx context.Context) ([]model.TransactionRecord, error) {
		return r.Store.ListTransactions(ctx, userID)
	})
}

func (r *RetryingStore) ListBills(ctx context.Context, userID string) ([]model.Bill, error) {
	return withRetry(ctx, r.cfg, r.log, "ListBills", func(ctx context.Context) ([]model.Bill, error) {
		return r.Store.ListBills(ctx, userID)
	})
}

func (r *RetryingStore) GetBill(ctx context.Context, billID string) (*model.Bill, error) {
	return withRetry(ctx, r.cfg, r.log, "GetBill", func(ctx context.Context) (*model.Bill, error) {
		return r.Store.GetBill(ctx, billID)
	})
}
