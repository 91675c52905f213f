package store

import (
	"context"
	"errors"

	"github.com/aiworkshop/finassist/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is wrapped by every lookup that finds no document.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations used by the service
type Store interface {
	// Transaction operations
	ListTransactions(ctx context.Context, userID string) ([]model.TransactionRecord, error)
	BatchCreateTransactions(ctx context.Context, transactions []model.TransactionRecord) error

	// Bill operations
	CreateBill(ctx context.Context, bill *model.Bill) error
	GetBill(ctx context.Context, billID string) (*model.Bill, error)
	UpdateBill(ctx context.Context, bill *model.Bill) error
	DeleteBill(ctx context.Context, billID string) error
	ListBills(ctx context.Context, userID string) ([]model.Bill, error)
}
