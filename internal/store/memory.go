package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/google/uuid"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	// Storage maps
	transactions map[string]model.TransactionRecord
	bills        map[string]*model.Bill
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]model.TransactionRecord),
		bills:        make(map[string]*model.Bill),
	}
}

// Transaction operations

// ListTransactions returns a user's transactions ordered by date, then ID.
func (m *MemoryStore) ListTransactions(ctx context.Context, userID string) ([]model.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.TransactionRecord, 0)
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// BatchCreateTransactions stores transactions, assigning IDs where missing.
func (m *MemoryStore) BatchCreateTransactions(ctx context.Context, transactions []model.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range transactions {
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		m.transactions[tx.ID] = tx
	}
	return nil
}

// Bill operations

func (m *MemoryStore) CreateBill(ctx context.Context, bill *model.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}

	stored := *bill
	m.bills[bill.ID] = &stored
	return nil
}

func (m *MemoryStore) GetBill(ctx context.Context, billID string) (*model.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bill, ok := m.bills[billID]
	if !ok {
		return nil, fmt.Errorf("bill not found: %s: %w", billID, ErrNotFound)
	}
	out := *bill
	return &out, nil
}

func (m *MemoryStore) UpdateBill(ctx context.Context, bill *model.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[bill.ID]; !ok {
		return fmt.Errorf("bill not found: %s: %w", bill.ID, ErrNotFound)
	}
	stored := *bill
	m.bills[bill.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteBill(ctx context.Context, billID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[billID]; !ok {
		return fmt.Errorf("bill not found: %s: %w", billID, ErrNotFound)
	}
	delete(m.bills, billID)
	return nil
}

// ListBills returns a user's bills ordered by next due date, then ID.
func (m *MemoryStore) ListBills(ctx context.Context, userID string) ([]model.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.Bill, 0)
	for _, bill := range m.bills {
		if bill.UserID == userID {
			result = append(result, *bill)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].NextDueDate != result[j].NextDueDate {
			return result[i].NextDueDate.Before(result[j].NextDueDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
