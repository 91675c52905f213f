package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/firestore"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	transactionsCollection = "transactions"
	billsCollection        = "bills"

	// Firestore caps a write batch at 500 operations.
	maxBatchWrites = 500
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
	log    zerolog.Logger
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client, log zerolog.Logger) *FirestoreStore {
	return &FirestoreStore{
		client: client,
		now:    time.Now,
		log:    log,
	}
}

// ListTransactions streams a user's transactions ordered by transaction_date.
// Documents with an unknown type or unreadable amount are skipped; an
// unreadable date is replaced by today.
func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string) ([]model.TransactionRecord, error) {
	iter := s.client.Collection(transactionsCollection).
		Where("user_id", "==", userID).
		OrderBy("transaction_date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	today := civil.DateOf(s.now())
	result := make([]model.TransactionRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}

		tx, err := transactionFromData(doc.Ref.ID, doc.Data(), today)
		if err != nil {
			s.log.Warn().Str("transaction_id", doc.Ref.ID).Err(err).Msg("skipping unreadable transaction")
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

// BatchCreateTransactions writes transactions in batches of up to 500.
func (s *FirestoreStore) BatchCreateTransactions(ctx context.Context, transactions []model.TransactionRecord) error {
	col := s.client.Collection(transactionsCollection)
	for i := 0; i < len(transactions); i += maxBatchWrites {
		end := i + maxBatchWrites
		if end > len(transactions) {
			end = len(transactions)
		}

		batch := s.client.Batch()
		for _, tx := range transactions[i:end] {
			ref := col.NewDoc()
			if tx.ID != "" {
				ref = col.Doc(tx.ID)
			}
			batch.Set(ref, transactionToData(tx))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to batch create transactions: %w", err)
		}
	}
	return nil
}

// CreateBill stores a new bill under its ID, or a generated one when empty.
func (s *FirestoreStore) CreateBill(ctx context.Context, bill *model.Bill) error {
	col := s.client.Collection(billsCollection)
	ref := col.NewDoc()
	if bill.ID != "" {
		ref = col.Doc(bill.ID)
	}
	if _, err := ref.Create(ctx, billToData(bill)); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	bill.ID = ref.ID
	return nil
}

// GetBill retrieves a bill from Firestore
func (s *FirestoreStore) GetBill(ctx context.Context, billID string) (*model.Bill, error) {
	doc, err := s.client.Collection(billsCollection).Doc(billID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("bill not found: %s: %w", billID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill, err := billFromData(doc.Ref.ID, doc.Data(), civil.DateOf(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill: %w", err)
	}
	return &bill, nil
}

// UpdateBill replaces the stored fields of an existing bill.
func (s *FirestoreStore) UpdateBill(ctx context.Context, bill *model.Bill) error {
	ref := s.client.Collection(billsCollection).Doc(bill.ID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("bill not found: %s: %w", bill.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to get bill: %w", err)
	}

	if _, err := ref.Set(ctx, billToData(bill)); err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return nil
}

// DeleteBill removes a bill from Firestore
func (s *FirestoreStore) DeleteBill(ctx context.Context, billID string) error {
	ref := s.client.Collection(billsCollection).Doc(billID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("bill not found: %s: %w", billID, ErrNotFound)
		}
		return fmt.Errorf("failed to get bill: %w", err)
	}

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}

// ListBills lists a user's bills. Bills whose amount cannot be read are
// skipped and logged.
func (s *FirestoreStore) ListBills(ctx context.Context, userID string) ([]model.Bill, error) {
	docs, err := s.client.Collection(billsCollection).Where("user_id", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	today := civil.DateOf(s.now())
	result := make([]model.Bill, 0, len(docs))
	for _, doc := range docs {
		bill, err := billFromData(doc.Ref.ID, doc.Data(), today)
		if err != nil {
			s.log.Warn().Str("bill_id", doc.Ref.ID).Err(err).Msg("skipping unreadable bill")
			continue
		}
		result = append(result, bill)
	}
	return result, nil
}

// Document mapping. Stored fields are snake_case and dates are ISO strings,
// though older documents may hold Firestore timestamps instead.

func transactionFromData(id string, data map[string]any, today civil.Date) (model.TransactionRecord, error) {
	flow, err := model.ParseFlow(stringField(data, "type"))
	if err != nil {
		return model.TransactionRecord{}, err
	}
	amount, err := decimalField(data, "amount")
	if err != nil {
		return model.TransactionRecord{}, err
	}
	return model.TransactionRecord{
		ID:       id,
		UserID:   stringField(data, "user_id"),
		Date:     model.DateOrFallback(data["transaction_date"], today),
		Amount:   amount,
		Flow:     flow,
		Merchant: stringField(data, "merchant"),
		Category: stringField(data, "category"),
	}, nil
}

func transactionToData(tx model.TransactionRecord) map[string]any {
	return map[string]any{
		"user_id":          tx.UserID,
		"transaction_date": tx.Date.String(),
		"amount":           tx.Amount.InexactFloat64(),
		"type":             string(tx.Flow),
		"merchant":         tx.Merchant,
		"category":         tx.Category,
	}
}

func billFromData(id string, data map[string]any, today civil.Date) (model.Bill, error) {
	amount, err := decimalField(data, "amount")
	if err != nil {
		return model.Bill{}, err
	}
	return model.Bill{
		ID:          id,
		UserID:      stringField(data, "user_id"),
		Name:        stringField(data, "name"),
		Amount:      amount,
		NextDueDate: model.DateOrFallback(data["next_due_date"], today),
		Frequency:   model.Frequency(stringField(data, "frequency")),
		Category:    stringField(data, "category"),
	}, nil
}

func billToData(bill *model.Bill) map[string]any {
	return map[string]any{
		"user_id":       bill.UserID,
		"name":          bill.Name,
		"amount":        bill.Amount.InexactFloat64(),
		"next_due_date": bill.NextDueDate.String(),
		"frequency":     string(bill.Frequency),
		"category":      bill.Category,
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func decimalField(data map[string]any, key string) (decimal.Decimal, error) {
	switch v := data[key].(type) {
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimalField(map[string]any{key: v.String()}, key)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("missing or non-numeric %s", key)
	}
}
