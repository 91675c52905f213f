package store

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestMemoryStoreBills(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rent := &model.Bill{
		UserID:      "user-1",
		Name:        "Rent",
		Amount:      decimal.NewFromInt(1200),
		NextDueDate: mustDate(t, "2024-03-01"),
		Frequency:   model.FrequencyMonthly,
		Category:    "Housing",
	}
	require.NoError(t, s.CreateBill(ctx, rent))
	require.NotEmpty(t, rent.ID)

	water := &model.Bill{
		UserID:      "user-1",
		Name:        "Water",
		Amount:      decimal.NewFromInt(40),
		NextDueDate: mustDate(t, "2024-02-15"),
		Frequency:   model.FrequencyQuarterly,
	}
	require.NoError(t, s.CreateBill(ctx, water))
	require.NoError(t, s.CreateBill(ctx, &model.Bill{UserID: "user-2", Name: "Other"}))

	bills, err := s.ListBills(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "Water", bills[0].Name)
	assert.Equal(t, "Rent", bills[1].Name)

	got, err := s.GetBill(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, *rent, *got)

	// returned copies do not alias stored state
	got.Name = "Changed"
	again, err := s.GetBill(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", again.Name)

	rent.Amount = decimal.NewFromInt(1300)
	require.NoError(t, s.UpdateBill(ctx, rent))
	got, err = s.GetBill(ctx, rent.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1300).Equal(got.Amount))

	require.NoError(t, s.DeleteBill(ctx, rent.ID))
	_, err = s.GetBill(ctx, rent.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMissingBill(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetBill(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateBill(ctx, &model.Bill{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteBill(ctx, "nope"), ErrNotFound)

	bills, err := s.ListBills(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, bills)
	assert.Empty(t, bills)
}

func TestMemoryStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	txs := []model.TransactionRecord{
		{UserID: "user-1", Date: mustDate(t, "2024-02-01"), Amount: decimal.NewFromInt(15), Flow: model.FlowExpense, Merchant: "Netflix"},
		{UserID: "user-1", Date: mustDate(t, "2024-01-01"), Amount: decimal.NewFromInt(15), Flow: model.FlowExpense, Merchant: "Netflix"},
		{UserID: "user-2", Date: mustDate(t, "2024-01-05"), Amount: decimal.NewFromInt(9), Flow: model.FlowExpense, Merchant: "Spotify"},
	}
	require.NoError(t, s.BatchCreateTransactions(ctx, txs))

	got, err := s.ListTransactions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date.String())
	assert.Equal(t, "2024-02-01", got[1].Date.String())
	for _, tx := range got {
		assert.NotEmpty(t, tx.ID)
	}

	// the caller's slice is left untouched
	assert.Empty(t, txs[0].ID)
}
