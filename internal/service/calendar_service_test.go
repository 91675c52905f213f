package service

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"connectrpc.com/connect"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func rentFields() BillFields {
	return BillFields{
		Name:        "Rent",
		Amount:      decimal.NewFromInt(850),
		NextDueDate: civil.Date{Year: 2026, Month: 11, Day: 1},
		Frequency:   model.FrequencyMonthly,
	}
}

func storedRent(owner string) *model.Bill {
	f := rentFields()
	return &model.Bill{
		ID:          "bill-1",
		UserID:      owner,
		Name:        f.Name,
		Amount:      f.Amount,
		NextDueDate: f.NextDueDate,
		Frequency:   f.Frequency,
		Category:    model.DefaultBillCategory,
	}
}

func TestCreateBill(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	mockStore.EXPECT().
		CreateBill(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, bill *model.Bill) error {
			assert.NotEmpty(t, bill.ID)
			assert.Equal(t, "user-1", bill.UserID)
			assert.Equal(t, "Housing", bill.Category)
			return nil
		})

	resp, err := svc.CreateBill(testContextWithUser("user-1"), connect.NewRequest(&CreateBillRequest{BillFields: rentFields()}))
	require.NoError(t, err)
	assert.Equal(t, "Rent", resp.Msg.Bill.Name)
	assert.Equal(t, "user-1", resp.Msg.Bill.UserID)
}

func TestCreateBillValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BillFields)
	}{
		{"missing name", func(f *BillFields) { f.Name = "" }},
		{"zero amount", func(f *BillFields) { f.Amount = decimal.Zero }},
		{"negative amount", func(f *BillFields) { f.Amount = decimal.NewFromInt(-5) }},
		{"unknown frequency", func(f *BillFields) { f.Frequency = "Weekly" }},
		{"missing due date", func(f *BillFields) { f.NextDueDate = civil.Date{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := newTestService(store.NewMockStore(ctrl))

			fields := rentFields()
			tt.mutate(&fields)

			_, err := svc.CreateBill(testContextWithUser("user-1"), connect.NewRequest(&CreateBillRequest{BillFields: fields}))
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestCreateBillRequiresAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestService(store.NewMockStore(ctrl))

	_, err := svc.CreateBill(context.Background(), connect.NewRequest(&CreateBillRequest{BillFields: rentFields()}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestUpdateBill(t *testing.T) {
	t.Run("replaces fields for the owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-1").Return(storedRent("user-1"), nil)
		mockStore.EXPECT().
			UpdateBill(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, bill *model.Bill) error {
				assert.Equal(t, "bill-1", bill.ID)
				assert.Equal(t, "user-1", bill.UserID)
				assert.Equal(t, "Utilities", bill.Category)
				assert.True(t, decimal.NewFromInt(900).Equal(bill.Amount))
				return nil
			})

		fields := rentFields()
		fields.Amount = decimal.NewFromInt(900)
		fields.Category = "Utilities"
		resp, err := svc.UpdateBill(testContextWithUser("user-1"), connect.NewRequest(&UpdateBillRequest{BillID: "bill-1", BillFields: fields}))
		require.NoError(t, err)
		assert.Equal(t, "Utilities", resp.Msg.Bill.Category)
	})

	t.Run("other owner is denied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-1").Return(storedRent("user-2"), nil)

		_, err := svc.UpdateBill(testContextWithUser("user-1"), connect.NewRequest(&UpdateBillRequest{BillID: "bill-1", BillFields: rentFields()}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("missing bill is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-9").Return(nil, store.ErrNotFound)

		_, err := svc.UpdateBill(testContextWithUser("user-1"), connect.NewRequest(&UpdateBillRequest{BillID: "bill-9", BillFields: rentFields()}))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	t.Run("invalid fields are rejected before writing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-1").Return(storedRent("user-1"), nil)

		fields := rentFields()
		fields.Frequency = "Daily"
		_, err := svc.UpdateBill(testContextWithUser("user-1"), connect.NewRequest(&UpdateBillRequest{BillID: "bill-1", BillFields: fields}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestDeleteBill(t *testing.T) {
	t.Run("owner can delete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-1").Return(storedRent("user-1"), nil)
		mockStore.EXPECT().DeleteBill(gomock.Any(), "bill-1").Return(nil)

		_, err := svc.DeleteBill(testContextWithUser("user-1"), connect.NewRequest(&DeleteBillRequest{BillID: "bill-1"}))
		require.NoError(t, err)
	})

	t.Run("other owner is denied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().GetBill(gomock.Any(), "bill-1").Return(storedRent("user-2"), nil)

		_, err := svc.DeleteBill(testContextWithUser("user-1"), connect.NewRequest(&DeleteBillRequest{BillID: "bill-1"}))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("empty id is invalid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := newTestService(store.NewMockStore(ctrl))

		_, err := svc.DeleteBill(testContextWithUser("user-1"), connect.NewRequest(&DeleteBillRequest{}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestListBills(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	mockStore.EXPECT().ListBills(gomock.Any(), "user-1").Return(nil, nil)

	resp, err := svc.ListBills(testContextWithUser("user-1"), connect.NewRequest(&ListBillsRequest{}))
	require.NoError(t, err)
	assert.NotNil(t, resp.Msg.Bills)
	assert.Empty(t, resp.Msg.Bills)
}

func TestGetRecurringReport(t *testing.T) {
	t.Run("reports detected patterns", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		var txs []model.TransactionRecord
		for i := 0; i < 3; i++ {
			txs = append(txs, model.TransactionRecord{
				Date:     civil.Date{Year: 2026, Month: 7, Day: 1}.AddDays(30 * i),
				Amount:   decimal.RequireFromString("15.00"),
				Flow:     model.FlowExpense,
				Merchant: "Netflix",
			})
		}
		mockStore.EXPECT().ListTransactions(gomock.Any(), "user-1").Return(txs, nil)

		resp, err := svc.GetRecurringReport(testContextWithUser("user-1"), connect.NewRequest(&GetRecurringReportRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Report.RecurringExpenses, 1)
		assert.Equal(t, "Netflix", resp.Msg.Report.RecurringExpenses[0].Name)
		assert.True(t, decimal.RequireFromString("15").Equal(resp.Msg.Report.TotalProjectedExpenseNextMonth))
	})

	t.Run("no transactions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().ListTransactions(gomock.Any(), "user-1").Return(nil, nil)

		resp, err := svc.GetRecurringReport(testContextWithUser("user-1"), connect.NewRequest(&GetRecurringReportRequest{}))
		require.NoError(t, err)
		assert.Equal(t, "No transactions available to detect recurring patterns.", resp.Msg.Report.Summary)
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().ListTransactions(gomock.Any(), "user-1").Return(nil, errors.New("deadline exceeded"))

		_, err := svc.GetRecurringReport(testContextWithUser("user-1"), connect.NewRequest(&GetRecurringReportRequest{}))
		assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	})
}

func TestGetCalendarReport(t *testing.T) {
	t.Run("invalid month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := newTestService(store.NewMockStore(ctrl))

		_, err := svc.GetCalendarReport(testContextWithUser("user-1"), connect.NewRequest(&GetCalendarReportRequest{Month: 13, Year: 2026}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("all sources unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().ListBills(gomock.Any(), "user-1").Return(nil, errors.New("down"))
		mockStore.EXPECT().ListTransactions(gomock.Any(), "user-1").Return(nil, errors.New("down"))

		_, err := svc.GetCalendarReport(testContextWithUser("user-1"), connect.NewRequest(&GetCalendarReportRequest{}))
		assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	})

	t.Run("defaults to the current month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().ListBills(gomock.Any(), "user-1").Return([]model.Bill{*storedRent("user-1")}, nil)
		mockStore.EXPECT().ListTransactions(gomock.Any(), "user-1").Return(nil, nil)

		resp, err := svc.GetCalendarReport(testContextWithUser("user-1"), connect.NewRequest(&GetCalendarReportRequest{}))
		require.NoError(t, err)

		// rent due 2026-11-01 rewinds one 30-day cycle into October
		require.Contains(t, resp.Msg.Calendar, "2026-10-01")
		require.Contains(t, resp.Msg.Calendar, "2026-10-02")
		for day := range resp.Msg.Calendar {
			assert.Contains(t, day, "2026-10-")
		}
	})
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"invalid window", model.ErrInvalidRequestWindow, connect.CodeInvalidArgument},
		{"invalid bill", model.ErrInvalidBill, connect.CodeInvalidArgument},
		{"upstream", model.ErrUpstreamUnavailable, connect.CodeUnavailable},
		{"not found", store.ErrNotFound, connect.CodeNotFound},
		{"connect error passes through", connect.NewError(connect.CodePermissionDenied, errors.New("no")), connect.CodePermissionDenied},
		{"unknown", errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}
