package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/aiworkshop/finassist/backend/internal/auth"
	"github.com/aiworkshop/finassist/backend/internal/calendar"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/aiworkshop/finassist/backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CalendarService serves the cash-flow calendar, the recurring report and
// bill management for the authenticated user.
type CalendarService struct {
	store    store.Store
	detector *recurring.Detector
	builder  *calendar.Builder
	log      zerolog.Logger
}

func NewCalendarService(s store.Store, detector *recurring.Detector, generator *calendar.Generator, log zerolog.Logger, opts ...calendar.BuilderOption) *CalendarService {
	return &CalendarService{
		store:    s,
		detector: detector,
		builder:  calendar.NewBuilder(s, detector, generator, log, opts...),
		log:      log,
	}
}

// GetCalendarReport returns the calendar for the requested month
func (s *CalendarService) GetCalendarReport(ctx context.Context, req *connect.Request[GetCalendarReportRequest]) (*connect.Response[GetCalendarReportResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.builder.Build(ctx, claims.UID, req.Msg.Month, req.Msg.Year)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetCalendarReportResponse{
		Calendar: report,
	}), nil
}

// GetRecurringReport detects recurring income and expenses in the caller's history
func (s *CalendarService) GetRecurringReport(ctx context.Context, req *connect.Request[GetRecurringReportRequest]) (*connect.Response[GetRecurringReportResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, claims.UID)
	if err != nil {
		s.log.Error().Str("user_id", claims.UID).Err(err).Msg("failed to list transactions")
		return nil, toConnectError(fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, err))
	}

	return connect.NewResponse(&GetRecurringReportResponse{
		Report: s.detector.Report(txs),
	}), nil
}

// CreateBill creates a bill owned by the caller
func (s *CalendarService) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	bill := billFromFields(uuid.New().String(), claims.UID, req.Msg.BillFields)
	if err := bill.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to create bill: %w", err))
	}

	s.log.Info().Str("user_id", claims.UID).Str("bill_id", bill.ID).Msg("bill created")
	return connect.NewResponse(&CreateBillResponse{
		Bill: bill,
	}), nil
}

// UpdateBill replaces the editable fields of one of the caller's bills
func (s *CalendarService) UpdateBill(ctx context.Context, req *connect.Request[UpdateBillRequest]) (*connect.Response[UpdateBillResponse], error) {
	existing, err := s.ownedBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, err
	}

	bill := billFromFields(existing.ID, existing.UserID, req.Msg.BillFields)
	if err := bill.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to update bill: %w", err))
	}

	return connect.NewResponse(&UpdateBillResponse{
		Bill: bill,
	}), nil
}

// DeleteBill removes one of the caller's bills
func (s *CalendarService) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	existing, err := s.ownedBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteBill(ctx, existing.ID); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to delete bill: %w", err))
	}

	s.log.Info().Str("user_id", existing.UserID).Str("bill_id", existing.ID).Msg("bill deleted")
	return connect.NewResponse(&DeleteBillResponse{}), nil
}

// ListBills lists the caller's bills
func (s *CalendarService) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	bills, err := s.store.ListBills(ctx, claims.UID)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to list bills: %w", err))
	}
	if bills == nil {
		bills = []model.Bill{}
	}

	return connect.NewResponse(&ListBillsResponse{
		Bills: bills,
	}), nil
}

// ownedBill loads a bill and checks that the caller owns it.
func (s *CalendarService) ownedBill(ctx context.Context, billID string) (*model.Bill, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	if billID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bill_id is required"))
	}

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if _, err := auth.RequireOwner(ctx, bill.UserID); err != nil {
		return nil, err
	}
	return bill, nil
}

func billFromFields(id, userID string, f BillFields) *model.Bill {
	category := f.Category
	if category == "" {
		category = model.DefaultBillCategory
	}
	return &model.Bill{
		ID:          id,
		UserID:      userID,
		Name:        f.Name,
		Amount:      f.Amount,
		NextDueDate: f.NextDueDate,
		Frequency:   f.Frequency,
		Category:    category,
	}
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, model.ErrInvalidRequestWindow), errors.Is(err, model.ErrInvalidBill):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
