package service

import (
	"cloud.google.com/go/civil"
	"github.com/aiworkshop/finassist/backend/internal/model"
	"github.com/aiworkshop/finassist/backend/internal/recurring"
	"github.com/shopspring/decimal"
)

// GetCalendarReportRequest selects a month. Zero values select the current month.
type GetCalendarReportRequest struct {
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

type GetCalendarReportResponse struct {
	Calendar model.CalendarReport `json:"calendar"`
}

type GetRecurringReportRequest struct{}

type GetRecurringReportResponse struct {
	Report recurring.Report `json:"report"`
}

// BillFields are the client-editable fields of a bill.
type BillFields struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	NextDueDate civil.Date      `json:"next_due_date"`
	Frequency   model.Frequency `json:"frequency"`
	Category    string          `json:"category,omitempty"`
}

type CreateBillRequest struct {
	BillFields
}

type CreateBillResponse struct {
	Bill *model.Bill `json:"bill"`
}

type UpdateBillRequest struct {
	BillID string `json:"bill_id"`
	BillFields
}

type UpdateBillResponse struct {
	Bill *model.Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []model.Bill `json:"bills"`
}
