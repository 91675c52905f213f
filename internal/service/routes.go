package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// CalendarServiceName is the fully-qualified name of the calendar service.
const CalendarServiceName = "finassist.v1.CalendarService"

// Procedure paths served by NewCalendarServiceHandler.
const (
	CalendarServiceGetCalendarReportProcedure  = "/finassist.v1.CalendarService/GetCalendarReport"
	CalendarServiceGetRecurringReportProcedure = "/finassist.v1.CalendarService/GetRecurringReport"
	CalendarServiceCreateBillProcedure         = "/finassist.v1.CalendarService/CreateBill"
	CalendarServiceUpdateBillProcedure         = "/finassist.v1.CalendarService/UpdateBill"
	CalendarServiceDeleteBillProcedure         = "/finassist.v1.CalendarService/DeleteBill"
	CalendarServiceListBillsProcedure          = "/finassist.v1.CalendarService/ListBills"
)

// NewCalendarServiceHandler builds an HTTP handler for every procedure of
// the service. It returns the path prefix to mount it on.
func NewCalendarServiceHandler(svc *CalendarService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CalendarServiceGetCalendarReportProcedure, connect.NewUnaryHandler(CalendarServiceGetCalendarReportProcedure, svc.GetCalendarReport, opts...))
	mux.Handle(CalendarServiceGetRecurringReportProcedure, connect.NewUnaryHandler(CalendarServiceGetRecurringReportProcedure, svc.GetRecurringReport, opts...))
	mux.Handle(CalendarServiceCreateBillProcedure, connect.NewUnaryHandler(CalendarServiceCreateBillProcedure, svc.CreateBill, opts...))
	mux.Handle(CalendarServiceUpdateBillProcedure, connect.NewUnaryHandler(CalendarServiceUpdateBillProcedure, svc.UpdateBill, opts...))
	mux.Handle(CalendarServiceDeleteBillProcedure, connect.NewUnaryHandler(CalendarServiceDeleteBillProcedure, svc.DeleteBill, opts...))
	mux.Handle(CalendarServiceListBillsProcedure, connect.NewUnaryHandler(CalendarServiceListBillsProcedure, svc.ListBills, opts...))

	return "/" + CalendarServiceName + "/", mux
}

// CalendarServiceClient calls the calendar service over Connect with JSON payloads.
type CalendarServiceClient struct {
	getCalendarReport  *connect.Client[GetCalendarReportRequest, GetCalendarReportResponse]
	getRecurringReport *connect.Client[GetRecurringReportRequest, GetRecurringReportResponse]
	createBill         *connect.Client[CreateBillRequest, CreateBillResponse]
	updateBill         *connect.Client[UpdateBillRequest, UpdateBillResponse]
	deleteBill         *connect.Client[DeleteBillRequest, DeleteBillResponse]
	listBills          *connect.Client[ListBillsRequest, ListBillsResponse]
}

func NewCalendarServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CalendarServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &CalendarServiceClient{
		getCalendarReport:  connect.NewClient[GetCalendarReportRequest, GetCalendarReportResponse](httpClient, baseURL+CalendarServiceGetCalendarReportProcedure, opts...),
		getRecurringReport: connect.NewClient[GetRecurringReportRequest, GetRecurringReportResponse](httpClient, baseURL+CalendarServiceGetRecurringReportProcedure, opts...),
		createBill:         connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+CalendarServiceCreateBillProcedure, opts...),
		updateBill:         connect.NewClient[UpdateBillRequest, UpdateBillResponse](httpClient, baseURL+CalendarServiceUpdateBillProcedure, opts...),
		deleteBill:         connect.NewClient[DeleteBillRequest, DeleteBillResponse](httpClient, baseURL+CalendarServiceDeleteBillProcedure, opts...),
		listBills:          connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+CalendarServiceListBillsProcedure, opts...),
	}
}

func (c *CalendarServiceClient) GetCalendarReport(ctx context.Context, req *connect.Request[GetCalendarReportRequest]) (*connect.Response[GetCalendarReportResponse], error) {
	return c.getCalendarReport.CallUnary(ctx, req)
}

func (c *CalendarServiceClient) GetRecurringReport(ctx context.Context, req *connect.Request[GetRecurringReportRequest]) (*connect.Response[GetRecurringReportResponse], error) {
	return c.getRecurringReport.CallUnary(ctx, req)
}

func (c *CalendarServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *CalendarServiceClient) UpdateBill(ctx context.Context, req *connect.Request[UpdateBillRequest]) (*connect.Response[UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *CalendarServiceClient) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *CalendarServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}
