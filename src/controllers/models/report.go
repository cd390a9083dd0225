package models

import "go-clothing-store/src/services/report"

// ReportQuery holds the optional query parameters; zero means omitted.
type ReportQuery struct {
	Year  int `query:"year"`
	Month int `query:"month"`
}

type StatusSummaryResponse struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type MonthlyReportResponse struct {
	Year         int                              `json:"year"`
	Month        int                              `json:"month"`
	Summary      map[string]StatusSummaryResponse `json:"summary"`
	TotalOrders  int                              `json:"total_orders"`
	TotalRevenue float64                          `json:"total_revenue"`
}

func NewMonthlyReportResponse(r *report.MonthlyReport) MonthlyReportResponse {
	summary := make(map[string]StatusSummaryResponse, len(r.Summary))
	for status, s := range r.Summary {
		summary[status] = StatusSummaryResponse{Orders: s.Orders, Revenue: s.Revenue}
	}
	return MonthlyReportResponse{
		Year:         r.Year,
		Month:        r.Month,
		Summary:      summary,
		TotalOrders:  r.TotalOrders,
		TotalRevenue: r.TotalRevenue,
	}
}
