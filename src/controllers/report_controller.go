package controllers

import (
	"github.com/gofiber/fiber/v2"

	"go-clothing-store/src/controllers/models"
	"go-clothing-store/src/services/report"
)

type ReportController struct {
	reportService report.ReportService
}

func NewReportController(reportService report.ReportService) *ReportController {
	return &ReportController{
		reportService: reportService,
	}
}

func (c *ReportController) Route(app *fiber.App) {
	api := app.Group("/reports")
	api.Get("/monthly", c.MonthlyReport)
}

// MonthlyReport godoc
// @Summary      Monthly order summary
// @Description  Groups the orders created in a calendar month (UTC) by status. Omitted year or month default to the current one
// @Tags         reports
// @Produce      json
// @Param        year   query     int  false  "Year"
// @Param        month  query     int  false  "Month (1-12)"
// @Success      200  {object}  models.MonthlyReportResponse
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /reports/monthly [get]
func (c *ReportController) MonthlyReport(ctx *fiber.Ctx) error {
	var query models.ReportQuery
	if err := ctx.QueryParser(&query); err != nil {
		return &ValidationError{Message: "Invalid query parameters: " + err.Error()}
	}

	monthly, err := c.reportService.MonthlyReport(ctx.UserContext(), query.Year, query.Month)
	if err != nil {
		return err
	}
	return ctx.JSON(models.NewMonthlyReportResponse(monthly))
}
