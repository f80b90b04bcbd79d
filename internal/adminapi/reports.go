package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/stockboard/internal/domain"
	"github.com/talkincode/stockboard/internal/report"
	"github.com/talkincode/stockboard/internal/webserver"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type summaryResponse struct {
	Date string `json:"date,omitempty"`
	report.Summary
	SoldUnits report.UnitStats `json:"soldUnits"`
}

// registerReportRoutes registers summary, chart and export endpoints
func registerReportRoutes() {
	webserver.ApiGET("/reports/summary", reportSummary)
	webserver.ApiGET("/reports/profit", reportProfit)
	webserver.ApiGET("/reports/export.csv", exportCSV)
	webserver.ApiGET("/reports/export.xlsx", exportXLSX)
}

func queryRecords(c echo.Context) ([]domain.DailyRecord, error) {
	return GetAppContext(c).Ledger().ListRecords(c.Request().Context(), c.QueryParam("date"))
}

func reportSummary(c echo.Context) error {
	records, err := queryRecords(c)
	if err != nil {
		return handleError(c, err)
	}
	units, err := report.SoldUnitStats(records)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, summaryResponse{
		Date:      c.QueryParam("date"),
		Summary:   report.Summarize(records),
		SoldUnits: units,
	})
}

func reportProfit(c echo.Context) error {
	records, err := queryRecords(c)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, report.ProfitRanking(records))
}

func exportCSV(c echo.Context) error {
	return export(c, "csv", "text/csv; charset=utf-8", report.WriteCSV)
}

func exportXLSX(c echo.Context) error {
	return export(c, "xlsx", xlsxMimeType, report.WriteXLSX)
}

func export(c echo.Context, ext, contentType string, write func(io.Writer, []domain.DailyRecord) error) error {
	records, err := queryRecords(c)
	if err != nil {
		return handleError(c, err)
	}
	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		return handleError(c, err)
	}
	filename := report.FileName(c.QueryParam("date"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
