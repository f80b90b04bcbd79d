package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/stockboard/internal/domain"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/webserver"
)

type recordPayload struct {
	ProductID    string      `json:"productId"`
	Date         string      `json:"date"`
	OpeningStock interface{} `json:"openingStock"`
	AddedStock   interface{} `json:"addedStock"`
	SoldStock    interface{} `json:"soldStock"`
}

// recordUpdatePayload relaxes the payload for partial updates
type recordUpdatePayload struct {
	ProductID    *string     `json:"productId"`
	Date         *string     `json:"date"`
	OpeningStock interface{} `json:"openingStock"`
	AddedStock   interface{} `json:"addedStock"`
	SoldStock    interface{} `json:"soldStock"`
}

// recordView adds the display-only values of a joined record
type recordView struct {
	*domain.DailyRecord
	TotalStock int  `json:"totalStock"`
	LowStock   bool `json:"lowStock"`
}

func newRecordView(r *domain.DailyRecord) recordView {
	return recordView{DailyRecord: r, TotalStock: r.TotalStock(), LowStock: r.IsLowStock()}
}

// registerRecordRoutes registers daily record endpoints
func registerRecordRoutes() {
	webserver.ApiGET("/daily-records", listRecords)
	webserver.ApiGET("/daily-records/previous-stock/:productId", previousStock)
	webserver.ApiGET("/daily-records/:id", getRecord)
	webserver.ApiPOST("/daily-records", createRecord)
	webserver.ApiPATCH("/daily-records/:id", updateRecord)
	webserver.ApiDELETE("/daily-records/:id", deleteRecord)
}

func listRecords(c echo.Context) error {
	items, err := GetAppContext(c).Ledger().ListRecords(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return handleError(c, err)
	}
	views := make([]recordView, 0, len(items))
	for i := range items {
		views = append(views, newRecordView(&items[i]))
	}
	return ok(c, views)
}

func getRecord(c echo.Context) error {
	r, err := GetAppContext(c).Ledger().GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, newRecordView(r))
}

func createRecord(c echo.Context) error {
	var payload recordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse daily record", err.Error())
	}
	verr := &inventory.ValidationError{}
	in := inventory.RecordInput{
		ProductID:    payload.ProductID,
		Date:         payload.Date,
		OpeningStock: quantity(verr, "openingStock", payload.OpeningStock),
		AddedStock:   quantity(verr, "addedStock", payload.AddedStock),
		SoldStock:    quantity(verr, "soldStock", payload.SoldStock),
	}
	if err := verr.Err(); err != nil {
		return handleError(c, err)
	}
	r, err := GetAppContext(c).Ledger().CreateRecord(c.Request().Context(), in)
	if err != nil {
		return handleError(c, err)
	}
	return created(c, newRecordView(r))
}

func updateRecord(c echo.Context) error {
	var payload recordUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse daily record", err.Error())
	}
	verr := &inventory.ValidationError{}
	patch := inventory.RecordPatch{
		ProductID: payload.ProductID,
		Date:      payload.Date,
	}
	if payload.OpeningStock != nil {
		n := quantity(verr, "openingStock", payload.OpeningStock)
		patch.OpeningStock = &n
	}
	if payload.AddedStock != nil {
		n := quantity(verr, "addedStock", payload.AddedStock)
		patch.AddedStock = &n
	}
	if payload.SoldStock != nil {
		n := quantity(verr, "soldStock", payload.SoldStock)
		patch.SoldStock = &n
	}
	if err := verr.Err(); err != nil {
		return handleError(c, err)
	}
	r, err := GetAppContext(c).Ledger().UpdateRecord(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, newRecordView(r))
}

func deleteRecord(c echo.Context) error {
	if err := GetAppContext(c).Ledger().DeleteRecord(c.Request().Context(), c.Param("id")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func previousStock(c echo.Context) error {
	n, err := GetAppContext(c).Ledger().PreviousClosingStock(c.Request().Context(), c.Param("productId"), c.QueryParam("date"))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, map[string]int{"closingStock": n})
}
