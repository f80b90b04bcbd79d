package adminapi

import (
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/stockboard/internal/app"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/webserver"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Init registers all admin api routes on the webserver
func Init() {
	registerProductRoutes()
	registerRecordRoutes()
	registerReportRoutes()
}

// GetAppContext returns the application context of the request
func GetAppContext(c echo.Context) app.AppContext {
	return webserver.GetAppContext(c)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Details: details})
}

// handleError maps service errors onto status codes; anything unknown is a 500
// whose details stay in the log.
func handleError(c echo.Context, err error) error {
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", verr.Fields)
	case errors.Is(err, inventory.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, inventory.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "RECORD_NOT_FOUND", "Daily record not found", nil)
	case errors.Is(err, inventory.ErrDuplicateRecord):
		return fail(c, http.StatusConflict, "DUPLICATE_RECORD", "A record already exists for this product and date", nil)
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// priceText accepts a price sent either as a JSON string or a JSON number.
// Values of any other type come back as an unparseable marker so validation rejects them.
func priceText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return cast.ToString(val)
	default:
		return "invalid"
	}
}

// quantity reads a stock count sent as a JSON number or a numeric string.
// Missing values are 0; fractional or non-numeric values are rejected.
func quantity(verr *inventory.ValidationError, field string, v interface{}) int {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		f = val
	case string:
		n, err := cast.ToFloat64E(strings.TrimSpace(val))
		if err != nil || strings.TrimSpace(val) == "" {
			verr.Add(field, "must be a non-negative integer")
			return 0
		}
		f = n
	default:
		verr.Add(field, "must be a non-negative integer")
		return 0
	}
	if f != math.Trunc(f) || f < 0 {
		verr.Add(field, "must be a non-negative integer")
		return 0
	}
	if f > inventory.MaxQuantity {
		verr.Add(field, "must not exceed 2147483647")
		return 0
	}
	return int(f)
}
