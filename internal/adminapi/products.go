package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/webserver"
)

type productPayload struct {
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	CostPrice    interface{} `json:"costPrice"`
	SellingPrice interface{} `json:"sellingPrice"`
}

// productUpdatePayload relaxes the payload for partial updates
type productUpdatePayload struct {
	Name         *string     `json:"name"`
	Category     *string     `json:"category"`
	CostPrice    interface{} `json:"costPrice"`
	SellingPrice interface{} `json:"sellingPrice"`
}

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPATCH("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	items, err := GetAppContext(c).Catalog().ListProducts(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, items)
}

func getProduct(c echo.Context) error {
	p, err := GetAppContext(c).Catalog().GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := GetAppContext(c).Catalog().CreateProduct(c.Request().Context(), inventory.ProductInput{
		Name:         payload.Name,
		Category:     payload.Category,
		CostPrice:    priceText(payload.CostPrice),
		SellingPrice: priceText(payload.SellingPrice),
	})
	if err != nil {
		return handleError(c, err)
	}
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	patch := inventory.ProductPatch{
		Name:     payload.Name,
		Category: payload.Category,
	}
	if payload.CostPrice != nil {
		v := priceText(payload.CostPrice)
		patch.CostPrice = &v
	}
	if payload.SellingPrice != nil {
		v := priceText(payload.SellingPrice)
		patch.SellingPrice = &v
	}
	p, err := GetAppContext(c).Catalog().UpdateProduct(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	if err := GetAppContext(c).Catalog().DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
