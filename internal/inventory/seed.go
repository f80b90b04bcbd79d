package inventory

import (
	"context"

	"go.uber.org/zap"
)

// DefaultProducts is the starter catalog of a small canteen.
var DefaultProducts = []ProductInput{
	{Name: "Coca-Cola", Category: "Drinks", CostPrice: "0.80", SellingPrice: "1.50"},
	{Name: "Water", Category: "Drinks", CostPrice: "0.30", SellingPrice: "0.80"},
	{Name: "Fanta", Category: "Drinks", CostPrice: "0.80", SellingPrice: "1.50"},
	{Name: "Sprite", Category: "Drinks", CostPrice: "0.80", SellingPrice: "1.50"},
	{Name: "Chicken", Category: "Meat & Protein", CostPrice: "5.00", SellingPrice: "8.00"},
	{Name: "Fish", Category: "Meat & Protein", CostPrice: "6.00", SellingPrice: "10.00"},
	{Name: "Pork", Category: "Meat & Protein", CostPrice: "4.50", SellingPrice: "7.50"},
	{Name: "Sausage", Category: "Meat & Protein", CostPrice: "3.00", SellingPrice: "5.00"},
	{Name: "Meatballs", Category: "Meat & Protein", CostPrice: "3.50", SellingPrice: "6.00"},
	{Name: "Beans", Category: "Meat & Protein", CostPrice: "1.00", SellingPrice: "2.50"},
	{Name: "Samosas", Category: "Snacks", CostPrice: "0.50", SellingPrice: "1.20"},
	{Name: "Scones", Category: "Snacks", CostPrice: "0.40", SellingPrice: "1.00"},
	{Name: "Fritters", Category: "Snacks", CostPrice: "0.45", SellingPrice: "1.10"},
	{Name: "Crackers", Category: "Snacks", CostPrice: "1.00", SellingPrice: "2.00"},
	{Name: "Two-Crunch", Category: "Snacks", CostPrice: "0.60", SellingPrice: "1.50"},
	{Name: "Lay's", Category: "Snacks", CostPrice: "1.20", SellingPrice: "2.50"},
	{Name: "Popcorn", Category: "Snacks", CostPrice: "0.80", SellingPrice: "2.00"},
}

// SeedDefaults fills an empty catalog with DefaultProducts and returns how many were created.
func (c *Catalog) SeedDefaults(ctx context.Context) (int, error) {
	total, err := c.store.CountProducts(ctx)
	if err != nil {
		return 0, translate(err, ErrProductNotFound, "count products")
	}
	if total > 0 {
		return 0, nil
	}
	created := 0
	for _, in := range DefaultProducts {
		if _, err := c.CreateProduct(ctx, in); err != nil {
			zap.L().Error("failed to create default product", zap.String("name", in.Name), zap.Error(err))
			return created, err
		}
		created++
	}
	zap.L().Info("initialized default products", zap.Int("count", created))
	return created, nil
}
