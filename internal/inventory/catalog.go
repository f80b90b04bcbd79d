package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/talkincode/stockboard/internal/domain"
	"github.com/talkincode/stockboard/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ProductInput carries the raw fields of a new product; prices are decimal strings.
type ProductInput struct {
	Name         string
	Category     string
	CostPrice    string
	SellingPrice string
}

// ProductPatch carries the fields to change; nil means keep.
type ProductPatch struct {
	Name         *string
	Category     *string
	CostPrice    *string
	SellingPrice *string
}

// Catalog manages product definitions.
type Catalog struct {
	store repository.ProductRepository
	now   func() time.Time
	newID func() string
}

// NewCatalog creates a catalog on top of the given repository
func NewCatalog(store repository.ProductRepository) *Catalog {
	return &Catalog{store: store, now: time.Now, newID: uuid.NewString}
}

// ListProducts returns products ordered by category then name, ignoring case.
func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	items, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "list products")
	}
	SortProducts(items)
	return items, nil
}

// GetProduct returns ErrProductNotFound for unknown or malformed ids
func (c *Catalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if !IsID(id) {
		return nil, ErrProductNotFound
	}
	p, err := c.store.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "get product")
	}
	return p, nil
}

// CreateProduct validates the input and stores a new product
func (c *Catalog) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	v := &ValidationError{}
	name := checkText(v, "name", in.Name)
	category := checkText(v, "category", in.Category)
	cost := checkPrice(v, "costPrice", in.CostPrice)
	selling := checkPrice(v, "sellingPrice", in.SellingPrice)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := c.now()
	p := &domain.Product{
		ID:           c.newID(),
		Name:         name,
		Category:     category,
		CostPrice:    cost,
		SellingPrice: selling,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.store.SaveProduct(ctx, p); err != nil {
		return nil, translate(err, ErrProductNotFound, "create product")
	}
	zap.L().Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct merges the patch over the stored product.
// Records already written keep the prices they were derived from.
func (c *Catalog) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	v := &ValidationError{}
	var name, category string
	var cost, selling domain.Money
	if patch.Name != nil {
		name = checkText(v, "name", *patch.Name)
	}
	if patch.Category != nil {
		category = checkText(v, "category", *patch.Category)
	}
	if patch.CostPrice != nil {
		cost = checkPrice(v, "costPrice", *patch.CostPrice)
	}
	if patch.SellingPrice != nil {
		selling = checkPrice(v, "sellingPrice", *patch.SellingPrice)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if !IsID(id) {
		return nil, ErrProductNotFound
	}

	p, err := c.store.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "update product")
	}
	if patch.Name != nil {
		p.Name = name
	}
	if patch.Category != nil {
		p.Category = category
	}
	if patch.CostPrice != nil {
		p.CostPrice = cost
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = selling
	}
	p.UpdatedAt = c.now()

	if err := c.store.SaveProduct(ctx, p); err != nil {
		return nil, translate(err, ErrProductNotFound, "update product")
	}
	zap.L().Info("product updated", zap.String("id", p.ID))
	return p, nil
}

// DeleteProduct removes the product and its records. Unknown ids are ignored.
func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if !IsID(id) {
		return nil
	}
	if err := c.store.DeleteProduct(ctx, id); err != nil {
		return translate(err, ErrProductNotFound, "delete product")
	}
	zap.L().Info("product deleted", zap.String("id", id))
	return nil
}

// SortProducts orders by (category, name) using case-insensitive collation,
// falling back to the raw strings and the id so the order is total.
func SortProducts(items []domain.Product) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return compareProducts(col, &items[i], &items[j]) < 0
	})
}

func compareProducts(col *collate.Collator, a, b *domain.Product) int {
	if c := col.CompareString(a.Category, b.Category); c != 0 {
		return c
	}
	if c := col.CompareString(a.Name, b.Name); c != 0 {
		return c
	}
	switch {
	case a.Category != b.Category:
		return compareRaw(a.Category, b.Category)
	case a.Name != b.Name:
		return compareRaw(a.Name, b.Name)
	default:
		return compareRaw(a.ID, b.ID)
	}
}

func compareRaw(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
