package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/stockboard/internal/domain"
	"github.com/talkincode/stockboard/internal/repository"
)

func newServices(t *testing.T) (*Catalog, *Ledger) {
	t.Helper()
	store := repository.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewCatalog(store), NewLedger(store)
}

func TestCreateProduct(t *testing.T) {
	catalog, _ := newServices(t)
	ctx := context.Background()

	p, err := catalog.CreateProduct(ctx, ProductInput{
		Name:         "  Water ",
		Category:     "Drinks",
		CostPrice:    "0.3",
		SellingPrice: "0.80",
	})
	require.NoError(t, err)
	assert.True(t, IsID(p.ID))
	assert.Equal(t, "Water", p.Name)
	assert.Equal(t, "0.30", p.CostPrice.String())
	assert.Equal(t, "0.80", p.SellingPrice.String())

	got, err := catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestCreateProductValidation(t *testing.T) {
	catalog, _ := newServices(t)

	_, err := catalog.CreateProduct(context.Background(), ProductInput{
		Name:         " ",
		Category:     "Drinks",
		CostPrice:    "abc",
		SellingPrice: "1.005",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a decimal number", fields["costPrice"])
	assert.Contains(t, fields["sellingPrice"], "greater than 0")
	assert.NotContains(t, fields, "category")

	for _, price := range []string{"0", "-1.00", "0.00"} {
		_, err := catalog.CreateProduct(context.Background(), ProductInput{
			Name: "Water", Category: "Drinks", CostPrice: price, SellingPrice: "1.00",
		})
		assert.ErrorAs(t, err, &verr, price)
	}
}

func TestUpdateProduct(t *testing.T) {
	catalog, _ := newServices(t)
	ctx := context.Background()
	p, err := catalog.CreateProduct(ctx, ProductInput{Name: "Fanta", Category: "Drinks", CostPrice: "0.80", SellingPrice: "1.50"})
	require.NoError(t, err)

	price := "1.75"
	updated, err := catalog.UpdateProduct(ctx, p.ID, ProductPatch{SellingPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "1.75", updated.SellingPrice.String())
	assert.Equal(t, "Fanta", updated.Name)
	assert.Equal(t, "0.80", updated.CostPrice.String())

	empty := ""
	_, err = catalog.UpdateProduct(ctx, p.ID, ProductPatch{Name: &empty})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = catalog.UpdateProduct(ctx, "5d2c1a8e-2f7e-4d7a-9f55-0d5b8c6c1e11", ProductPatch{SellingPrice: &price})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetProductNotFound(t *testing.T) {
	catalog, _ := newServices(t)
	_, err := catalog.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProductsOrdering(t *testing.T) {
	catalog, _ := newServices(t)
	ctx := context.Background()
	for _, in := range []ProductInput{
		{Name: "sprite", Category: "Drinks", CostPrice: "0.80", SellingPrice: "1.50"},
		{Name: "Popcorn", Category: "Snacks", CostPrice: "0.80", SellingPrice: "2.00"},
		{Name: "Coca-Cola", Category: "drinks", CostPrice: "0.80", SellingPrice: "1.50"},
		{Name: "Beans", Category: "Meat & Protein", CostPrice: "1.00", SellingPrice: "2.50"},
	} {
		_, err := catalog.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	items, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, p := range items {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Coca-Cola", "sprite", "Beans", "Popcorn"}, names)
}

func TestDeleteProductCascades(t *testing.T) {
	catalog, ledger := newServices(t)
	ctx := context.Background()
	p, err := catalog.CreateProduct(ctx, ProductInput{Name: "Pork", Category: "Meat & Protein", CostPrice: "4.50", SellingPrice: "7.50"})
	require.NoError(t, err)
	r, err := ledger.CreateRecord(ctx, RecordInput{ProductID: p.ID, Date: "2024-03-01", OpeningStock: 5})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteProduct(ctx, p.ID))
	require.NoError(t, catalog.DeleteProduct(ctx, p.ID))

	_, err = ledger.GetRecord(ctx, r.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	items, err := ledger.ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSeedDefaults(t *testing.T) {
	catalog, _ := newServices(t)
	ctx := context.Background()

	n, err := catalog.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultProducts), n)

	n, err = catalog.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	items, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 17)
	for _, p := range items {
		assert.True(t, IsPositiveMoney(p.CostPrice), p.Name)
		assert.True(t, p.SellingPrice.GreaterThan(p.CostPrice.Decimal), p.Name)
	}
	assert.Equal(t, "Drinks", items[0].Category)
	assert.Equal(t, domain.MustMoney("0.80").String(), items[0].CostPrice.String())
}

// uuidColumnStore rejects malformed ids the way uuid-typed SQL columns do.
type uuidColumnStore struct {
	*repository.MemoryStore
}

var errInvalidUUID = errors.New("invalid input syntax for type uuid")

func (s uuidColumnStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if !IsID(id) {
		return nil, errInvalidUUID
	}
	return s.MemoryStore.GetProduct(ctx, id)
}

func (s uuidColumnStore) DeleteProduct(ctx context.Context, id string) error {
	if !IsID(id) {
		return errInvalidUUID
	}
	return s.MemoryStore.DeleteProduct(ctx, id)
}

func (s uuidColumnStore) GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	if !IsID(id) {
		return nil, errInvalidUUID
	}
	return s.MemoryStore.GetRecord(ctx, id)
}

func (s uuidColumnStore) DeleteRecord(ctx context.Context, id string) error {
	if !IsID(id) {
		return errInvalidUUID
	}
	return s.MemoryStore.DeleteRecord(ctx, id)
}

func TestMalformedIDsNeverReachStore(t *testing.T) {
	store := uuidColumnStore{repository.NewMemoryStore()}
	catalog, ledger := NewCatalog(store), NewLedger(store)
	ctx := context.Background()
	name := "Tea"
	sold := 1

	_, err := catalog.GetProduct(ctx, "abc")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = catalog.UpdateProduct(ctx, "abc", ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, catalog.DeleteProduct(ctx, "abc"))

	_, err = ledger.GetRecord(ctx, "abc")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = ledger.UpdateRecord(ctx, "abc", RecordPatch{SoldStock: &sold})
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, ledger.DeleteRecord(ctx, "abc"))
}

func TestCreateProductPriceCeiling(t *testing.T) {
	catalog, _ := newServices(t)
	ctx := context.Background()

	_, err := catalog.CreateProduct(ctx, ProductInput{Name: "Gold", Category: "Rare", CostPrice: MaxPrice, SellingPrice: MaxPrice})
	require.NoError(t, err)

	_, err = catalog.CreateProduct(ctx, ProductInput{Name: "Gold", Category: "Rare", CostPrice: "1.00", SellingPrice: "100000000.00"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sellingPrice", verr.Fields[0].Field)
	assert.Equal(t, "must not exceed "+MaxPrice, verr.Fields[0].Message)
}
