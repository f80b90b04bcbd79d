package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/internal/domain"
	"github.com/talkincode/stockboard/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RecordInput carries the caller-supplied fields of a daily record.
type RecordInput struct {
	ProductID    string
	Date         string
	OpeningStock int
	AddedStock   int
	SoldStock    int
}

// RecordPatch carries the record fields to change; nil means keep.
type RecordPatch struct {
	ProductID    *string
	Date         *string
	OpeningStock *int
	AddedStock   *int
	SoldStock    *int
}

// Ledger manages daily stock records. Derived values are always
// computed here from the product prices current at write time.
type Ledger struct {
	store repository.Store
	now   func() time.Time
	newID func() string
}

// NewLedger creates a ledger on top of the given store
func NewLedger(store repository.Store) *Ledger {
	return &Ledger{store: store, now: time.Now, newID: uuid.NewString}
}

// ListRecords returns joined records, optionally for a single date,
// ordered by date, then product category and name.
func (l *Ledger) ListRecords(ctx context.Context, date string) ([]domain.DailyRecord, error) {
	if err := CheckDateFilter(date); err != nil {
		return nil, err
	}
	items, err := l.store.ListRecords(ctx, date)
	if err != nil {
		return nil, translate(err, ErrRecordNotFound, "list records")
	}
	SortRecords(items)
	return items, nil
}

// GetRecord returns the joined record or ErrRecordNotFound
func (l *Ledger) GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	if !IsID(id) {
		return nil, ErrRecordNotFound
	}
	r, err := l.store.GetRecord(ctx, id)
	if err != nil {
		return nil, translate(err, ErrRecordNotFound, "get record")
	}
	return r, nil
}

// CreateRecord validates the input, derives closing stock, amount and profit
// from the product's current prices and stores the record.
func (l *Ledger) CreateRecord(ctx context.Context, in RecordInput) (*domain.DailyRecord, error) {
	if err := checkRecord(in); err != nil {
		return nil, err
	}
	product, err := l.store.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "create record")
	}

	now := l.now()
	r := &domain.DailyRecord{
		ID:           l.newID(),
		ProductID:    in.ProductID,
		Date:         in.Date,
		OpeningStock: in.OpeningStock,
		AddedStock:   in.AddedStock,
		SoldStock:    in.SoldStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ComputeDerived(r.OpeningStock, r.AddedStock, r.SoldStock, product.CostPrice, product.SellingPrice).apply(r)

	if err := l.store.InsertRecord(ctx, r); err != nil {
		return nil, translate(err, ErrProductNotFound, "create record")
	}
	r.Product = product
	zap.L().Info("daily record created",
		zap.String("id", r.ID),
		zap.String("product", product.Name),
		zap.String("date", r.Date),
		zap.Int("closing", r.ClosingStock))
	return r, nil
}

// UpdateRecord merges the patch over the stored record and recomputes
// the derived values using the (possibly new) product's current prices.
// Empty product id or date in the patch keep the stored values.
func (l *Ledger) UpdateRecord(ctx context.Context, id string, patch RecordPatch) (*domain.DailyRecord, error) {
	if !IsID(id) {
		return nil, ErrRecordNotFound
	}
	r, err := l.store.GetRecord(ctx, id)
	if err != nil {
		return nil, translate(err, ErrRecordNotFound, "update record")
	}
	in := RecordInput{
		ProductID:    r.ProductID,
		Date:         r.Date,
		OpeningStock: r.OpeningStock,
		AddedStock:   r.AddedStock,
		SoldStock:    r.SoldStock,
	}
	if patch.ProductID != nil && *patch.ProductID != "" {
		in.ProductID = *patch.ProductID
	}
	if patch.Date != nil && *patch.Date != "" {
		in.Date = *patch.Date
	}
	if patch.OpeningStock != nil {
		in.OpeningStock = *patch.OpeningStock
	}
	if patch.AddedStock != nil {
		in.AddedStock = *patch.AddedStock
	}
	if patch.SoldStock != nil {
		in.SoldStock = *patch.SoldStock
	}
	if err := checkRecord(in); err != nil {
		return nil, err
	}

	product := r.Product
	if product == nil || product.ID != in.ProductID {
		product, err = l.store.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, translate(err, ErrProductNotFound, "update record")
		}
	}

	r.ProductID = in.ProductID
	r.Date = in.Date
	r.OpeningStock = in.OpeningStock
	r.AddedStock = in.AddedStock
	r.SoldStock = in.SoldStock
	r.UpdatedAt = l.now()
	r.Product = nil
	ComputeDerived(r.OpeningStock, r.AddedStock, r.SoldStock, product.CostPrice, product.SellingPrice).apply(r)

	if err := l.store.UpdateRecord(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// either the record or the product vanished in between
			if _, gerr := l.store.GetRecord(ctx, id); gerr != nil {
				return nil, translate(gerr, ErrRecordNotFound, "update record")
			}
			return nil, ErrProductNotFound
		}
		return nil, translate(err, ErrRecordNotFound, "update record")
	}
	r.Product = product
	zap.L().Info("daily record updated", zap.String("id", r.ID), zap.String("date", r.Date))
	return r, nil
}

// DeleteRecord removes a record; unknown ids succeed silently.
func (l *Ledger) DeleteRecord(ctx context.Context, id string) error {
	if !IsID(id) {
		return nil
	}
	if err := l.store.DeleteRecord(ctx, id); err != nil {
		return translate(err, ErrRecordNotFound, "delete record")
	}
	zap.L().Info("daily record deleted", zap.String("id", id))
	return nil
}

// PreviousClosingStock suggests the opening stock for productID on date:
// the closing stock of the latest earlier record, or 0.
func (l *Ledger) PreviousClosingStock(ctx context.Context, productID, date string) (int, error) {
	v := &ValidationError{}
	if !IsID(productID) {
		v.Add("productId", "must be a valid id")
	}
	checkDate(v, "date", date)
	if err := v.Err(); err != nil {
		return 0, err
	}
	n, err := l.store.PreviousClosingStock(ctx, productID, date)
	if err != nil {
		return 0, translate(err, ErrProductNotFound, "previous closing stock")
	}
	return n, nil
}

func checkRecord(in RecordInput) error {
	v := &ValidationError{}
	if in.ProductID == "" {
		v.Add("productId", "is required")
	} else if !IsID(in.ProductID) {
		v.Add("productId", "must be a valid id")
	}
	checkDate(v, "date", in.Date)
	checkQuantity(v, "openingStock", in.OpeningStock)
	checkQuantity(v, "addedStock", in.AddedStock)
	checkQuantity(v, "soldStock", in.SoldStock)
	return v.Err()
}

// SortRecords orders joined records by date, then product category and name.
func SortRecords(items []domain.DailyRecord) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Product != nil && b.Product != nil {
			if c := compareProducts(col, a.Product, b.Product); c != 0 {
				return c < 0
			}
		}
		return a.ID < b.ID
	})
}
