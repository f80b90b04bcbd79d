package repository

import (
	"context"
	"errors"

	"github.com/talkincode/stockboard/internal/domain"
)

var (
	// ErrNotFound is returned when a product or record id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a (product, date) pair is already taken.
	ErrDuplicate = errors.New("record already exists for this product and date")
	// ErrInconsistent is returned when a stored record references a missing product.
	ErrInconsistent = errors.New("record references a missing product")
)

// ProductRepository persists catalog entries.
type ProductRepository interface {
	// ListProducts returns every product in no particular order
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns ErrNotFound for an unknown id
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// SaveProduct inserts or replaces a product
	SaveProduct(ctx context.Context, p *domain.Product) error

	// DeleteProduct removes the product and every record that references it.
	// Deleting an unknown id is not an error.
	DeleteProduct(ctx context.Context, id string) error

	// CountProducts returns the catalog size
	CountProducts(ctx context.Context) (int64, error)
}

// RecordRepository persists daily records.
type RecordRepository interface {
	// ListRecords returns records joined with their product, restricted to date when it is not empty.
	// A record without a product yields ErrInconsistent.
	ListRecords(ctx context.Context, date string) ([]domain.DailyRecord, error)

	// GetRecord returns the joined record or ErrNotFound
	GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error)

	// InsertRecord atomically checks the (product, date) pair and inserts.
	// It fails with ErrNotFound when the product is gone and ErrDuplicate when the pair is taken.
	InsertRecord(ctx context.Context, r *domain.DailyRecord) error

	// UpdateRecord replaces an existing record under the same rules as InsertRecord
	UpdateRecord(ctx context.Context, r *domain.DailyRecord) error

	// DeleteRecord removes a record; unknown ids are ignored
	DeleteRecord(ctx context.Context, id string) error

	// PreviousClosingStock returns the closing stock of the latest record for productID
	// dated strictly before the given date, or 0 when there is none.
	PreviousClosingStock(ctx context.Context, productID, before string) (int, error)
}

// Store is the full persistence contract used by the inventory services.
type Store interface {
	ProductRepository
	RecordRepository
	Close() error
}
