package repository

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ Store = (*GormStore)(nil)

// PostgresOptions describes the connection used by OpenPostgres.
// A non-empty DSN is used as-is instead of the individual fields.
type PostgresOptions struct {
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Passwd   string
	MaxConn  int
	IdleConn int
	Debug    bool
}

// GormStore keeps the catalog in SQL tables: products and daily_records with a
// cascading foreign key and a unique (product_id, date) index.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an existing connection; callers own its lifecycle through Close.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenPostgres connects with duplicate-key error translation enabled
func OpenPostgres(opts PostgresOptions) (*gorm.DB, error) {
	dsn := opts.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			opts.Host, opts.Port, opts.User, opts.Passwd, opts.Name)
	}
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	if opts.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxConn)
	}
	if opts.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(opts.IdleConn)
	}
	return db, nil
}

// Migrate creates or updates the tables listed in domain.Tables
func (s *GormStore) Migrate() error {
	return s.db.Migrator().AutoMigrate(domain.Tables...)
}

// Reset drops and recreates every table
func (s *GormStore) Reset() error {
	if err := s.db.Migrator().DropTable(domain.Tables...); err != nil {
		return err
	}
	return s.Migrate()
}

func (s *GormStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var items []domain.Product
	err := s.db.WithContext(ctx).Find(&items).Error
	return items, err
}

func (s *GormStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) SaveProduct(ctx context.Context, p *domain.Product) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *GormStore) DeleteProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.DailyRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
}

func (s *GormStore) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, err
}

func (s *GormStore) ListRecords(ctx context.Context, date string) ([]domain.DailyRecord, error) {
	query := s.db.WithContext(ctx).Joins("Product")
	if date != "" {
		query = query.Where("daily_records.date = ?", date)
	}
	var items []domain.DailyRecord
	if err := query.Order("daily_records.date ASC, daily_records.id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Product == nil || items[i].Product.ID == "" {
			return nil, ErrInconsistent
		}
	}
	return items, nil
}

func (s *GormStore) GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	var r domain.DailyRecord
	err := s.db.WithContext(ctx).Joins("Product").Where("daily_records.id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	if r.Product == nil || r.Product.ID == "" {
		return nil, ErrInconsistent
	}
	return &r, nil
}

func (s *GormStore) InsertRecord(ctx context.Context, r *domain.DailyRecord) error {
	return s.writeRecord(ctx, r, func(tx *gorm.DB, row *domain.DailyRecord) error {
		return tx.Omit("Product").Create(row).Error
	})
}

func (s *GormStore) UpdateRecord(ctx context.Context, r *domain.DailyRecord) error {
	return s.writeRecord(ctx, r, func(tx *gorm.DB, row *domain.DailyRecord) error {
		var count int64
		if err := tx.Model(&domain.DailyRecord{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Omit("Product").Save(row).Error
	})
}

// writeRecord runs the product and uniqueness checks and the write in one transaction.
// The unique index still catches writers racing from other processes.
func (s *GormStore) writeRecord(ctx context.Context, r *domain.DailyRecord, write func(*gorm.DB, *domain.DailyRecord) error) error {
	row := *r
	row.Product = nil
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", row.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&domain.DailyRecord{}).
			Where("product_id = ? AND date = ? AND id <> ?", row.ProductID, row.Date, row.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		return write(tx, &row)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) DeleteRecord(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.DailyRecord{}).Error
}

func (s *GormStore) PreviousClosingStock(ctx context.Context, productID, before string) (int, error) {
	var r domain.DailyRecord
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND date < ?", productID, before).
		Order("date DESC").
		Limit(1).
		Find(&r).Error
	if err != nil {
		return 0, err
	}
	return r.ClosingStock, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
