package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/talkincode/stockboard/internal/domain"
	bolt "go.etcd.io/bbolt"
)

type StoreTestSuite struct {
	suite.Suite
	open   func(t *testing.T) Store
	orphan func(s Store, r domain.DailyRecord)
	store  Store
	ctx    context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.open(s.T())
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreTestSuite) product(name string) domain.Product {
	now := time.Now()
	p := domain.Product{
		ID:           uuid.NewString(),
		Name:         name,
		Category:     "Drinks",
		CostPrice:    domain.MustMoney("0.30"),
		SellingPrice: domain.MustMoney("0.80"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.store.SaveProduct(s.ctx, &p))
	return p
}

func (s *StoreTestSuite) record(productID, date string, closing int) domain.DailyRecord {
	r := domain.DailyRecord{
		ID:           uuid.NewString(),
		ProductID:    productID,
		Date:         date,
		OpeningStock: closing,
		ClosingStock: closing,
		AmountSold:   domain.MustMoney("0"),
		Profit:       domain.MustMoney("0"),
	}
	s.Require().NoError(s.store.InsertRecord(s.ctx, &r))
	return r
}

func (s *StoreTestSuite) TestProductRoundTrip() {
	p := s.product("Water")

	got, err := s.store.GetProduct(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Water", got.Name)
	s.True(got.SellingPrice.Equal(p.SellingPrice.Decimal))

	_, err = s.store.GetProduct(s.ctx, uuid.NewString())
	s.ErrorIs(err, ErrNotFound)

	n, err := s.store.CountProducts(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *StoreTestSuite) TestInsertRejectsDuplicatePair() {
	p := s.product("Water")
	first := s.record(p.ID, "2024-01-05", 7)

	dup := domain.DailyRecord{ID: uuid.NewString(), ProductID: p.ID, Date: "2024-01-05", ClosingStock: 99}
	s.ErrorIs(s.store.InsertRecord(s.ctx, &dup), ErrDuplicate)

	got, err := s.store.GetRecord(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(7, got.ClosingStock)
	s.Require().NotNil(got.Product)
	s.Equal(p.ID, got.Product.ID)
}

func (s *StoreTestSuite) TestInsertRequiresProduct() {
	r := domain.DailyRecord{ID: uuid.NewString(), ProductID: uuid.NewString(), Date: "2024-01-05"}
	s.ErrorIs(s.store.InsertRecord(s.ctx, &r), ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateMovesIndex() {
	p := s.product("Water")
	a := s.record(p.ID, "2024-01-05", 7)
	s.record(p.ID, "2024-01-06", 3)

	a.Date = "2024-01-06"
	s.ErrorIs(s.store.UpdateRecord(s.ctx, &a), ErrDuplicate)

	a.Date = "2024-01-07"
	a.ClosingStock = 11
	s.Require().NoError(s.store.UpdateRecord(s.ctx, &a))

	// the old slot is free again
	s.record(p.ID, "2024-01-05", 1)

	closing, err := s.store.PreviousClosingStock(s.ctx, p.ID, "2024-01-08")
	s.Require().NoError(err)
	s.Equal(11, closing)

	missing := domain.DailyRecord{ID: uuid.NewString(), ProductID: p.ID, Date: "2024-02-01"}
	s.ErrorIs(s.store.UpdateRecord(s.ctx, &missing), ErrNotFound)
}

func (s *StoreTestSuite) TestListRecordsFiltersByDate() {
	p := s.product("Water")
	s.record(p.ID, "2024-01-05", 7)
	s.record(p.ID, "2024-01-06", 3)

	all, err := s.store.ListRecords(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal("2024-01-05", all[0].Date)

	day, err := s.store.ListRecords(s.ctx, "2024-01-06")
	s.Require().NoError(err)
	s.Require().Len(day, 1)
	s.Equal(3, day[0].ClosingStock)
	s.Equal("Water", day[0].Product.Name)

	none, err := s.store.ListRecords(s.ctx, "2023-12-31")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreTestSuite) TestDeleteProductCascades() {
	p := s.product("Water")
	other := s.product("Fanta")
	s.record(p.ID, "2024-01-05", 7)
	s.record(p.ID, "2024-01-06", 3)
	kept := s.record(other.ID, "2024-01-06", 4)

	s.Require().NoError(s.store.DeleteProduct(s.ctx, p.ID))
	s.Require().NoError(s.store.DeleteProduct(s.ctx, p.ID))

	all, err := s.store.ListRecords(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(kept.ID, all[0].ID)

	closing, err := s.store.PreviousClosingStock(s.ctx, p.ID, "2024-12-31")
	s.Require().NoError(err)
	s.Zero(closing)
}

func (s *StoreTestSuite) TestDeleteRecordIsIdempotent() {
	p := s.product("Water")
	r := s.record(p.ID, "2024-01-05", 7)

	s.Require().NoError(s.store.DeleteRecord(s.ctx, r.ID))
	s.Require().NoError(s.store.DeleteRecord(s.ctx, r.ID))

	_, err := s.store.GetRecord(s.ctx, r.ID)
	s.ErrorIs(err, ErrNotFound)
	s.record(p.ID, "2024-01-05", 2)
}

func (s *StoreTestSuite) TestPreviousClosingStockSkipsGaps() {
	p := s.product("Water")
	other := s.product("Fanta")
	s.record(p.ID, "2024-01-05", 7)
	s.record(p.ID, "2024-01-08", 12)
	s.record(p.ID, "2024-01-10", 40)
	s.record(other.ID, "2024-01-09", 99)

	cases := map[string]int{
		"2024-01-10": 12,
		"2024-01-09": 12,
		"2024-01-08": 7,
		"2024-01-06": 7,
		"2024-01-05": 0,
		"2023-01-01": 0,
		"2025-01-01": 40,
	}
	for before, want := range cases {
		got, err := s.store.PreviousClosingStock(s.ctx, p.ID, before)
		s.Require().NoError(err)
		s.Equal(want, got, "before %s", before)
	}

	got, err := s.store.PreviousClosingStock(s.ctx, uuid.NewString(), "2024-01-10")
	s.Require().NoError(err)
	s.Zero(got)
}

func (s *StoreTestSuite) TestListRecordsReportsOrphans() {
	p := s.product("Water")
	s.record(p.ID, "2024-01-05", 7)
	s.orphan(s.store, domain.DailyRecord{ID: uuid.NewString(), ProductID: uuid.NewString(), Date: "2024-01-05"})

	_, err := s.store.ListRecords(s.ctx, "2024-01-05")
	s.ErrorIs(err, ErrInconsistent)
}

func (s *StoreTestSuite) TestConcurrentInsertsKeepPairUnique() {
	p := s.product("Water")

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := domain.DailyRecord{ID: uuid.NewString(), ProductID: p.ID, Date: "2024-03-01"}
			errs <- s.store.InsertRecord(s.ctx, &r)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, ErrDuplicate)
	}
	s.Equal(1, succeeded)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{
		open: func(t *testing.T) Store { return NewMemoryStore() },
		orphan: func(s Store, r domain.DailyRecord) {
			m := s.(*MemoryStore)
			m.mu.Lock()
			defer m.mu.Unlock()
			m.put(r)
		},
	})
}

func TestBoltStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{
		open: func(t *testing.T) Store {
			st, err := OpenBoltStore(filepath.Join(t.TempDir(), "data", "stock.db"))
			require.NoError(t, err)
			return st
		},
		orphan: func(s Store, r domain.DailyRecord) {
			b := s.(*BoltStore)
			err := b.db.Update(func(tx *bolt.Tx) error {
				return putRecord(tx, &r)
			})
			if err != nil {
				panic(err)
			}
		},
	})
}

// TestGormStore needs a scratch database, e.g.
// STOCKBOARD_TEST_PG_DSN="host=127.0.0.1 user=postgres password=myroot dbname=stockboard_test sslmode=disable"
func TestGormStore(t *testing.T) {
	dsn := os.Getenv("STOCKBOARD_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STOCKBOARD_TEST_PG_DSN not set")
	}
	suite.Run(t, &StoreTestSuite{
		open: func(t *testing.T) Store {
			db, err := OpenPostgres(PostgresOptions{DSN: dsn, MaxConn: 32})
			require.NoError(t, err)
			st := NewGormStore(db)
			require.NoError(t, st.Reset())
			return st
		},
		orphan: func(s Store, r domain.DailyRecord) {
			g := s.(*GormStore)
			if err := g.db.Migrator().DropConstraint(&domain.DailyRecord{}, "Product"); err != nil {
				panic(err)
			}
			if err := g.db.Omit("Product").Create(&r).Error; err != nil {
				panic(err)
			}
		},
	})
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.db")
	ctx := context.Background()

	st, err := OpenBoltStore(path)
	require.NoError(t, err)
	p := domain.Product{ID: uuid.NewString(), Name: "Water", Category: "Drinks",
		CostPrice: domain.MustMoney("0.30"), SellingPrice: domain.MustMoney("0.80")}
	require.NoError(t, st.SaveProduct(ctx, &p))
	r := domain.DailyRecord{ID: uuid.NewString(), ProductID: p.ID, Date: "2024-01-05",
		ClosingStock: 5, AmountSold: domain.MustMoney("20.00"), Profit: domain.MustMoney("12.50")}
	require.NoError(t, st.InsertRecord(ctx, &r))
	require.NoError(t, st.Close())

	st, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetRecord(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, "20.00", got.AmountSold.String())
	require.Equal(t, "12.50", got.Profit.String())
	require.Equal(t, "0.80", got.Product.SellingPrice.String())
}

func TestBoltStoreReset(t *testing.T) {
	ctx := context.Background()
	st, err := OpenBoltStore(filepath.Join(t.TempDir(), "stock.db"))
	require.NoError(t, err)
	defer st.Close()

	p := domain.Product{ID: uuid.NewString(), Name: "Fish", Category: "Meat & Protein",
		CostPrice: domain.MustMoney("6.00"), SellingPrice: domain.MustMoney("10.00")}
	require.NoError(t, st.SaveProduct(ctx, &p))
	require.NoError(t, st.Reset())

	n, err := st.CountProducts(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NoError(t, st.SaveProduct(ctx, &p))
}
