package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var _ Store = (*BoltStore)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bucketProducts    = []byte("products")
	bucketRecords     = []byte("daily_records")
	bucketRecordIndex = []byte("daily_record_index")

	allBuckets = [][]byte{bucketProducts, bucketRecords, bucketRecordIndex}
)

// BoltStore persists the catalog and records in a single bbolt file.
// The index bucket maps "<productID>/<date>" to a record id; its keys sort by date within a product.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database file at path
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create bolt directory")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt file %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init bolt buckets")
	}
	return &BoltStore{db: db}, nil
}

func indexKey(productID, date string) []byte {
	return []byte(productID + "/" + date)
}

func (s *BoltStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	items := make([]domain.Product, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProducts).ForEach(func(k, v []byte) error {
			var p domain.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrapf(err, "decode product %s", k)
			}
			items = append(items, p)
			return nil
		})
	})
	return items, err
}

func (s *BoltStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p *domain.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		p, err = getProduct(tx, id)
		return err
	})
	return p, err
}

func (s *BoltStore) SaveProduct(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode product")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProducts).Put([]byte(p.ID), data)
	})
}

func (s *BoltStore) DeleteProduct(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketProducts).Delete([]byte(id)); err != nil {
			return err
		}
		index := tx.Bucket(bucketRecordIndex)
		prefix := []byte(id + "/")
		var keys, recordIDs [][]byte
		c := index.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
			recordIDs = append(recordIDs, append([]byte(nil), v...))
		}
		records := tx.Bucket(bucketRecords)
		for i := range keys {
			if err := index.Delete(keys[i]); err != nil {
				return err
			}
			if err := records.Delete(recordIDs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket(bucketProducts).Stats().KeyN)
		return nil
	})
	return n, err
}

func (s *BoltStore) ListRecords(ctx context.Context, date string) ([]domain.DailyRecord, error) {
	items := make([]domain.DailyRecord, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		cache := make(map[string]*domain.Product)
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var r domain.DailyRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return errors.Wrapf(err, "decode record %s", k)
			}
			if date != "" && r.Date != date {
				return nil
			}
			p, ok := cache[r.ProductID]
			if !ok {
				var err error
				if p, err = getProduct(tx, r.ProductID); err != nil {
					if errors.Is(err, ErrNotFound) {
						return ErrInconsistent
					}
					return err
				}
				cache[r.ProductID] = p
			}
			r.Product = p
			items = append(items, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *BoltStore) GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	var r *domain.DailyRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		if r, err = getRecord(tx, id); err != nil {
			return err
		}
		p, err := getProduct(tx, r.ProductID)
		if errors.Is(err, ErrNotFound) {
			return ErrInconsistent
		} else if err != nil {
			return err
		}
		r.Product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *BoltStore) InsertRecord(ctx context.Context, r *domain.DailyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketProducts).Get([]byte(r.ProductID)) == nil {
			return ErrNotFound
		}
		if tx.Bucket(bucketRecordIndex).Get(indexKey(r.ProductID, r.Date)) != nil {
			return ErrDuplicate
		}
		return putRecord(tx, r)
	})
}

func (s *BoltStore) UpdateRecord(ctx context.Context, r *domain.DailyRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		prev, err := getRecord(tx, r.ID)
		if err != nil {
			return err
		}
		if tx.Bucket(bucketProducts).Get([]byte(r.ProductID)) == nil {
			return ErrNotFound
		}
		index := tx.Bucket(bucketRecordIndex)
		if owner := index.Get(indexKey(r.ProductID, r.Date)); owner != nil && string(owner) != r.ID {
			return ErrDuplicate
		}
		if err := index.Delete(indexKey(prev.ProductID, prev.Date)); err != nil {
			return err
		}
		return putRecord(tx, r)
	})
}

func (s *BoltStore) DeleteRecord(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		r, err := getRecord(tx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRecordIndex).Delete(indexKey(r.ProductID, r.Date)); err != nil {
			return err
		}
		return tx.Bucket(bucketRecords).Delete([]byte(id))
	})
}

func (s *BoltStore) PreviousClosingStock(ctx context.Context, productID, before string) (int, error) {
	closing := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		prefix := []byte(productID + "/")
		c := tx.Bucket(bucketRecordIndex).Cursor()
		k, v := c.Seek(indexKey(productID, before))
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return nil
		}
		r, err := getRecord(tx, string(v))
		if err != nil {
			return err
		}
		closing = r.ClosingStock
		return nil
	})
	return closing, err
}

// Reset drops every bucket and recreates them empty
func (s *BoltStore) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func getProduct(tx *bolt.Tx, id string) (*domain.Product, error) {
	v := tx.Bucket(bucketProducts).Get([]byte(id))
	if v == nil {
		return nil, ErrNotFound
	}
	var p domain.Product
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, errors.Wrapf(err, "decode product %s", id)
	}
	return &p, nil
}

func getRecord(tx *bolt.Tx, id string) (*domain.DailyRecord, error) {
	v := tx.Bucket(bucketRecords).Get([]byte(id))
	if v == nil {
		return nil, ErrNotFound
	}
	var r domain.DailyRecord
	if err := json.Unmarshal(v, &r); err != nil {
		return nil, errors.Wrapf(err, "decode record %s", id)
	}
	return &r, nil
}

func putRecord(tx *bolt.Tx, r *domain.DailyRecord) error {
	stored := *r
	stored.Product = nil
	data, err := json.Marshal(&stored)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	if err := tx.Bucket(bucketRecords).Put([]byte(r.ID), data); err != nil {
		return err
	}
	return tx.Bucket(bucketRecordIndex).Put(indexKey(r.ProductID, r.Date), []byte(r.ID))
}
