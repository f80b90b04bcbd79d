package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/btree"
	"github.com/talkincode/stockboard/internal/domain"
)

var _ Store = (*MemoryStore)(nil)

// dateEntry indexes a record by its date inside one product's tree.
type dateEntry struct {
	date     string
	recordID string
}

func lessDate(a, b dateEntry) bool {
	return a.date < b.date
}

// MemoryStore keeps the catalog and the records in process memory.
// Mutations hold the write lock for the whole check-and-write so uniqueness checks never race.
type MemoryStore struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	records   map[string]domain.DailyRecord
	byProduct map[string]*btree.BTreeG[dateEntry]
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:  make(map[string]domain.Product),
		records:   make(map[string]domain.DailyRecord),
		byProduct: make(map[string]*btree.BTreeG[dateEntry]),
	}
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		items = append(items, p)
	}
	return items, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SaveProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	if tree, ok := s.byProduct[id]; ok {
		tree.Ascend(func(e dateEntry) bool {
			delete(s.records, e.recordID)
			return true
		})
		delete(s.byProduct, id)
	}
	return nil
}

func (s *MemoryStore) CountProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, date string) ([]domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.DailyRecord, 0)
	for _, r := range s.records {
		if date != "" && r.Date != date {
			continue
		}
		joined, err := s.join(r)
		if err != nil {
			return nil, err
		}
		items = append(items, joined)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, id string) (*domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	joined, err := s.join(r)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *MemoryStore) InsertRecord(ctx context.Context, r *domain.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[r.ProductID]; !ok {
		return ErrNotFound
	}
	if s.taken(r.ProductID, r.Date, "") {
		return ErrDuplicate
	}
	s.put(*r)
	return nil
}

func (s *MemoryStore) UpdateRecord(ctx context.Context, r *domain.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.records[r.ID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.products[r.ProductID]; !ok {
		return ErrNotFound
	}
	if s.taken(r.ProductID, r.Date, r.ID) {
		return ErrDuplicate
	}
	s.unindex(prev)
	s.put(*r)
	return nil
}

func (s *MemoryStore) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		s.unindex(r)
		delete(s.records, id)
	}
	return nil
}

func (s *MemoryStore) PreviousClosingStock(ctx context.Context, productID, before string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.byProduct[productID]
	if !ok {
		return 0, nil
	}
	closing := 0
	tree.DescendLessOrEqual(dateEntry{date: before}, func(e dateEntry) bool {
		if e.date == before {
			return true
		}
		closing = s.records[e.recordID].ClosingStock
		return false
	})
	return closing, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// join must be called with the lock held
func (s *MemoryStore) join(r domain.DailyRecord) (domain.DailyRecord, error) {
	p, ok := s.products[r.ProductID]
	if !ok {
		return domain.DailyRecord{}, ErrInconsistent
	}
	r.Product = &p
	return r, nil
}

// taken reports whether another record than exceptID holds the pair; lock held
func (s *MemoryStore) taken(productID, date, exceptID string) bool {
	tree, ok := s.byProduct[productID]
	if !ok {
		return false
	}
	e, found := tree.Get(dateEntry{date: date})
	return found && e.recordID != exceptID
}

// put stores r and indexes it; lock held
func (s *MemoryStore) put(r domain.DailyRecord) {
	r.Product = nil
	s.records[r.ID] = r
	tree, ok := s.byProduct[r.ProductID]
	if !ok {
		tree = btree.NewG[dateEntry](8, lessDate)
		s.byProduct[r.ProductID] = tree
	}
	tree.ReplaceOrInsert(dateEntry{date: r.Date, recordID: r.ID})
}

// unindex drops r from its product tree; lock held
func (s *MemoryStore) unindex(r domain.DailyRecord) {
	tree, ok := s.byProduct[r.ProductID]
	if !ok {
		return
	}
	tree.Delete(dateEntry{date: r.Date})
	if tree.Len() == 0 {
		delete(s.byProduct, r.ProductID)
	}
}
