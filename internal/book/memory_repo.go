package book

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process Repository guarded by an RWMutex. Records are
// copied in and out so callers cannot mutate stored state.
type MemoryRepo struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{books: make(map[int64]Book)}
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return cloneBook(b), nil
}

func (r *MemoryRepo) Add(ctx context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	r.books[b.ID] = cloneBook(*b)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.ID]; !ok {
		return ErrNotFound
	}
	r.books[b.ID] = cloneBook(*b)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, deleted bool) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		if b.IsDeleted == deleted {
			out = append(out, cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneBook(b Book) Book {
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		b.DeletedAt = &t
	}
	return b
}
