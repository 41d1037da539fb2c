package borrowing

import (
	"context"
	"errors"
	"sort"
	"sync"

	"libraryapi/internal/apperr"
)

// MemoryRepo keeps transactions in process. Book title and author are
// resolved through books when listing, the way a join would.
type MemoryRepo struct {
	mu     sync.RWMutex
	txs    map[int64]Transaction
	nextID int64
	books  BookReader
}

func NewMemoryRepo(books BookReader) *MemoryRepo {
	return &MemoryRepo{txs: make(map[int64]Transaction), books: books}
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Transaction, error) {
	r.mu.RLock()
	t, ok := r.txs[id]
	r.mu.RUnlock()
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return r.withBook(ctx, t)
}

func (r *MemoryRepo) Add(ctx context.Context, t *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.txs[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, t *Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[t.ID]; !ok {
		return ErrTransactionNotFound
	}
	r.txs[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, func(t Transaction) bool { return !t.IsArchived })
}

func (r *MemoryRepo) ListOpen(ctx context.Context, bookID int64) ([]Transaction, error) {
	return r.list(ctx, func(t Transaction) bool {
		return t.IsOutstanding() && (bookID == 0 || t.BookID == bookID)
	})
}

func (r *MemoryRepo) ListArchived(ctx context.Context) ([]Transaction, error) {
	return r.list(ctx, func(t Transaction) bool { return t.IsArchived })
}

func (r *MemoryRepo) list(ctx context.Context, keep func(Transaction) bool) ([]Transaction, error) {
	r.mu.RLock()
	matched := make([]Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		if keep(t) {
			matched = append(matched, cloneTransaction(t))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	for i := range matched {
		t, err := r.withBook(ctx, matched[i])
		if err != nil {
			return nil, err
		}
		matched[i] = t
	}
	return matched, nil
}

func (r *MemoryRepo) withBook(ctx context.Context, t Transaction) (Transaction, error) {
	if r.books == nil {
		return t, nil
	}
	b, err := r.books.GetByID(ctx, t.BookID)
	if errors.Is(err, apperr.ErrNotFound) {
		return t, nil
	}
	if err != nil {
		return Transaction{}, err
	}
	t.BookTitle = b.Title
	t.BookAuthor = b.Author
	return t, nil
}
