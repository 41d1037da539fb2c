package borrowing

import (
	"context"

	"libraryapi/internal/book"
)

// Repository stores borrowing transactions. Listings carry the title and
// author of the related book.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Transaction, error)
	Add(ctx context.Context, t *Transaction) error
	Update(ctx context.Context, t *Transaction) error
	// ListAll returns every non-archived transaction.
	ListAll(ctx context.Context) ([]Transaction, error)
	// ListOpen returns open, non-archived transactions, for every book when
	// bookID is 0.
	ListOpen(ctx context.Context, bookID int64) ([]Transaction, error)
	ListArchived(ctx context.Context) ([]Transaction, error)
}

// BookReader looks up catalog entries, including soft-deleted ones.
type BookReader interface {
	GetByID(ctx context.Context, id int64) (book.Book, error)
}

// Locker serializes decisions about a single book.
type Locker interface {
	WithBookLock(ctx context.Context, bookID int64, fn func(ctx context.Context) error) error
}
