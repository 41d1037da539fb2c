package book

import (
	"context"

	"libraryapi/internal/blobstore"
)

// Repository defines the contract for book data storage. Soft-deleted books
// are still returned by GetByID.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Book, error)
	Add(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	List(ctx context.Context, deleted bool) ([]Book, error)
}

// BorrowCounter reports how many copies of each book are currently on loan.
type BorrowCounter interface {
	BorrowedCopiesForBooks(ctx context.Context, bookIDs []int64) (map[int64]int, error)
}

// ImageStore persists cover images.
type ImageStore interface {
	Save(ctx context.Context, u *blobstore.Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Locker serializes decisions about a single book.
type Locker interface {
	WithBookLock(ctx context.Context, bookID int64, fn func(ctx context.Context) error) error
}
