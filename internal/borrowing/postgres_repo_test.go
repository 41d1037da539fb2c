package borrowing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/book"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/testutil"
)

func TestPostgresRepo(t *testing.T) {
	db := testutil.PostgresPool(t)
	books := book.NewPostgresRepo(db, 5*time.Second)
	repo := NewPostgresRepo(db, 5*time.Second)
	ctx := context.Background()

	b := &book.Book{Title: "Rebecca", Author: "Daphne du Maurier", Genre: book.GenreRomance, TotalCopies: 2,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, books.Add(ctx, b))

	borrowed := time.Now().UTC().Truncate(time.Microsecond)
	tx := &Transaction{BookID: b.ID, BorrowedDate: borrowed}
	require.NoError(t, repo.Add(ctx, tx))
	require.NotZero(t, tx.ID)

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rebecca", got.BookTitle)
	assert.True(t, got.BorrowedDate.Equal(borrowed))
	assert.True(t, got.IsOpen())

	open, err := repo.ListOpen(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	got.IsArchived = true
	got.ArchivedDate = &borrowed
	require.NoError(t, repo.Update(ctx, &got))

	open, err = repo.ListOpen(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	archived, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.GetByID(ctx, 987654)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestPostgres_ConcurrentBorrowSingleCopy(t *testing.T) {
	db := testutil.PostgresPool(t)
	books := book.NewPostgresRepo(db, 5*time.Second)
	svc := NewService(NewPostgresRepo(db, 5*time.Second), books, database.NewBookLocker(db), testutil.Logger())
	ctx := context.Background()

	b := &book.Book{Title: "Single", Author: "Copy", TotalCopies: 1, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, books.Add(ctx, b))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Borrow(ctx, b.ID)
			assert.NoError(t, err)
			if ok {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	n, err := svc.AvailableCopies(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
