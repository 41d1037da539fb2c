package borrowing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/book"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	books := book.NewMemoryRepo()
	b := &book.Book{Title: "Emma", Author: "Jane Austen", TotalCopies: 2}
	require.NoError(t, books.Add(ctx, b))
	repo := NewMemoryRepo(books)

	open := &Transaction{BookID: b.ID, BorrowedDate: time.Now()}
	returned := &Transaction{BookID: b.ID, BorrowedDate: time.Now(), ReturnedDate: ptr(time.Now())}
	archived := &Transaction{BookID: b.ID, BorrowedDate: time.Now(), IsArchived: true}
	for _, tx := range []*Transaction{open, returned, archived} {
		require.NoError(t, repo.Add(ctx, tx))
	}

	got, err := repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, "Emma", got.BookTitle)
	assert.Equal(t, "Jane Austen", got.BookAuthor)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	openTxs, err := repo.ListOpen(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, openTxs, 1)
	assert.Equal(t, open.ID, openTxs[0].ID)

	none, err := repo.ListOpen(ctx, b.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)

	arch, err := repo.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, arch, 1)
	assert.Equal(t, archived.ID, arch[0].ID)

	_, err = repo.GetByID(ctx, 100)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &Transaction{ID: 100}), ErrTransactionNotFound)
}
