package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	a := &Book{Title: "A", TotalCopies: 1}
	b := &Book{Title: "B", TotalCopies: 2}
	require.NoError(t, repo.Add(ctx, a))
	require.NoError(t, repo.Add(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	now := time.Now()
	deletedAt := now
	b.IsDeleted = true
	b.DeletedAt = &deletedAt
	require.NoError(t, repo.Update(ctx, b))

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A", active[0].Title)

	deleted, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	// stored records are isolated from caller mutation
	*b.DeletedAt = now.Add(time.Hour)
	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, now, *got.DeletedAt)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &Book{ID: 42}), ErrNotFound)
}
