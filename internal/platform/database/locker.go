package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookLocker serializes work on a single book by holding a row lock on it
// for the duration of a database transaction.
type BookLocker struct {
	pool *pgxpool.Pool
}

func NewBookLocker(pool *pgxpool.Pool) *BookLocker {
	return &BookLocker{pool: pool}
}

const lockBookSQL = `SELECT id FROM books WHERE id = $1 FOR UPDATE`

// WithBookLock runs fn inside a transaction that holds the book's row lock.
// The transaction is bound to the context handed to fn; fn's error rolls it
// back. An unknown book id locks nothing and fn still runs, so callers see
// the absence through their own lookups.
func (l *BookLocker) WithBookLock(ctx context.Context, bookID int64, fn func(ctx context.Context) error) error {
	return WithinTx(ctx, l.pool, func(ctx context.Context) error {
		tx, _ := TxFrom(ctx)
		if err := lockRow(ctx, tx, bookID); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func lockRow(ctx context.Context, tx pgx.Tx, bookID int64) error {
	var id int64
	err := tx.QueryRow(ctx, lockBookSQL, bookID).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock book %d: %w", bookID, err)
	}
	return nil
}

// MemoryLocker is the in-process counterpart of BookLocker: one mutex per
// book id, dropped once nobody holds or waits on it.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*keyedLock)}
}

func (l *MemoryLocker) WithBookLock(ctx context.Context, bookID int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	kl, ok := l.locks[bookID]
	if !ok {
		kl = &keyedLock{}
		l.locks[bookID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	defer func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, bookID)
		}
		l.mu.Unlock()
	}()

	return fn(ctx)
}
