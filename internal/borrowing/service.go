package borrowing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"libraryapi/internal/apperr"
)

// Service is the borrowing ledger. It is the only place that decides how
// many copies of a book are out; availability is always recomputed from the
// open transactions and never stored on the book.
type Service struct {
	repo   Repository
	books  BookReader
	locker Locker
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, books BookReader, locker Locker, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		books:  books,
		locker: locker,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Borrow lends one copy of the book. It reports false when the book is
// unknown, soft-deleted or has no copy left.
func (s *Service) Borrow(ctx context.Context, bookID int64) (bool, error) {
	var borrowed bool
	err := s.locker.WithBookLock(ctx, bookID, func(ctx context.Context) error {
		b, err := s.books.GetByID(ctx, bookID)
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.WarnContext(ctx, "borrow of unknown book", "book_id", bookID)
			return nil
		}
		if err != nil {
			return err
		}
		if b.IsDeleted {
			s.logger.WarnContext(ctx, "borrow of deleted book", "book_id", bookID)
			return nil
		}

		open, err := s.repo.ListOpen(ctx, bookID)
		if err != nil {
			return err
		}
		if available := b.TotalCopies - len(open); available <= 0 {
			s.logger.InfoContext(ctx, "no copies available", "book_id", bookID, "total_copies", b.TotalCopies, "borrowed", len(open))
			return nil
		}

		t := Transaction{BookID: bookID, BorrowedDate: s.now()}
		if err := s.repo.Add(ctx, &t); err != nil {
			return err
		}
		borrowed = true
		s.logger.InfoContext(ctx, "book borrowed", "book_id", bookID, "transaction_id", t.ID)
		return nil
	})
	if err != nil {
		return false, s.fail(ctx, "borrowing.borrow", bookID, err)
	}
	return borrowed, nil
}

// Return closes the most recently borrowed open loan of the book. It reports
// false when the book is unknown or nothing is out.
func (s *Service) Return(ctx context.Context, bookID int64) (bool, error) {
	var returned bool
	err := s.locker.WithBookLock(ctx, bookID, func(ctx context.Context) error {
		if _, err := s.books.GetByID(ctx, bookID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			return err
		}

		open, err := s.repo.ListOpen(ctx, bookID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return nil
		}
		SortByBorrowedDesc(open)

		t := open[0]
		now := s.now()
		t.ReturnedDate = &now
		if err := s.repo.Update(ctx, &t); err != nil {
			return err
		}
		returned = true
		s.logger.InfoContext(ctx, "book returned", "book_id", bookID, "transaction_id", t.ID)
		return nil
	})
	if err != nil {
		return false, s.fail(ctx, "borrowing.return", bookID, err)
	}
	return returned, nil
}

// AvailableCopies is total copies minus open, non-archived loans, or 0 for an
// unknown book. The result may be negative after an unarchive.
func (s *Service) AvailableCopies(ctx context.Context, bookID int64) (int, error) {
	b, err := s.books.GetByID(ctx, bookID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, s.fail(ctx, "borrowing.available_copies", bookID, err)
	}
	open, err := s.repo.ListOpen(ctx, bookID)
	if err != nil {
		return 0, s.fail(ctx, "borrowing.available_copies", bookID, err)
	}
	return b.TotalCopies - len(open), nil
}

// BorrowedCopiesForBooks counts open, non-archived loans for each requested
// book from a single read of the open set.
func (s *Service) BorrowedCopiesForBooks(ctx context.Context, bookIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return counts, nil
	}
	for _, id := range bookIDs {
		counts[id] = 0
	}

	open, err := s.repo.ListOpen(ctx, 0)
	if err != nil {
		return nil, s.fail(ctx, "borrowing.borrowed_copies", 0, err)
	}
	for _, t := range open {
		if _, ok := counts[t.BookID]; ok {
			counts[t.BookID]++
		}
	}
	return counts, nil
}

// History returns non-archived transactions matching q, newest first.
func (s *Service) History(ctx context.Context, q HistoryQuery) ([]Transaction, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, "borrowing.history", 0, err)
	}
	out := Filter(all,
		MatchSearch(q.Search),
		MatchStatus(q.Status),
		MatchDate(q.Date, s.now()),
	)
	SortByBorrowedDesc(out)
	return out, nil
}

// HistoryPaginated is History cut into 1-based pages.
func (s *Service) HistoryPaginated(ctx context.Context, pageIndex, pageSize int, q HistoryQuery) (Page[Transaction], error) {
	txs, err := s.History(ctx, q)
	if err != nil {
		return Page[Transaction]{}, err
	}
	return Paginate(txs, pageIndex, pageSize), nil
}

// UnreturnedTransactions lists every open, non-archived loan.
func (s *Service) UnreturnedTransactions(ctx context.Context) ([]Transaction, error) {
	open, err := s.repo.ListOpen(ctx, 0)
	if err != nil {
		return nil, s.fail(ctx, "borrowing.unreturned", 0, err)
	}
	SortByBorrowedDesc(open)
	return open, nil
}

// UnreturnedCount is the number of open, non-archived loans of one book.
func (s *Service) UnreturnedCount(ctx context.Context, bookID int64) (int, error) {
	open, err := s.repo.ListOpen(ctx, bookID)
	if err != nil {
		return 0, s.fail(ctx, "borrowing.unreturned_count", bookID, err)
	}
	return len(open), nil
}

// ArchivedTransactions lists archived transactions, newest first.
func (s *Service) ArchivedTransactions(ctx context.Context) ([]Transaction, error) {
	archived, err := s.repo.ListArchived(ctx)
	if err != nil {
		return nil, s.fail(ctx, "borrowing.archived", 0, err)
	}
	SortByBorrowedDesc(archived)
	return archived, nil
}

// Archive hides a transaction from history and availability. An open loan
// may be archived, which frees its copy without marking it returned.
func (s *Service) Archive(ctx context.Context, transactionID int64) (bool, error) {
	return s.setArchived(ctx, "borrowing.archive", transactionID, true)
}

// Unarchive reverses Archive.
func (s *Service) Unarchive(ctx context.Context, transactionID int64) (bool, error) {
	return s.setArchived(ctx, "borrowing.unarchive", transactionID, false)
}

func (s *Service) setArchived(ctx context.Context, op string, transactionID int64, archived bool) (bool, error) {
	t, err := s.repo.GetByID(ctx, transactionID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.WarnContext(ctx, "unknown transaction", "op", op, "transaction_id", transactionID)
		return false, nil
	}
	if err != nil {
		return false, s.fail(ctx, op, transactionID, err)
	}

	err = s.locker.WithBookLock(ctx, t.BookID, func(ctx context.Context) error {
		t, err := s.repo.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		t.IsArchived = archived
		if archived {
			now := s.now()
			t.ArchivedDate = &now
		} else {
			t.ArchivedDate = nil
		}
		return s.repo.Update(ctx, &t)
	})
	if err != nil {
		return false, s.fail(ctx, op, transactionID, err)
	}
	s.logger.InfoContext(ctx, "transaction archive state changed",
		"op", op, "transaction_id", transactionID, "book_id", t.BookID, "archived", archived, "open", t.IsOpen())
	return true, nil
}

// fail logs unexpected errors with the operation and entity id and wraps
// them as apperr.ErrUnexpected. Business errors pass through.
func (s *Service) fail(ctx context.Context, op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	s.logger.ErrorContext(ctx, "borrowing operation failed", "op", op, "id", id, "error", err)
	if errors.Is(err, apperr.ErrUnexpected) {
		return err
	}
	return apperr.Unexpected(op, err)
}
