package book

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"libraryapi/internal/apperr"
	"libraryapi/internal/blobstore"
)

// Service provides catalog operations over books with soft-delete semantics.
// Questions about loans are delegated to the BorrowCounter.
type Service struct {
	repo    Repository
	borrows BorrowCounter
	images  ImageStore
	locker  Locker
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new book service.
func NewService(repo Repository, borrows BorrowCounter, images ImageStore, locker Locker, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		borrows: borrows,
		images:  images,
		locker:  locker,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActive returns all books that are not soft-deleted.
func (s *Service) ListActive(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, s.fail(ctx, "book.list_active", 0, err)
	}
	return books, nil
}

// ListDeleted returns soft-deleted books.
func (s *Service) ListDeleted(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, s.fail(ctx, "book.list_deleted", 0, err)
	}
	return books, nil
}

// ListActiveWithAvailability returns active books with their loan counts,
// using a single borrowed-copies lookup for the whole page.
func (s *Service) ListActiveWithAvailability(ctx context.Context) ([]Listing, error) {
	books, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	borrowed, err := s.borrows.BorrowedCopiesForBooks(ctx, ids)
	if err != nil {
		return nil, s.fail(ctx, "book.list_availability", 0, err)
	}

	out := make([]Listing, len(books))
	for i, b := range books {
		n := borrowed[b.ID]
		out[i] = Listing{Book: b, BorrowedCopies: n, AvailableCopies: b.TotalCopies - n}
	}
	return out, nil
}

// GetByID returns a book, including soft-deleted ones.
func (s *Service) GetByID(ctx context.Context, id int64) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, s.fail(ctx, "book.get", id, err)
	}
	return b, nil
}

// Create validates the input, stores the cover image and persists the book.
func (s *Service) Create(ctx context.Context, in Input, cover *blobstore.Upload) (Book, error) {
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return Book{}, err
	}
	if cover.Empty() {
		s.logger.WarnContext(ctx, "book cover image is required", "title", in.Title)
		return Book{}, ErrCoverRequired
	}

	imagePath, err := s.images.Save(ctx, cover)
	if err != nil {
		return Book{}, s.fail(ctx, "book.create.save_image", 0, err)
	}

	now := s.now()
	b := Book{ImagePath: imagePath, CreatedAt: now, UpdatedAt: now}
	in.applyTo(&b)

	if err := s.repo.Add(ctx, &b); err != nil {
		s.discardImage(ctx, imagePath, 0)
		return Book{}, s.fail(ctx, "book.create", 0, err)
	}

	s.logger.InfoContext(ctx, "book created", "book_id", b.ID, "title", b.Title, "copies", b.TotalCopies)
	return b, nil
}

// Update replaces the editable fields of a book. When cover is non-empty the
// new image is stored and the previous one removed; otherwise the existing
// image is kept.
func (s *Service) Update(ctx context.Context, id int64, in Input, cover *blobstore.Upload) (Book, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return Book{}, s.fail(ctx, "book.update", id, err)
	}
	in = in.normalized()
	if err := validateInput(in); err != nil {
		return Book{}, err
	}

	var newImage string
	if !cover.Empty() {
		path, err := s.images.Save(ctx, cover)
		if err != nil {
			return Book{}, s.fail(ctx, "book.update.save_image", id, err)
		}
		newImage = path
	}

	var (
		updated  Book
		oldImage string
	)
	err := s.locker.WithBookLock(ctx, id, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		in.applyTo(&b)
		if newImage != "" {
			oldImage = b.ImagePath
			b.ImagePath = newImage
		}
		b.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, &b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage, id)
		}
		return Book{}, s.fail(ctx, "book.update", id, err)
	}

	if oldImage != "" {
		s.discardImage(ctx, oldImage, id)
	}
	s.logger.InfoContext(ctx, "book updated", "book_id", id, "title", updated.Title, "image_replaced", newImage != "")
	return updated, nil
}

// Delete soft-deletes a book. It fails with a *DeleteConflictError while
// any copy is on loan. The check and the write happen under the book lock,
// so a concurrent borrow cannot land in between.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.locker.WithBookLock(ctx, id, func(ctx context.Context) error {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.IsDeleted {
			return nil
		}

		borrowed, err := s.borrowedCopies(ctx, id)
		if err != nil {
			return err
		}
		if borrowed > 0 {
			return &DeleteConflictError{Title: b.Title, BorrowedCopies: borrowed}
		}

		now := s.now()
		b.IsDeleted = true
		b.DeletedAt = &now
		b.UpdatedAt = now
		if err := s.repo.Update(ctx, &b); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "book soft deleted", "book_id", id, "title", b.Title)
		return nil
	})
	return s.fail(ctx, "book.delete", id, err)
}

// GetDeleteInfo reports what Delete would decide without changing anything.
func (s *Service) GetDeleteInfo(ctx context.Context, id int64) (DeleteInfo, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DeleteInfo{}, s.fail(ctx, "book.delete_info", id, err)
	}
	borrowed, err := s.borrowedCopies(ctx, id)
	if err != nil {
		return DeleteInfo{}, s.fail(ctx, "book.delete_info", id, err)
	}

	return DeleteInfo{
		Book:              b,
		TotalCopies:       b.TotalCopies,
		BorrowedCopies:    borrowed,
		AvailableCopies:   b.TotalCopies - borrowed,
		CanDeleteSafely:   borrowed == 0,
		HasBorrowedCopies: borrowed > 0,
	}, nil
}

func (s *Service) borrowedCopies(ctx context.Context, id int64) (int, error) {
	counts, err := s.borrows.BorrowedCopiesForBooks(ctx, []int64{id})
	if err != nil {
		return 0, err
	}
	return counts[id], nil
}

// discardImage removes an image and only logs failures; a dangling file
// does not affect the catalog.
func (s *Service) discardImage(ctx context.Context, ref string, bookID int64) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.WarnContext(ctx, "could not delete image", "book_id", bookID, "image", ref, "error", err)
	}
}

// fail passes business errors through and wraps anything else as
// Unexpected after logging it.
func (s *Service) fail(ctx context.Context, op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNotFound):
		s.logger.WarnContext(ctx, "book not found", "op", op, "book_id", id)
		return err
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		s.logger.WarnContext(ctx, "book operation rejected", "op", op, "book_id", id, "reason", err.Error())
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	s.logger.ErrorContext(ctx, "book operation failed", "op", op, "book_id", id, "error", err)
	if errors.Is(err, apperr.ErrUnexpected) {
		return err
	}
	return apperr.Unexpected(op, err)
}
