package book

import (
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/apperr"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = fmt.Errorf("book %w", apperr.ErrNotFound)

	// ErrCoverRequired is returned when a book is created without a cover image.
	ErrCoverRequired = apperr.Validation("book cover image is required",
		apperr.FieldError{Field: "cover", Message: "cover is required"})
)

// Genre is the catalog category of a book.
type Genre string

const (
	GenreUnknown             Genre = "Unknown"
	GenreSoftwareEngineering Genre = "SoftwareEngineering"
	GenreMystery             Genre = "Mystery"
	GenreThriller            Genre = "Thriller"
	GenreRomance             Genre = "Romance"
	GenreHistory             Genre = "History"
	GenreDrama               Genre = "Drama"
)

var Genres = []Genre{
	GenreUnknown,
	GenreSoftwareEngineering,
	GenreMystery,
	GenreThriller,
	GenreRomance,
	GenreHistory,
	GenreDrama,
}

// ParseGenre matches s case-insensitively against the known genres.
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenreUnknown, true
	}
	for _, g := range Genres {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return Genre(s), false
}

// Book represents a catalog entry. TotalCopies is the number of copies the
// library owns; how many are on the shelf is derived from open loans and is
// never stored here.
type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description,omitempty"`
	Genre       Genre      `json:"genre"`
	TotalCopies int        `json:"total_copies"`
	ImagePath   string     `json:"image_path,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Input carries the caller-editable fields of a book, used by both Create
// and Update.
type Input struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Author      string `json:"author" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,min=5,max=500"`
	Genre       Genre  `json:"genre" validate:"genre"`
	TotalCopies int    `json:"total_copies" validate:"gte=0,lte=100"`
}

func (in Input) normalized() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	if strings.TrimSpace(string(in.Genre)) == "" {
		in.Genre = GenreUnknown
	} else if g, ok := ParseGenre(string(in.Genre)); ok {
		in.Genre = g
	}
	return in
}

func (in Input) applyTo(b *Book) {
	b.Title = in.Title
	b.Author = in.Author
	b.Description = in.Description
	b.Genre = in.Genre
	b.TotalCopies = in.TotalCopies
}

// DeleteInfo previews what Delete would decide for a book.
type DeleteInfo struct {
	Book              Book `json:"book"`
	TotalCopies       int  `json:"total_copies"`
	BorrowedCopies    int  `json:"borrowed_copies"`
	AvailableCopies   int  `json:"available_copies"`
	CanDeleteSafely   bool `json:"can_delete_safely"`
	HasBorrowedCopies bool `json:"has_borrowed_copies"`
}

// Listing is a book together with its current loan counts.
type Listing struct {
	Book
	BorrowedCopies  int `json:"borrowed_copies"`
	AvailableCopies int `json:"available_copies"`
}

// DeleteConflictError is returned when a book still has copies on loan.
type DeleteConflictError struct {
	Title          string
	BorrowedCopies int
}

func (e *DeleteConflictError) Error() string {
	return fmt.Sprintf("cannot delete book %q because it has %d borrowed copies; all copies must be returned before deletion",
		e.Title, e.BorrowedCopies)
}

func (e *DeleteConflictError) Unwrap() error { return apperr.ErrConflict }
