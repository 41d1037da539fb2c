package borrowing

import (
	"fmt"
	"time"

	"libraryapi/internal/apperr"
)

// ErrTransactionNotFound is returned when a borrowing transaction is not found.
var ErrTransactionNotFound = fmt.Errorf("borrowing transaction %w", apperr.ErrNotFound)

// Transaction records one copy of a book going out and, later, coming back.
// An open transaction has no ReturnedDate. Archived transactions are kept
// for the record but no longer count against availability.
type Transaction struct {
	ID           int64      `json:"id"`
	BookID       int64      `json:"book_id"`
	BookTitle    string     `json:"book_title,omitempty"`
	BookAuthor   string     `json:"book_author,omitempty"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	ReturnedDate *time.Time `json:"returned_date,omitempty"`
	IsArchived   bool       `json:"is_archived"`
	ArchivedDate *time.Time `json:"archived_date,omitempty"`
}

// IsOpen reports whether the copy has not been returned yet.
func (t Transaction) IsOpen() bool {
	return t.ReturnedDate == nil
}

// IsOutstanding reports whether t counts toward the borrowed copies of its book.
func (t Transaction) IsOutstanding() bool {
	return t.IsOpen() && !t.IsArchived
}

// Status values accepted by history filters.
const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
)

// Date range values accepted by history filters.
const (
	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"
	DateYear  = "year"
)

// HistoryQuery narrows the transaction history. Unknown Status or Date
// values do not filter anything.
type HistoryQuery struct {
	Search string
	Status string
	Date   string
}

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 10

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items           []T  `json:"items"`
	PageIndex       int  `json:"page_index"`
	PageSize        int  `json:"page_size"`
	TotalCount      int  `json:"total_count"`
	TotalPages      int  `json:"total_pages"`
	HasPreviousPage bool `json:"has_previous_page"`
	HasNextPage     bool `json:"has_next_page"`
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneTransaction(t Transaction) Transaction {
	t.ReturnedDate = copyTime(t.ReturnedDate)
	t.ArchivedDate = copyTime(t.ArchivedDate)
	return t
}
