package borrowing

import (
	"sort"
	"strings"
	"time"
)

// Predicate selects transactions.
type Predicate func(Transaction) bool

// MatchSearch matches a case-insensitive substring of the book title or
// author. A blank term matches everything.
func MatchSearch(term string) Predicate {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(t Transaction) bool {
		return strings.Contains(strings.ToLower(t.BookTitle), term) ||
			strings.Contains(strings.ToLower(t.BookAuthor), term)
	}
}

// MatchStatus filters on "borrowed" (still open) or "returned".
func MatchStatus(status string) Predicate {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusBorrowed:
		return func(t Transaction) bool { return t.ReturnedDate == nil }
	case StatusReturned:
		return func(t Transaction) bool { return t.ReturnedDate != nil }
	default:
		return nil
	}
}

// MatchDate filters on the borrowed date relative to the calendar day of now.
// "week" reaches back 7 days, "month" and "year" one calendar month or year,
// all counted from the start of today.
func MatchDate(filter string, now time.Time) Predicate {
	today := startOfDay(now)

	var from time.Time
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case DateToday:
		tomorrow := today.AddDate(0, 0, 1)
		return func(t Transaction) bool {
			d := t.BorrowedDate.In(now.Location())
			return !d.Before(today) && d.Before(tomorrow)
		}
	case DateWeek:
		from = today.AddDate(0, 0, -7)
	case DateMonth:
		from = today.AddDate(0, -1, 0)
	case DateYear:
		from = today.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return func(t Transaction) bool { return !t.BorrowedDate.Before(from) }
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Filter keeps the transactions matching every non-nil predicate.
func Filter(txs []Transaction, preds ...Predicate) []Transaction {
	out := make([]Transaction, 0, len(txs))
next:
	for _, t := range txs {
		for _, p := range preds {
			if p != nil && !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// SortByBorrowedDesc orders newest first; equal dates fall back to the
// higher id first so the order is deterministic.
func SortByBorrowedDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].BorrowedDate.Equal(txs[j].BorrowedDate) {
			return txs[i].BorrowedDate.After(txs[j].BorrowedDate)
		}
		return txs[i].ID > txs[j].ID
	})
}

// Paginate returns the pageIndex-th (1-based) page of items. Out of range
// pages come back empty with the totals still filled in and no next page.
func Paginate[T any](items []T, pageIndex, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	inRange := pageIndex >= 1 && pageIndex <= totalPages

	page := Page[T]{
		Items:           []T{},
		PageIndex:       pageIndex,
		PageSize:        pageSize,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasPreviousPage: pageIndex > 1,
		HasNextPage:     inRange && pageIndex < totalPages,
	}
	if !inRange {
		return page
	}
	start := (pageIndex - 1) * pageSize
	end := start + min(pageSize, total-start)
	page.Items = append(page.Items, items[start:end]...)
	return page
}
