package borrowing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestMatchSearch(t *testing.T) {
	tx := Transaction{BookTitle: "The Da Vinci Code", BookAuthor: "Dan Brown"}

	assert.Nil(t, MatchSearch("   "))
	assert.True(t, MatchSearch("vinci")(tx))
	assert.True(t, MatchSearch("  BROWN ")(tx))
	assert.False(t, MatchSearch("tolkien")(tx))
}

func TestMatchStatus(t *testing.T) {
	open := Transaction{}
	returned := Transaction{ReturnedDate: ptr(time.Now())}

	assert.True(t, MatchStatus("borrowed")(open))
	assert.False(t, MatchStatus("Borrowed")(returned))
	assert.True(t, MatchStatus("RETURNED")(returned))
	assert.False(t, MatchStatus("returned")(open))
	assert.Nil(t, MatchStatus(""))
	assert.Nil(t, MatchStatus("lost"))
}

func TestMatchDate(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)
	at := func(d time.Time) Transaction { return Transaction{BorrowedDate: d} }

	tests := []struct {
		filter string
		when   time.Time
		want   bool
	}{
		{"today", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), true},
		{"today", time.Date(2024, 3, 30, 23, 59, 0, 0, time.UTC), false},
		{"week", time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), true},
		{"week", time.Date(2024, 3, 23, 23, 0, 0, 0, time.UTC), false},
		// AddDate normalizes Feb 31 to Mar 2
		{"month", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"month", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), false},
		{"year", time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), true},
		{"Year", time.Date(2023, 3, 30, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.filter+" "+tt.when.Format(time.DateTime), func(t *testing.T) {
			pred := MatchDate(tt.filter, now)
			require.NotNil(t, pred)
			assert.Equal(t, tt.want, pred(at(tt.when)))
		})
	}

	assert.Nil(t, MatchDate("", now))
	assert.Nil(t, MatchDate("decade", now))
}

func TestFilter(t *testing.T) {
	txs := []Transaction{
		{ID: 1, BookTitle: "Emma"},
		{ID: 2, BookTitle: "Dune", ReturnedDate: ptr(time.Now())},
		{ID: 3, BookTitle: "Dune"},
	}

	got := Filter(txs, MatchSearch("dune"), MatchStatus("borrowed"), nil)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	assert.Len(t, Filter(txs), 3)
}

func TestSortByBorrowedDesc(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: 1, BorrowedDate: base},
		{ID: 2, BorrowedDate: base.Add(time.Hour)},
		{ID: 3, BorrowedDate: base},
	}

	SortByBorrowedDesc(txs)

	ids := []int64{txs[0].ID, txs[1].ID, txs[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3}

	first := Paginate(items, 1, 2)
	assert.Equal(t, []int{1, 2}, first.Items)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 3, first.TotalCount)
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPreviousPage)

	second := Paginate(items, 2, 2)
	assert.Equal(t, []int{3}, second.Items)
	assert.False(t, second.HasNextPage)
	assert.True(t, second.HasPreviousPage)

	past := Paginate(items, 5, 2)
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)
	assert.Equal(t, 2, past.TotalPages)
	assert.Equal(t, 3, past.TotalCount)

	zero := Paginate(items, 0, 2)
	assert.Empty(t, zero.Items)
	assert.False(t, zero.HasPreviousPage)
	assert.False(t, zero.HasNextPage)
	assert.Equal(t, 2, zero.TotalPages)

	huge := Paginate(items, 1, math.MaxInt)
	assert.Equal(t, []int{1, 2, 3}, huge.Items)
	assert.Equal(t, 1, huge.TotalPages)
	assert.False(t, huge.HasNextPage)

	defaulted := Paginate(items, 1, 0)
	assert.Equal(t, DefaultPageSize, defaulted.PageSize)
	assert.Len(t, defaulted.Items, 3)

	empty := Paginate([]int{}, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}
