package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleData(t *testing.T) {
	for _, b := range sampleBooks {
		assert.NotEmpty(t, b.Title)
		assert.GreaterOrEqual(t, b.TotalCopies, 1, b.Title)
		assert.Contains(t, b.ImagePath, "/images/books/")
	}
	for _, l := range sampleLoans {
		assert.Less(t, l.bookIndex, len(sampleBooks))
		if l.ReturnedDate != nil {
			assert.False(t, l.ReturnedDate.Before(l.BorrowedDate))
		}
	}
}
