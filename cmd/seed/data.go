package main

import (
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/borrowing"
)

var sampleBooks = []book.Book{
	{
		Title:       "C# 12 Programming",
		Author:      "Ian Griffiths",
		TotalCopies: 5,
		Description: "Build Cloud, Web and Desktop Applications with the latest C# features",
		ImagePath:   "/images/books/csharp-12.jpg",
		Genre:       book.GenreSoftwareEngineering,
	},
	{
		Title:       "C++ Programming",
		Author:      "Stephen Prata",
		TotalCopies: 4,
		Description: "Introduction to C++ programming language",
		ImagePath:   "/images/books/cpp.jpg",
		Genre:       book.GenreSoftwareEngineering,
	},
	{
		Title:       "Data Structures and Algorithms",
		Author:      "David Mount",
		TotalCopies: 3,
		Description: "Data Structures and Algorithms in C++, Goodrich",
		ImagePath:   "/images/books/dsa.jpg",
		Genre:       book.GenreSoftwareEngineering,
	},
	{
		Title:       "Pride and Prejudice",
		Author:      "Jane Austen",
		TotalCopies: 2,
		Description: "A classic romantic novel about love and societal expectations",
		ImagePath:   "/images/books/pride.jpg",
		Genre:       book.GenreRomance,
	},
	{
		Title:       "Clean Code",
		Author:      "Robert C. Martin",
		TotalCopies: 4,
		Description: "A Handbook of Agile Software Craftsmanship",
		ImagePath:   "/images/books/clean-code.jpg",
		Genre:       book.GenreSoftwareEngineering,
	},
}

type sampleLoan struct {
	borrowing.Transaction
	bookIndex int
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func ref(t time.Time) *time.Time { return &t }

var sampleLoans = []sampleLoan{
	{bookIndex: 0, Transaction: borrowing.Transaction{
		BorrowedDate: at(2024, time.January, 15, 10, 30),
		ReturnedDate: ref(at(2024, time.January, 18, 14, 20)),
	}},
	{bookIndex: 1, Transaction: borrowing.Transaction{
		BorrowedDate: at(2024, time.January, 17, 9, 15),
	}},
	{bookIndex: 2, Transaction: borrowing.Transaction{
		BorrowedDate: at(2024, time.January, 19, 16, 45),
	}},
	{bookIndex: 3, Transaction: borrowing.Transaction{
		BorrowedDate: at(2024, time.January, 10, 11, 0),
		ReturnedDate: ref(at(2024, time.January, 13, 15, 30)),
		IsArchived:   true,
		ArchivedDate: ref(at(2024, time.January, 14, 9, 0)),
	}},
}
