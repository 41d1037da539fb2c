package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/book"
	"libraryapi/internal/borrowing"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
)

func main() {
	withLoans := flag.Bool("loans", true, "also insert sample borrowing transactions")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseDSN, database.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	n, err := seed(ctx, pool, cfg.DBTimeout, *withLoans)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("Seeded %d books", n)
}

// seed inserts the sample catalog unless books already exist.
func seed(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, withLoans bool) (int, error) {
	var existing int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&existing); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if existing > 0 {
		log.Printf("Catalog already has %d books, skipping", existing)
		return 0, nil
	}

	books := book.NewPostgresRepo(pool, timeout)
	loans := borrowing.NewPostgresRepo(pool, timeout)

	err := database.WithinTx(ctx, pool, func(ctx context.Context) error {
		now := time.Now()
		ids := make([]int64, len(sampleBooks))
		for i, b := range sampleBooks {
			b.CreatedAt, b.UpdatedAt = now, now
			if err := books.Add(ctx, &b); err != nil {
				return err
			}
			ids[i] = b.ID
		}
		if !withLoans {
			return nil
		}
		for _, l := range sampleLoans {
			tx := l.Transaction
			tx.BookID = ids[l.bookIndex]
			if err := loans.Add(ctx, &tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(sampleBooks), nil
}
